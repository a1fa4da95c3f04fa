package reader

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

type EthereumNode interface {
	NodeName() string
	NodeURL() string
	ChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(
		ctx context.Context,
		from, to string,
		priceGwei float64,
		value *big.Int,
		data []byte,
	) (gas uint64, err error)
	GetCode(ctx context.Context, address string) (code []byte, err error)
	GetBalance(ctx context.Context, address string) (balance *big.Int, err error)
	GetMinedNonce(ctx context.Context, address string) (nonce uint64, err error)
	GetPendingNonce(ctx context.Context, address string) (nonce uint64, err error)
	TransactionReceipt(ctx context.Context, txHash string) (receipt *types.Receipt, err error)
	TransactionByHash(ctx context.Context, txHash string) (tx *types.Transaction, isPending bool, err error)
	SuggestedGasPrice(ctx context.Context) (*big.Int, error)
	SuggestedGasTipCap(ctx context.Context) (*big.Int, error)
	// Call executes data against `to` without creating a tx. atBlock < 0
	// means the latest block.
	Call(
		ctx context.Context,
		from, to string,
		value *big.Int,
		data []byte,
		atBlock int64,
	) ([]byte, error)
	HeaderByNumber(ctx context.Context, number int64) (*types.Header, error)
}

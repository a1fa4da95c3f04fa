package reader

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	bankcommon "github.com/tranvictor/bankdapp/common"
)


var (
	ErrNoNodes = errors.New("reader has no node")
	// ErrEmptyResult is returned when a contract call returns no data,
	// usually because nothing is deployed at the address.
	ErrEmptyResult = errors.New("contract call returned no data")
)

type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := []EthereumNode{}
	for name, c := range nodes {
		ns = append(ns, NewOneNodeReader(name, c))
	}
	return NewEthReaderWithNodes(ns...)
}

func NewEthReaderWithNodes(nodes ...EthereumNode) *EthReader {
	ns := map[string]EthereumNode{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &EthReader{nodes: ns}
}

func (er *EthReader) NodeNames() []string {
	res := []string{}
	for name := range er.nodes {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Close releases the connections of nodes that hold one.
func (er *EthReader) Close() {
	for _, n := range er.nodes {
		if c, ok := n.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResult[T any] struct {
	Value T
	Error error
}

// firstSuccess asks every node concurrently and returns the first answer
// without error. The remaining calls are cancelled. When all nodes fail the
// errors are joined so callers can still inspect them with errors.Is/As.
func firstSuccess[T any](
	ctx context.Context,
	nodes map[string]EthereumNode,
	call func(ctx context.Context, n EthereumNode) (T, error),
) (T, error) {
	var zero T
	if len(nodes) == 0 {
		return zero, ErrNoNodes
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan nodeResult[T], len(nodes))
	for i := range nodes {
		n := nodes[i]
		go func() {
			v, err := call(ctx, n)
			resCh <- nodeResult[T]{
				Value: v,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Value, nil
		}
		errs = append(errs, result.Error)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) ChainID(ctx context.Context) (*big.Int, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.ChainID(ctx)
	})
}

func (er *EthReader) EstimateExactGas(
	ctx context.Context,
	from, to string,
	priceGwei float64,
	value *big.Int,
	data []byte,
) (uint64, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.EstimateGas(ctx, from, to, priceGwei, value, data)
	})
}

func (er *EthReader) GetCode(ctx context.Context, address string) ([]byte, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) ([]byte, error) {
		return n.GetCode(ctx, address)
	})
}

func (er *EthReader) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.GetBalance(ctx, address)
	})
}

func (er *EthReader) GetMinedNonce(ctx context.Context, address string) (uint64, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.GetMinedNonce(ctx, address)
	})
}

func (er *EthReader) GetPendingNonce(ctx context.Context, address string) (uint64, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.GetPendingNonce(ctx, address)
	})
}

func (er *EthReader) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*types.Receipt, error) {
		return n.TransactionReceipt(ctx, txHash)
	})
}

type txByHash struct {
	Tx        *types.Transaction
	IsPending bool
}

func (er *EthReader) TransactionByHash(ctx context.Context, txHash string) (*types.Transaction, bool, error) {
	res, err := firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (txByHash, error) {
		tx, isPending, err := n.TransactionByHash(ctx, txHash)
		return txByHash{tx, isPending}, err
	})
	return res.Tx, res.IsPending, err
}

func (er *EthReader) HeaderByNumber(ctx context.Context, number int64) (*types.Header, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(ctx, number)
	})
}

func (er *EthReader) Call(
	ctx context.Context,
	from, to string,
	value *big.Int,
	data []byte,
	atBlock int64,
) ([]byte, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) ([]byte, error) {
		return n.Call(ctx, from, to, value, data, atBlock)
	})
}

func (er *EthReader) ReadContractToBytes(
	ctx context.Context,
	atBlock int64,
	from string,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]byte, error) {
	data, err := abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	return er.Call(ctx, from, caddr, nil, data, atBlock)
}

// ReadContractWithABIAndFrom calls a view method as `from` and unpacks its
// outputs into result. `from` matters for methods scoped to msg.sender.
func (er *EthReader) ReadContractWithABIAndFrom(
	ctx context.Context,
	result interface{},
	from string,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	responseBytes, err := er.ReadContractToBytes(ctx, -1, from, caddr, abi, method, args...)
	if err != nil {
		return err
	}
	if len(responseBytes) == 0 {
		return fmt.Errorf("%s on %s: %w", method, caddr, ErrEmptyResult)
	}
	return abi.UnpackIntoInterface(result, method, responseBytes)
}

// TxInfoFromHash reports where a tx is in its lifecycle. A tx unknown to every
// node is TxStatusNotFound, not an error.
func (er *EthReader) TxInfoFromHash(ctx context.Context, tx string) (bankcommon.TxInfo, error) {
	txObj, isPending, err := er.TransactionByHash(ctx, tx)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return bankcommon.TxInfo{Status: bankcommon.TxStatusNotFound}, nil
		}
		return bankcommon.TxInfo{Status: bankcommon.TxStatusError}, err
	}
	if txObj == nil {
		return bankcommon.TxInfo{Status: bankcommon.TxStatusNotFound}, nil
	}
	if isPending {
		return bankcommon.TxInfo{Status: bankcommon.TxStatusPending, Tx: txObj}, nil
	}

	receipt, err := er.TransactionReceipt(ctx, tx)
	if receipt == nil {
		if errors.Is(err, ethereum.NotFound) {
			err = nil
		}
		return bankcommon.TxInfo{Status: bankcommon.TxStatusPending, Tx: txObj}, err
	}

	// if PostState is a hash, it is pre-byzantium and all
	// txs with PostState are considered done
	if len(receipt.PostState) == len(common.Hash{}) || receipt.Status == types.ReceiptStatusSuccessful {
		return bankcommon.TxInfo{Status: bankcommon.TxStatusDone, Tx: txObj, Receipt: receipt}, nil
	}
	return bankcommon.TxInfo{Status: bankcommon.TxStatusReverted, Tx: txObj, Receipt: receipt}, nil
}

// SuggestedGasSettings returns the max gas price and tip in gwei. The tip is
// 0 on networks without dynamic fee txs.
func (er *EthReader) SuggestedGasSettings(ctx context.Context) (maxGasPriceGwei, maxTipGwei float64, err error) {
	isDynamicFeeAvailable, err := er.CheckDynamicFeeTxAvailable(ctx)
	if err != nil {
		return 0, 0, err
	}

	maxGasPriceGwei, err = er.RecommendedGasPrice(ctx)
	if err != nil {
		return 0, 0, err
	}

	if isDynamicFeeAvailable {
		maxTipGwei, err = er.GetSuggestedGasTipCap(ctx)
		if err != nil {
			return 0, 0, err
		}
	}
	return maxGasPriceGwei, maxTipGwei, nil
}

// CheckDynamicFeeTxAvailable treats a latest block with baseFee > 0 as a sign
// that the network accepts dynamic fee txs.
func (er *EthReader) CheckDynamicFeeTxAvailable(ctx context.Context) (bool, error) {
	header, err := er.HeaderByNumber(ctx, -1)
	if err != nil {
		return false, err
	}
	return header.BaseFee != nil && header.BaseFee.Cmp(common.Big0) > 0, nil
}

// add 20% tip to miners compared to what returned from the node to improve UX
// a bit more
func (er *EthReader) GetSuggestedGasTipCap(ctx context.Context) (float64, error) {
	tip, err := firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasTipCap(ctx)
	})
	if err != nil {
		return 0, err
	}
	return bankcommon.BigToFloat(tip, 9) * 1.2, nil
}

// add 50% to max gas price because the next blocks based price can be increased
// according to ethereum protocol
func (er *EthReader) RecommendedGasPrice(ctx context.Context) (float64, error) {
	price, err := firstSuccess(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasPrice(ctx)
	})
	if err != nil {
		return 0, err
	}
	return bankcommon.BigToFloat(price, 9) * 1.5, nil
}

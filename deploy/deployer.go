// Package deploy publishes a Bank contract: it sends the creation tx from
// the deployer account, waits for the receipt and records the deployment.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/logger"
)

const DefaultPollInterval = 2 * time.Second

var (
	ErrDeploymentReverted = errors.New("contract creation reverted")
	ErrWrongChain         = errors.New("node serves a different chain")
)

type Options struct {
	// nil fee caps are taken from the node
	GasFeeCap *big.Int
	GasTipCap *big.Int
	// 0 means estimate
	GasLimit     uint64
	PollInterval time.Duration
}

type Result struct {
	TxHash          common.Hash
	ContractAddress common.Address
	Deployer        common.Address
	Receipt         *types.Receipt
}

type Deployer struct {
	backend Backend
	chainID uint64
	acc     *account.Account
	opts    Options
}

func NewDeployer(backend Backend, chainID uint64, acc *account.Account, opts Options) *Deployer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Deployer{
		backend: backend,
		chainID: chainID,
		acc:     acc,
		opts:    opts,
	}
}

func (d *Deployer) Address() common.Address {
	return d.acc.Address()
}

func (d *Deployer) feeCaps(ctx context.Context) (feeCap, tipCap *big.Int, err error) {
	tipCap = d.opts.GasTipCap
	if tipCap == nil {
		if tipCap, err = d.backend.GasTipCap(ctx); err != nil {
			return nil, nil, err
		}
	}
	feeCap = d.opts.GasFeeCap
	if feeCap == nil {
		price, err := d.backend.GasPrice(ctx)
		if err != nil {
			return nil, nil, err
		}
		// leave room for the base fee to double
		feeCap = new(big.Int).Add(new(big.Int).Mul(price, big.NewInt(2)), tipCap)
	}
	if tipCap.Cmp(feeCap) > 0 {
		tipCap = new(big.Int).Set(feeCap)
	}
	return feeCap, tipCap, nil
}

// Send signs and broadcasts the creation tx without waiting. The contract
// address is derived from the deployer and its nonce.
func (d *Deployer) Send(ctx context.Context, bytecode []byte) (Result, error) {
	chainID, err := d.backend.ChainID(ctx)
	if err != nil {
		return Result{}, err
	}
	if chainID != d.chainID {
		return Result{}, fmt.Errorf("%w: want %d, got %d", ErrWrongChain, d.chainID, chainID)
	}
	nonce, err := d.backend.Nonce(ctx, d.Address())
	if err != nil {
		return Result{}, err
	}
	feeCap, tipCap, err := d.feeCaps(ctx)
	if err != nil {
		return Result{}, err
	}
	gasLimit := d.opts.GasLimit
	if gasLimit == 0 {
		if gasLimit, err = d.backend.EstimateGas(ctx, d.Address(), bytecode); err != nil {
			return Result{}, err
		}
	}

	contractAddr := crypto.CreateAddress(d.Address(), nonce)

	// EIP-1559 only
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(d.chainID),
		Nonce:     nonce,
		GasFeeCap: feeCap,
		GasTipCap: tipCap,
		Gas:       gasLimit,
		Data:      bytecode,
	})
	signedTx, err := d.acc.SignTx(tx, new(big.Int).SetUint64(d.chainID))
	if err != nil {
		return Result{}, fmt.Errorf("sign tx: %w", err)
	}
	if _, err = d.backend.SendTx(ctx, signedTx); err != nil {
		return Result{}, err
	}
	logger.L().Infow("deployment broadcasted",
		"tx", signedTx.Hash().Hex(), "deployer", d.Address().Hex(), "nonce", nonce, "gas", gasLimit)
	return Result{
		TxHash:          signedTx.Hash(),
		ContractAddress: contractAddr,
		Deployer:        d.Address(),
	}, nil
}

// WaitForReceipt polls the node until the tx is mined or ctx is done.
func (d *Deployer) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := d.backend.Receipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		logger.L().Debugw("receipt not available yet", "tx", txHash.Hex(), "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Deploy sends the creation tx and waits until it is mined successfully.
func (d *Deployer) Deploy(ctx context.Context, bytecode []byte) (Result, error) {
	result, err := d.Send(ctx, bytecode)
	if err != nil {
		return Result{}, fmt.Errorf("deploy: %w", err)
	}
	receipt, err := d.WaitForReceipt(ctx, result.TxHash)
	if err != nil {
		return Result{}, fmt.Errorf("wait %s: %w", result.TxHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return Result{}, fmt.Errorf("%w: %s", ErrDeploymentReverted, receipt.TxHash.Hex())
	}
	if receipt.ContractAddress != (common.Address{}) && receipt.ContractAddress != result.ContractAddress {
		return Result{}, fmt.Errorf(
			"receipt reports contract %s, expected %s",
			receipt.ContractAddress.Hex(), result.ContractAddress.Hex(),
		)
	}
	result.Receipt = receipt
	return result, nil
}

// Report prints the deployment the way the deploy script does.
func Report(w io.Writer, r Result) {
	fmt.Fprintf(w, "Bank deployed to: %s\n", r.ContractAddress.Hex())
	fmt.Fprintf(w, "Bank owner address: %s\n", r.Deployer.Hex())
}

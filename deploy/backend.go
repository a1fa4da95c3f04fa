package deploy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"
)

// Backend is the part of a node the deployer needs.
type Backend interface {
	ChainID(ctx context.Context) (uint64, error)
	Nonce(ctx context.Context, addr common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	GasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from common.Address, data []byte) (uint64, error)
	SendTx(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	// Receipt returns an error while the tx is not mined.
	Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// W3Backend talks to one json-rpc node through w3.
type W3Backend struct {
	client *w3.Client
}

func NewW3Backend(rpcURL string) (*W3Backend, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &W3Backend{client: client}, nil
}

func (b *W3Backend) Close() error {
	return b.client.Close()
}

func (b *W3Backend) ChainID(ctx context.Context) (uint64, error) {
	var chainID uint64
	if err := b.client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		return 0, fmt.Errorf("get chain id: %w", err)
	}
	return chainID, nil
}

func (b *W3Backend) Nonce(ctx context.Context, addr common.Address) (uint64, error) {
	var nonce uint64
	if err := b.client.CallCtx(ctx, eth.Nonce(addr, nil).Returns(&nonce)); err != nil {
		return 0, fmt.Errorf("get nonce: %w", err)
	}
	return nonce, nil
}

func (b *W3Backend) GasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	if err := b.client.CallCtx(ctx, eth.GasPrice().Returns(&price)); err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}
	return price, nil
}

func (b *W3Backend) GasTipCap(ctx context.Context) (*big.Int, error) {
	var tip *big.Int
	if err := b.client.CallCtx(ctx, eth.GasTipCap().Returns(&tip)); err != nil {
		return nil, fmt.Errorf("get gas tip cap: %w", err)
	}
	return tip, nil
}

func (b *W3Backend) EstimateGas(ctx context.Context, from common.Address, data []byte) (uint64, error) {
	var gas uint64
	msg := &w3types.Message{From: from, Input: data}
	if err := b.client.CallCtx(ctx, eth.EstimateGas(msg, nil).Returns(&gas)); err != nil {
		return 0, fmt.Errorf("estimate gas: %w", err)
	}
	return gas, nil
}

func (b *W3Backend) SendTx(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	var hash common.Hash
	if err := b.client.CallCtx(ctx, eth.SendTx(tx).Returns(&hash)); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	return hash, nil
}

func (b *W3Backend) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := b.client.CallCtx(ctx, eth.TxReceipt(hash).Returns(&receipt)); err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("receipt of %s not found", hash.Hex())
	}
	return receipt, nil
}

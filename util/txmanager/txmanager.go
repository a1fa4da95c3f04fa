package txmanager

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/broadcaster"
	"github.com/tranvictor/bankdapp/util/logger"
	"github.com/tranvictor/bankdapp/util/monitor"
	"github.com/tranvictor/bankdapp/util/reader"
)

var GAS_INFO_TTL = 60 * time.Second

var (
	ErrTxReverted       = errors.New("tx reverted")
	ErrTxLost           = errors.New("tx lost")
	ErrNotBroadcasted   = errors.New("tx was not accepted by any node")
	ErrAccountNotLoaded = errors.New("wallet is not unlocked in this session")
)

type GasInfo struct {
	GasPrice         float64
	MaxPriorityPrice float64
	DynamicFee       bool
	Timestamp        time.Time
}

// GasOptions are user overrides. Zero values mean "ask the nodes".
type GasOptions struct {
	GasPrice      float64
	TipGwei       float64
	GasLimit      uint64
	ExtraGasPrice float64
	ExtraGasLimit uint64
}

// TxError is returned when a tx was broadcasted but did not succeed. It
// matches both its status sentinel and the cause with errors.Is/As.
type TxError struct {
	Hash     string
	Sentinel error
	Cause    error
}

func (e *TxError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Sentinel, e.Hash)
	}
	return fmt.Sprintf("%s: %s: %s", e.Sentinel, e.Hash, e.Cause)
}

func (e *TxError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Cause}
}

// TxManager manages
//  1. the wallets unlocked in a session and their next nonces. It queries
//     the nodes lazily and takes txs it broadcasted itself into account.
//  2. the network gas price, queried lazily prior to txs and cached for
//     GAS_INFO_TTL.
//  3. txs broadcasted in its life time.
//
// One TxManager serves one network.
type TxManager struct {
	lock sync.RWMutex
	// sendLock serializes nonce picking and broadcasting so concurrent
	// Transact calls never reuse a nonce
	sendLock sync.Mutex

	chainID     uint64
	reader      *reader.EthReader
	broadcaster *broadcaster.Broadcaster
	monitor     *monitor.TxMonitor
	gasOpts     GasOptions

	accounts map[common.Address]*account.Account
	// pendingNonces map between address => next nonce to sign (not mined nonce)
	pendingNonces map[common.Address]uint64
	// txs map between (address, nonce) => tx
	txs map[common.Address]map[uint64]*types.Transaction

	gasInfo *GasInfo
}

func NewTxManager(
	chainID uint64,
	r *reader.EthReader,
	b *broadcaster.Broadcaster,
	m *monitor.TxMonitor,
	opts GasOptions,
) *TxManager {
	return &TxManager{
		chainID:       chainID,
		reader:        r,
		broadcaster:   b,
		monitor:       m,
		gasOpts:       opts,
		accounts:      map[common.Address]*account.Account{},
		pendingNonces: map[common.Address]uint64{},
		txs:           map[common.Address]map[uint64]*types.Transaction{},
	}
}

func (tm *TxManager) ChainID() *big.Int {
	return new(big.Int).SetUint64(tm.chainID)
}

func (tm *TxManager) Reader() *reader.EthReader {
	return tm.reader
}

func (tm *TxManager) SetAccount(acc *account.Account) {
	tm.lock.Lock()
	defer tm.lock.Unlock()
	tm.accounts[acc.Address()] = acc
}

func (tm *TxManager) Account(wallet common.Address) *account.Account {
	tm.lock.RLock()
	defer tm.lock.RUnlock()
	return tm.accounts[wallet]
}

func (tm *TxManager) setPendingNonce(wallet common.Address, nonce uint64) {
	tm.lock.Lock()
	defer tm.lock.Unlock()
	tm.pendingNonces[wallet] = nonce
}

func (tm *TxManager) PendingNonce(wallet common.Address) (uint64, bool) {
	tm.lock.RLock()
	defer tm.lock.RUnlock()
	nonce, found := tm.pendingNonces[wallet]
	return nonce, found
}

func (tm *TxManager) setTx(wallet common.Address, tx *types.Transaction) {
	tm.lock.Lock()
	defer tm.lock.Unlock()
	if tm.txs[wallet] == nil {
		tm.txs[wallet] = map[uint64]*types.Transaction{}
	}
	tm.txs[wallet][tx.Nonce()] = tx
}

// Tx returns the tx this manager broadcasted from wallet with nonce.
func (tm *TxManager) Tx(wallet common.Address, nonce uint64) *types.Transaction {
	tm.lock.RLock()
	defer tm.lock.RUnlock()
	return tm.txs[wallet][nonce]
}

// Nonce reconciles the nonce known by the nodes with the one tracked locally:
//  1. if mined nonce == remote pending nonce, there is no pending tx on the
//     nodes, use the local nonce if it is ahead, otherwise the mined one.
//  2. if there are pending txs on the nodes and local is not ahead of them,
//     use the remote pending nonce so we don't replace txs from other apps.
//  3. if local is ahead of remote pending, the nodes lost some of our txs,
//     keep going with the local nonce.
func (tm *TxManager) Nonce(ctx context.Context, wallet common.Address) (uint64, error) {
	minedNonce, err := tm.reader.GetMinedNonce(ctx, wallet.Hex())
	if err != nil {
		return 0, fmt.Errorf("couldn't get mined nonce: %w", err)
	}
	remotePendingNonce, err := tm.reader.GetPendingNonce(ctx, wallet.Hex())
	if err != nil {
		return 0, fmt.Errorf("couldn't get remote pending nonce: %w", err)
	}
	localPendingNonce, found := tm.PendingNonce(wallet)
	if !found {
		tm.setPendingNonce(wallet, remotePendingNonce)
		localPendingNonce = remotePendingNonce
	}

	if minedNonce >= remotePendingNonce {
		if minedNonce > remotePendingNonce {
			return 0, fmt.Errorf(
				"mined nonce is higher than pending nonce, this is abnormal data from nodes, retry again later",
			)
		}
		if localPendingNonce <= minedNonce {
			tm.setPendingNonce(wallet, minedNonce)
			return minedNonce, nil
		}
		return localPendingNonce, nil
	}

	if localPendingNonce <= remotePendingNonce {
		return remotePendingNonce, nil
	}
	logger.L().Warnw("local nonce is ahead of the nodes",
		"wallet", wallet.Hex(), "local", localPendingNonce, "remote", remotePendingNonce)
	return localPendingNonce, nil
}

func (tm *TxManager) getGasInfo() *GasInfo {
	tm.lock.RLock()
	defer tm.lock.RUnlock()
	return tm.gasInfo
}

func (tm *TxManager) setGasInfo(info *GasInfo) {
	tm.lock.Lock()
	defer tm.lock.Unlock()
	tm.gasInfo = info
}

// GasSetting returns the network gas settings, cached for GAS_INFO_TTL.
func (tm *TxManager) GasSetting(ctx context.Context) (*GasInfo, error) {
	gasInfo := tm.getGasInfo()
	if gasInfo != nil && time.Since(gasInfo.Timestamp) < GAS_INFO_TTL {
		return gasInfo, nil
	}
	dynamic, err := tm.reader.CheckDynamicFeeTxAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get latest block: %w", err)
	}
	gasPrice, gasTipCapGwei, err := tm.reader.SuggestedGasSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get gas settings: %w", err)
	}
	info := &GasInfo{
		GasPrice:         gasPrice,
		MaxPriorityPrice: gasTipCapGwei,
		DynamicFee:       dynamic,
		Timestamp:        time.Now(),
	}
	tm.setGasInfo(info)
	return info, nil
}

// BuildTx estimates gas, picks the nonce and gas prices for a call from
// `from` to `to`. Errors from gas estimation carry the node's revert data.
func (tm *TxManager) BuildTx(
	ctx context.Context,
	from, to common.Address,
	value *big.Int,
	data []byte,
) (*types.Transaction, error) {
	gasInfo, err := tm.GasSetting(ctx)
	if err != nil {
		return nil, err
	}
	gasPrice, tipCapGwei := tm.gasOpts.GasPrice, tm.gasOpts.TipGwei
	if gasPrice == 0 {
		gasPrice = gasInfo.GasPrice
		tipCapGwei = gasInfo.MaxPriorityPrice
	}
	txType := uint8(types.LegacyTxType)
	if gasInfo.DynamicFee {
		txType = types.DynamicFeeTxType
		if tipCapGwei > gasPrice {
			tipCapGwei = gasPrice
		}
	}

	gasLimit := tm.gasOpts.GasLimit
	if gasLimit == 0 {
		gasLimit, err = tm.reader.EstimateExactGas(ctx, from.Hex(), to.Hex(), 0, value, data)
		if err != nil {
			return nil, fmt.Errorf(
				"couldn't estimate gas, the tx is meant to revert or network error: %w", err,
			)
		}
	}

	nonce, err := tm.Nonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("couldn't get nonce of the wallet from any nodes: %w", err)
	}

	return bankcommon.BuildExactTx(
		txType,
		nonce,
		to,
		value,
		gasLimit+tm.gasOpts.ExtraGasLimit,
		gasPrice+tm.gasOpts.ExtraGasPrice,
		tipCapGwei,
		data,
		tm.chainID,
	), nil
}

func (tm *TxManager) SignTx(wallet common.Address, tx *types.Transaction) (*types.Transaction, error) {
	acc := tm.Account(wallet)
	if acc == nil {
		return nil, fmt.Errorf("%s: %w", wallet.Hex(), ErrAccountNotLoaded)
	}
	return acc.SignTx(tx, tm.ChainID())
}

func (tm *TxManager) registerBroadcastedTx(tx *types.Transaction) error {
	wallet, err := types.Sender(types.LatestSignerForChainID(tm.ChainID()), tx)
	if err != nil {
		return fmt.Errorf("couldn't derive sender from the tx data: %w", err)
	}
	tm.setPendingNonce(wallet, tx.Nonce()+1)
	tm.setTx(wallet, tx)
	return nil
}

func (tm *TxManager) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, error) {
	hash, broadcasted, allErrors := tm.broadcaster.BroadcastTx(ctx, tx)
	if !broadcasted {
		return hash, fmt.Errorf("%w: %w", ErrNotBroadcasted, allErrors)
	}
	if allErrors != nil {
		logger.L().Debugw("some nodes rejected the tx", "tx", hash, "err", allErrors)
	}
	if err := tm.registerBroadcastedTx(tx); err != nil {
		logger.L().Warnw("couldn't track broadcasted tx", "tx", hash, "err", err)
	}
	return hash, nil
}

// Transact builds, signs and broadcasts a tx. It does not wait for it.
func (tm *TxManager) Transact(
	ctx context.Context,
	from, to common.Address,
	value *big.Int,
	data []byte,
) (*types.Transaction, error) {
	tm.sendLock.Lock()
	defer tm.sendLock.Unlock()

	tx, err := tm.BuildTx(ctx, from, to, value, data)
	if err != nil {
		return nil, err
	}
	signedTx, err := tm.SignTx(from, tx)
	if err != nil {
		return nil, err
	}
	hash, err := tm.BroadcastTx(ctx, signedTx)
	if err != nil {
		return signedTx, err
	}
	logger.L().Infow("tx broadcasted", "tx", hash, "from", from.Hex(), "to", to.Hex(), "nonce", signedTx.Nonce())
	return signedTx, nil
}

// Wait blocks until tx is mined. A reverted tx is re-run as a call on the
// block it was mined in so the returned TxError carries the revert reason.
func (tm *TxManager) Wait(ctx context.Context, from common.Address, tx *types.Transaction) (bankcommon.TxInfo, error) {
	hash := tx.Hash().Hex()
	info, err := tm.monitor.BlockingWait(ctx, hash)
	if err != nil {
		return info, fmt.Errorf("waiting for %s: %w", hash, err)
	}
	switch info.Status {
	case bankcommon.TxStatusDone:
		return info, nil
	case bankcommon.TxStatusLost:
		return info, &TxError{Hash: hash, Sentinel: ErrTxLost}
	}

	var callErr error
	if info.Receipt != nil && info.Receipt.BlockNumber != nil && tx.To() != nil {
		_, callErr = tm.reader.Call(
			ctx, from.Hex(), tx.To().Hex(), tx.Value(), tx.Data(), info.Receipt.BlockNumber.Int64(),
		)
	}
	return info, &TxError{Hash: hash, Sentinel: ErrTxReverted, Cause: callErr}
}

// TransactAndWait is Transact followed by Wait.
func (tm *TxManager) TransactAndWait(
	ctx context.Context,
	from, to common.Address,
	value *big.Int,
	data []byte,
) (bankcommon.TxInfo, error) {
	tx, err := tm.Transact(ctx, from, to, value, data)
	if err != nil {
		return bankcommon.TxInfo{Status: bankcommon.TxStatusError}, err
	}
	return tm.Wait(ctx, from, tx)
}

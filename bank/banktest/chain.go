// Package banktest provides an in-memory chain running the Bank contract
// rules behind the real ABI codec. It implements the reader and broadcaster
// node interfaces so the whole tx pipeline can be exercised in tests.
package banktest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tranvictor/bankdapp/bank"
)

const ChainID = 31337

const (
	// hardhat default accounts #0 and #1
	OwnerKey    = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	CustomerKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

	ReasonNotOwner          = "You must be the owner to set the name of the bank"
	ReasonEmptyDeposit      = "You need to deposit some amount of money!"
	ReasonInsufficientFunds = "You have insuffient funds to withdraw"
)

var (
	OwnerAddress    = addressOf(OwnerKey)
	CustomerAddress = addressOf(CustomerKey)
	ContractAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

func addressOf(hex string) common.Address {
	key, err := crypto.HexToECDSA(hex[2:])
	if err != nil {
		panic(err)
	}
	return crypto.PubkeyToAddress(key.PublicKey)
}

// RevertError mimics the json-rpc error nodes return for a reverted call.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

func (e *RevertError) ErrorCode() int {
	return 3
}

// ErrorData is the abi encoded Error(string) payload.
func (e *RevertError) ErrorData() interface{} {
	stringType, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringType}}.Pack(e.Reason)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return hexutil.Encode(append(selector, packed...))
}

type state struct {
	name     [32]byte
	balances map[common.Address]*big.Int
}

func (s *state) clone() *state {
	c := &state{name: s.name, balances: map[common.Address]*big.Int{}}
	for k, v := range s.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	return c
}

func (s *state) balance(addr common.Address) *big.Int {
	if b, found := s.balances[addr]; found {
		return b
	}
	return new(big.Int)
}

// Chain is a single node chain with one Bank contract deployed by Owner.
// Every accepted tx is mined immediately in its own block.
type Chain struct {
	Name  string
	Owner common.Address

	mu       sync.Mutex
	state    *state
	nonces   map[common.Address]uint64
	txs      map[common.Hash]*types.Transaction
	receipts map[common.Hash]*types.Receipt
	block    int64
	down     error
	reject   error
}

func NewChain(owner common.Address) *Chain {
	return &Chain{
		Name:     "banktest",
		Owner:    owner,
		state:    &state{balances: map[common.Address]*big.Int{}},
		nonces:   map[common.Address]uint64{},
		txs:      map[common.Hash]*types.Transaction{},
		receipts: map[common.Hash]*types.Receipt{},
		block:    1,
	}
}

// SetDown makes every call fail with err, nil brings the node back.
func (c *Chain) SetDown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.down = err
}

// SetRejectTxs makes the node refuse raw txs with err.
func (c *Chain) SetRejectTxs(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reject = err
}

// SetName writes the bank name storage slot directly.
func (c *Chain) SetName(raw [32]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.name = raw
}

// Balance is the bank balance of a customer.
func (c *Chain) Balance(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.state.balance(addr))
}

func (c *Chain) TxCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.txs)
}

func (c *Chain) checkDown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.down
}

// execute runs calldata against st as if sent by from with value attached.
func (c *Chain) execute(st *state, from common.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if len(data) < 4 {
		return nil, &RevertError{}
	}
	contractABI := bank.ABI()
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, &RevertError{}
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, &RevertError{}
	}
	if method.StateMutability != "payable" && value.Sign() != 0 {
		return nil, &RevertError{}
	}

	switch method.Name {
	case bank.MethodBankName:
		return method.Outputs.Pack(st.name)
	case bank.MethodBankOwner:
		return method.Outputs.Pack(c.Owner)
	case bank.MethodGetCustomerBalance:
		return method.Outputs.Pack(st.balance(from))
	case bank.MethodSetBankName:
		if from != c.Owner {
			return nil, &RevertError{Reason: ReasonNotOwner}
		}
		st.name = args[0].([32]byte)
		return nil, nil
	case bank.MethodDepositMoney:
		if value.Sign() == 0 {
			return nil, &RevertError{Reason: ReasonEmptyDeposit}
		}
		st.balances[from] = new(big.Int).Add(st.balance(from), value)
		return nil, nil
	case bank.MethodWithdrawMoney:
		total := args[1].(*big.Int)
		if total.Cmp(st.balance(from)) > 0 {
			return nil, &RevertError{Reason: ReasonInsufficientFunds}
		}
		st.balances[from] = new(big.Int).Sub(st.balance(from), total)
		return nil, nil
	}
	return nil, &RevertError{}
}

func (c *Chain) NodeName() string { return c.Name }
func (c *Chain) NodeURL() string  { return "banktest://" + c.Name }

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	return big.NewInt(ChainID), nil
}

func (c *Chain) EstimateGas(ctx context.Context, from, to string, priceGwei float64, value *big.Int, data []byte) (uint64, error) {
	if err := c.checkDown(ctx); err != nil {
		return 0, err
	}
	if common.HexToAddress(to) != ContractAddress {
		return 21000, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.execute(c.state.clone(), common.HexToAddress(from), value, data); err != nil {
		return 0, err
	}
	return 60000, nil
}

func (c *Chain) GetCode(ctx context.Context, address string) ([]byte, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	if common.HexToAddress(address) == ContractAddress {
		return []byte{0x60, 0x80, 0x60, 0x40}, nil
	}
	return nil, nil
}

func (c *Chain) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	return new(big.Int).Mul(big.NewInt(10000), big.NewInt(1e18)), nil
}

func (c *Chain) GetMinedNonce(ctx context.Context, address string) (uint64, error) {
	if err := c.checkDown(ctx); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[common.HexToAddress(address)], nil
}

func (c *Chain) GetPendingNonce(ctx context.Context, address string) (uint64, error) {
	return c.GetMinedNonce(ctx, address)
}

func (c *Chain) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, found := c.receipts[common.HexToHash(txHash)]
	if !found {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *Chain) TransactionByHash(ctx context.Context, txHash string) (*types.Transaction, bool, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, found := c.txs[common.HexToHash(txHash)]
	if !found {
		return nil, false, ethereum.NotFound
	}
	return tx, false, nil
}

func (c *Chain) SuggestedGasPrice(ctx context.Context) (*big.Int, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	return big.NewInt(2_000_000_000), nil
}

func (c *Chain) SuggestedGasTipCap(ctx context.Context) (*big.Int, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	return big.NewInt(1_000_000_000), nil
}

func (c *Chain) Call(ctx context.Context, from, to string, value *big.Int, data []byte, atBlock int64) ([]byte, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	if common.HexToAddress(to) != ContractAddress {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execute(c.state.clone(), common.HexToAddress(from), value, data)
}

func (c *Chain) HeaderByNumber(ctx context.Context, number int64) (*types.Header, error) {
	if err := c.checkDown(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if number < 0 {
		number = c.block
	}
	return &types.Header{
		Number:  big.NewInt(number),
		BaseFee: big.NewInt(1_000_000_000),
	}, nil
}

// SendRawTransaction validates and mines the tx right away. A reverting tx is
// still mined with a failed receipt, like on a real chain.
func (c *Chain) SendRawTransaction(ctx context.Context, data string) error {
	if err := c.checkDown(ctx); err != nil {
		return err
	}
	raw, err := hexutil.Decode(data)
	if err != nil {
		return err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reject != nil {
		return c.reject
	}
	if tx.ChainId().Cmp(big.NewInt(ChainID)) != 0 {
		return fmt.Errorf("invalid chain id %s", tx.ChainId())
	}
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(ChainID)), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if _, found := c.txs[tx.Hash()]; found {
		return errors.New("already known")
	}
	if tx.Nonce() != c.nonces[from] {
		return fmt.Errorf("invalid nonce: have %d, want %d", tx.Nonce(), c.nonces[from])
	}
	c.nonces[from]++
	c.block++

	status := types.ReceiptStatusSuccessful
	if tx.To() != nil && *tx.To() == ContractAddress {
		next := c.state.clone()
		if _, err := c.execute(next, from, tx.Value(), tx.Data()); err != nil {
			status = types.ReceiptStatusFailed
		} else {
			c.state = next
		}
	}
	c.txs[tx.Hash()] = tx
	c.receipts[tx.Hash()] = &types.Receipt{
		Type:        tx.Type(),
		Status:      status,
		TxHash:      tx.Hash(),
		GasUsed:     60000,
		BlockNumber: big.NewInt(c.block),
	}
	return nil
}

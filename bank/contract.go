// Package bank talks to a deployed Bank contract: it encodes calls with the
// contract ABI, reads the public state and submits the write methods.
package bank

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	bankcommon "github.com/tranvictor/bankdapp/common"
)

//go:embed abi/Bank.json
var bankABIJSON string

var bankABI = mustParseABI(bankABIJSON)

func mustParseABI(s string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Errorf("bank abi: %w", err))
	}
	return &parsed
}

// ABI returns the Bank contract ABI.
func ABI() *abi.ABI {
	return bankABI
}

// ABIJSON returns the raw ABI the package was built with.
func ABIJSON() string {
	return bankABIJSON
}

const (
	MethodBankName           = "bankName"
	MethodBankOwner          = "bankOwner"
	MethodGetCustomerBalance = "getCustomerBalance"
	MethodSetBankName        = "setBankName"
	MethodDepositMoney       = "depositMoney"
	MethodWithdrawMoney      = "withdrawMoney"
)

var (
	ErrEmptyName      = errors.New("bank name must not be empty")
	// zero amounts are left to the contract to accept or revert
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Caller runs view methods. reader.EthReader implements it.
type Caller interface {
	ReadContractWithABIAndFrom(
		ctx context.Context,
		result interface{},
		from string,
		caddr string,
		abi *abi.ABI,
		method string,
		args ...interface{},
	) error
}

// Transactor submits a tx and waits for it to be mined. txmanager.TxManager
// implements it.
type Transactor interface {
	TransactAndWait(
		ctx context.Context,
		from, to common.Address,
		value *big.Int,
		data []byte,
	) (bankcommon.TxInfo, error)
}

type Contract struct {
	address    common.Address
	caller     Caller
	transactor Transactor
}

func NewContract(address common.Address, caller Caller, transactor Transactor) *Contract {
	return &Contract{
		address:    address,
		caller:     caller,
		transactor: transactor,
	}
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) read(ctx context.Context, result interface{}, from common.Address, method string) error {
	err := c.caller.ReadContractWithABIAndFrom(ctx, result, from.Hex(), c.address.Hex(), bankABI, method)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// BankName returns the decoded bank name. isSet is false while the owner has
// never set one.
func (c *Contract) BankName(ctx context.Context) (name string, isSet bool, err error) {
	var raw [32]byte
	if err = c.read(ctx, &raw, common.Address{}, MethodBankName); err != nil {
		return "", false, err
	}
	if bankcommon.IsZeroBytes32(raw) {
		return "", false, nil
	}
	name, err = bankcommon.ParseBytes32String(raw)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", MethodBankName, err)
	}
	return name, true, nil
}

func (c *Contract) BankOwner(ctx context.Context) (common.Address, error) {
	var owner common.Address
	err := c.read(ctx, &owner, common.Address{}, MethodBankOwner)
	return owner, err
}

// CustomerBalance returns the wei balance the bank holds for customer. The
// contract scopes it to msg.sender so the call is made from customer.
func (c *Contract) CustomerBalance(ctx context.Context, customer common.Address) (*big.Int, error) {
	balance := new(big.Int)
	if err := c.read(ctx, &balance, customer, MethodGetCustomerBalance); err != nil {
		return nil, err
	}
	return balance, nil
}

// PackSetBankName validates and encodes a rename.
func PackSetBankName(name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	raw, err := bankcommon.FormatBytes32String(name)
	if err != nil {
		return nil, err
	}
	return bankABI.Pack(MethodSetBankName, raw)
}

func (c *Contract) SetBankName(ctx context.Context, from common.Address, name string) (bankcommon.TxInfo, error) {
	data, err := PackSetBankName(name)
	if err != nil {
		return bankcommon.TxInfo{}, err
	}
	return c.transactor.TransactAndWait(ctx, from, c.address, nil, data)
}

func (c *Contract) DepositMoney(ctx context.Context, from common.Address, amount *big.Int) (bankcommon.TxInfo, error) {
	if amount == nil || amount.Sign() < 0 {
		return bankcommon.TxInfo{}, ErrNegativeAmount
	}
	data, err := bankABI.Pack(MethodDepositMoney)
	if err != nil {
		return bankcommon.TxInfo{}, err
	}
	return c.transactor.TransactAndWait(ctx, from, c.address, amount, data)
}

// WithdrawMoney asks the bank to send amount of from's balance to `to`.
func (c *Contract) WithdrawMoney(
	ctx context.Context,
	from common.Address,
	to common.Address,
	amount *big.Int,
) (bankcommon.TxInfo, error) {
	if amount == nil || amount.Sign() < 0 {
		return bankcommon.TxInfo{}, ErrNegativeAmount
	}
	data, err := bankABI.Pack(MethodWithdrawMoney, to, amount)
	if err != nil {
		return bankcommon.TxInfo{}, err
	}
	return c.transactor.TransactAndWait(ctx, from, c.address, nil, data)
}

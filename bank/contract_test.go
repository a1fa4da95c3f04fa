package bank_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/bankdapp/bank"
	"github.com/tranvictor/bankdapp/bank/banktest"
	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/util/txmanager"
)

func ether(t *testing.T, s string) *big.Int {
	t.Helper()
	v, err := bankcommon.ParseEther(s)
	require.NoError(t, err)
	return v
}

func TestReadsOnFreshDeployment(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	c := chain.Contract()
	ctx := context.Background()

	name, isSet, err := c.BankName(ctx)
	require.NoError(t, err)
	assert.False(t, isSet)
	assert.Equal(t, "", name)

	owner, err := c.BankOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, banktest.OwnerAddress, owner)

	balance, err := c.CustomerBalance(ctx, banktest.CustomerAddress)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())
}

func TestSetBankNameRoundTrip(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	c := chain.Contract(banktest.OwnerKey)
	ctx := context.Background()

	info, err := c.SetBankName(ctx, banktest.OwnerAddress, "Gopher Savings")
	require.NoError(t, err)
	assert.Equal(t, bankcommon.TxStatusDone, info.Status)

	name, isSet, err := c.BankName(ctx)
	require.NoError(t, err)
	assert.True(t, isSet)
	assert.Equal(t, "Gopher Savings", name)
}

func TestSetBankNameByNonOwnerReverts(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	c := chain.Contract(banktest.CustomerKey)

	_, err := c.SetBankName(context.Background(), banktest.CustomerAddress, "Not Mine")
	require.Error(t, err)
	reason, ok := bank.RevertReason(err)
	assert.True(t, ok)
	assert.Equal(t, banktest.ReasonNotOwner, reason)
	assert.Equal(t, 0, chain.TxCount())
}

func TestSetBankNameRejectsBadInput(t *testing.T) {
	c := banktest.NewChain(banktest.OwnerAddress).Contract(banktest.OwnerKey)

	_, err := c.SetBankName(context.Background(), banktest.OwnerAddress, "  ")
	assert.ErrorIs(t, err, bank.ErrEmptyName)

	_, err = c.SetBankName(context.Background(), banktest.OwnerAddress, strings.Repeat("x", 32))
	assert.ErrorIs(t, err, bankcommon.ErrBytes32TooLong)
}

func TestDepositThenBalanceReflectsDeposit(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	c := chain.Contract(banktest.CustomerKey)
	ctx := context.Background()

	_, err := c.DepositMoney(ctx, banktest.CustomerAddress, ether(t, "1.5"))
	require.NoError(t, err)
	_, err = c.DepositMoney(ctx, banktest.CustomerAddress, ether(t, "0.25"))
	require.NoError(t, err)

	balance, err := c.CustomerBalance(ctx, banktest.CustomerAddress)
	require.NoError(t, err)
	assert.Equal(t, "1.75", bankcommon.FormatEther(balance))

	// balances are per msg.sender
	other, err := c.CustomerBalance(ctx, banktest.OwnerAddress)
	require.NoError(t, err)
	assert.Equal(t, 0, other.Sign())
}

func TestWithdrawMoreThanBalanceReverts(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	c := chain.Contract(banktest.CustomerKey)
	ctx := context.Background()

	_, err := c.DepositMoney(ctx, banktest.CustomerAddress, ether(t, "1"))
	require.NoError(t, err)

	_, err = c.WithdrawMoney(ctx, banktest.CustomerAddress, banktest.CustomerAddress, ether(t, "2"))
	require.Error(t, err)
	reason, ok := bank.RevertReason(err)
	assert.True(t, ok)
	assert.Equal(t, banktest.ReasonInsufficientFunds, reason)
	assert.Equal(t, ether(t, "1"), chain.Balance(banktest.CustomerAddress))

	_, err = c.WithdrawMoney(ctx, banktest.CustomerAddress, banktest.CustomerAddress, ether(t, "0.4"))
	require.NoError(t, err)
	assert.Equal(t, ether(t, "0.6"), chain.Balance(banktest.CustomerAddress))
}

func TestZeroDepositIsLeftToTheContract(t *testing.T) {
	c := banktest.NewChain(banktest.OwnerAddress).Contract(banktest.CustomerKey)
	_, err := c.DepositMoney(context.Background(), banktest.CustomerAddress, big.NewInt(0))
	reason, ok := bank.RevertReason(err)
	assert.True(t, ok)
	assert.Equal(t, banktest.ReasonEmptyDeposit, reason)

	_, err = c.DepositMoney(context.Background(), banktest.CustomerAddress, big.NewInt(-1))
	assert.ErrorIs(t, err, bank.ErrNegativeAmount)
}

func TestConcurrentDepositAndWithdraw(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	c := chain.Contract(banktest.CustomerKey)
	ctx := context.Background()

	_, err := c.DepositMoney(ctx, banktest.CustomerAddress, ether(t, "5"))
	require.NoError(t, err)

	deposit, withdraw := ether(t, "1"), ether(t, "2")
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = c.DepositMoney(ctx, banktest.CustomerAddress, deposit)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = c.WithdrawMoney(ctx, banktest.CustomerAddress, banktest.CustomerAddress, withdraw)
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, ether(t, "4"), chain.Balance(banktest.CustomerAddress))
}

func TestReadFailsWhenNodeIsDown(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	down := errors.New("connection refused")
	chain.SetDown(down)

	_, err := chain.Contract().BankOwner(context.Background())
	assert.ErrorIs(t, err, down)
	_, ok := bank.RevertReason(err)
	assert.False(t, ok)
}

func TestRejectedBroadcast(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	chain.SetRejectTxs(errors.New("insufficient funds for gas * price + value"))

	_, err := chain.Contract(banktest.CustomerKey).DepositMoney(
		context.Background(), banktest.CustomerAddress, big.NewInt(1))
	assert.ErrorIs(t, err, txmanager.ErrNotBroadcasted)
}

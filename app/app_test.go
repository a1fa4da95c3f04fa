package app

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tranvictor/bankdapp/bank/banktest"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/logger"
	"github.com/tranvictor/bankdapp/util/monitor"
	"github.com/tranvictor/bankdapp/util/txmanager"
	"github.com/tranvictor/bankdapp/wallet"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func chainSessions(chain *banktest.Chain) SessionFactory {
	return func(ctx context.Context, acc *account.Account) (*Session, error) {
		r := chain.Reader()
		m := monitor.NewGenericTxMonitor(r).WithInterval(time.Millisecond)
		return NewSession(
			networks.Localhost, r, chain.Broadcaster(), m,
			banktest.ContractAddress, acc, txmanager.GasOptions{},
		), nil
	}
}

func newTestApp(t *testing.T, chain *banktest.Chain, key string) (*App, *ui.RecordingUI) {
	t.Helper()
	provider, err := wallet.NewPrivateKeyProvider(key)
	require.NoError(t, err)
	u := ui.NewRecordingUI()
	a := New(u, provider, chainSessions(chain))
	t.Cleanup(a.Close)
	return a, u
}

func connected(t *testing.T, chain *banktest.Chain, key string) (*App, *ui.RecordingUI) {
	t.Helper()
	a, u := newTestApp(t, chain, key)
	require.NoError(t, a.Connect(context.Background()))
	return a, u
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind, "got %v", err)
	return appErr
}

type stubProvider struct {
	addrs    []common.Address
	err      error
	requests atomic.Int32
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.requests.Add(1)
	return p.addrs, p.err
}

func (p *stubProvider) Account(ctx context.Context, addr common.Address) (*account.Account, error) {
	return account.NewPrivateKeyAccount(banktest.CustomerKey)
}

func TestConnectWithoutProvider(t *testing.T) {
	u := ui.NewRecordingUI()
	a := New(u, nil, chainSessions(banktest.NewChain(banktest.OwnerAddress)))

	err := a.Connect(context.Background())
	requireKind(t, err, ProviderUnavailable)

	v := a.View()
	assert.False(t, v.Connected)
	assert.Equal(t, Disconnected, v.State)
	assert.Empty(t, v.Account)

	a.Render(u)
	assert.Contains(t, u.ErrorMessages(), wallet.ErrNoProvider.Error())
}

func TestConnectWithZeroAccounts(t *testing.T) {
	p := &stubProvider{}
	a := New(ui.NewRecordingUI(), p, chainSessions(banktest.NewChain(banktest.OwnerAddress)))

	err := a.Connect(context.Background())
	requireKind(t, err, UserRejected)

	v := a.View()
	assert.False(t, v.Connected)
	assert.Empty(t, v.Account)
	assert.Nil(t, v.Balance)
}

func TestConnectRejected(t *testing.T) {
	p := &stubProvider{err: wallet.ErrUserRejected}
	a := New(ui.NewRecordingUI(), p, chainSessions(banktest.NewChain(banktest.OwnerAddress)))

	requireKind(t, a.Connect(context.Background()), UserRejected)
	assert.Equal(t, Disconnected, a.State())
}

func TestConnectSessionFailure(t *testing.T) {
	p := &stubProvider{addrs: []common.Address{banktest.CustomerAddress}}
	factory := func(ctx context.Context, acc *account.Account) (*Session, error) {
		return nil, errors.New("dial tcp 127.0.0.1:8545: connection refused")
	}
	a := New(ui.NewRecordingUI(), p, factory)

	requireKind(t, a.Connect(context.Background()), NetworkError)
	assert.Equal(t, Disconnected, a.State())
	assert.Empty(t, a.View().Account)
}

func TestConnectLoadsPage(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, u := connected(t, chain, banktest.OwnerKey)

	v := a.View()
	assert.Equal(t, Connected, v.State)
	assert.True(t, v.Connected)
	assert.Equal(t, banktest.OwnerAddress.Hex(), v.Account)
	assert.Equal(t, banktest.OwnerAddress.Hex(), v.Owner)
	assert.True(t, v.IsOwner)
	assert.False(t, v.NameSet)
	assert.Equal(t, "0.0", v.BalanceEther())
	assert.Nil(t, v.LastError)

	a.Render(u)
	assert.True(t, u.HasMessage(SetupNamePrompt))
	assert.True(t, u.HasMessage(AdminPanelTitle))
	assert.True(t, u.HasMessage("Your Wallet Address: "+banktest.OwnerAddress.Hex()))
	assert.True(t, u.HasMessage("Wallet Connected"))
}

func TestConnectTwiceDoesNotPrompt(t *testing.T) {
	p := &stubProvider{addrs: []common.Address{banktest.CustomerAddress}}
	a := New(ui.NewRecordingUI(), p, chainSessions(banktest.NewChain(banktest.OwnerAddress)))
	t.Cleanup(a.Close)

	require.NoError(t, a.Connect(context.Background()))
	require.NoError(t, a.Connect(context.Background()))
	assert.Equal(t, int32(1), p.requests.Load())
	assert.Equal(t, Connected, a.State())
}

func TestAdminPanelOnlyForOwner(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		isOwner bool
	}{
		{"owner", banktest.OwnerKey, true},
		{"customer", banktest.CustomerKey, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := banktest.NewChain(banktest.OwnerAddress)
			a, u := connected(t, chain, tt.key)
			u.Reset()
			a.Render(u)
			assert.Equal(t, tt.isOwner, a.View().IsOwner)
			assert.Equal(t, tt.isOwner, u.HasMessage(AdminPanelTitle))
		})
	}
}

func TestOwnerFlagFollowsContractOwner(t *testing.T) {
	chain := banktest.NewChain(banktest.CustomerAddress)
	a, u := connected(t, chain, banktest.CustomerKey)
	assert.True(t, a.View().IsOwner)

	a.Render(u)
	assert.True(t, u.HasMessage(AdminPanelTitle))
}

func TestRenderAdminPanel(t *testing.T) {
	u := ui.NewRecordingUI()
	RenderView(u, View{State: Connected, Connected: true, IsOwner: true, NameDraft: "Draft"})
	assert.True(t, u.HasMessage(AdminPanelTitle))
	assert.True(t, u.HasMessage("Set Bank Name: Draft"))
	assert.True(t, u.HasMessage(SetupNamePrompt))

	u.Reset()
	RenderView(u, View{State: Connected, Connected: true, BankName: "Gopher Bank", NameSet: true})
	assert.False(t, u.HasMessage(AdminPanelTitle))
	assert.False(t, u.HasMessage(SetupNamePrompt))
	assert.Contains(t, u.CriticalMessages(), "Gopher Bank")
}

func TestRenameRoundTrip(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, u := connected(t, chain, banktest.OwnerKey)

	require.NoError(t, a.SetBankName(context.Background(), "Banco Café"))

	v := a.View()
	assert.True(t, v.NameSet)
	assert.Equal(t, "Banco Café", v.BankName)
	assert.Empty(t, v.NameDraft)

	u.Reset()
	a.Render(u)
	assert.Contains(t, u.CriticalMessages(), "Banco Café")
	assert.False(t, u.HasMessage(SetupNamePrompt))
}

func TestRenameNormalizesName(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.OwnerKey)

	// e followed by a combining acute accent
	require.NoError(t, a.SetBankName(context.Background(), "Cafe\u0301"))
	assert.Equal(t, "Caf\u00e9", a.View().BankName)
}

func TestRenameByCustomerReverts(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)

	err := a.SetBankName(context.Background(), "Not Mine")
	appErr := requireKind(t, err, ContractReverted)
	assert.Equal(t, banktest.ReasonNotOwner, appErr.Reason)

	v := a.View()
	assert.False(t, v.NameSet)
	assert.Equal(t, "Not Mine", v.NameDraft)
	assert.Equal(t, appErr, v.LastError)
}

func TestRenameRejectsEmptyName(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.OwnerKey)

	requireKind(t, a.SetBankName(context.Background(), ""), InvalidInput)
	requireKind(t, a.SetBankName(context.Background(), "a name longer than thirty one bytes"), InvalidInput)
	assert.Equal(t, 0, chain.TxCount())
}

func TestDepositThenBalance(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, u := connected(t, chain, banktest.CustomerKey)

	require.NoError(t, a.Deposit(context.Background(), "1.5"))

	v := a.View()
	want := new(big.Int).Div(ether(3), big.NewInt(2))
	assert.Equal(t, want, v.Balance)
	assert.Equal(t, "1.5", v.BalanceEther())
	assert.Equal(t, want, chain.Balance(banktest.CustomerAddress))
	assert.Empty(t, v.DepositInput)
	assert.True(t, u.HasMessage("Waiting for the deposit to be mined..."))
}

func TestWithdraw(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)
	ctx := context.Background()

	require.NoError(t, a.Deposit(ctx, "2"))
	require.NoError(t, a.Withdraw(ctx, "0.5"))

	v := a.View()
	assert.Equal(t, "1.5", v.BalanceEther())
	assert.Empty(t, v.WithdrawInput)
}

func TestWithdrawMoreThanBalance(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)
	ctx := context.Background()

	require.NoError(t, a.Deposit(ctx, "1"))
	err := a.Withdraw(ctx, "2")
	appErr := requireKind(t, err, ContractReverted)
	assert.Equal(t, banktest.ReasonInsufficientFunds, appErr.Reason)

	v := a.View()
	assert.Equal(t, ether(1), v.Balance)
	assert.Equal(t, "2", v.WithdrawInput)
	assert.Equal(t, ether(1), chain.Balance(banktest.CustomerAddress))
}

func TestInvalidAmounts(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)
	ctx := context.Background()

	for _, amount := range []string{"", "abc", "-1", "0.0000000000000000001", "1e3", "1E-18"} {
		requireKind(t, a.Deposit(ctx, amount), InvalidInput)
		requireKind(t, a.Withdraw(ctx, amount), InvalidInput)
	}
	assert.Equal(t, 0, chain.TxCount())
}

func TestZeroDepositIsLeftToTheContract(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)

	appErr := requireKind(t, a.Deposit(context.Background(), "0"), ContractReverted)
	assert.Equal(t, banktest.ReasonEmptyDeposit, appErr.Reason)
}

func TestWritesNeedConnection(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := newTestApp(t, chain, banktest.CustomerKey)
	ctx := context.Background()

	appErr := requireKind(t, a.Deposit(ctx, "1"), InvalidInput)
	assert.ErrorIs(t, appErr, ErrNotConnected)
	requireKind(t, a.Withdraw(ctx, "1"), InvalidInput)
	requireKind(t, a.SetBankName(ctx, "name"), InvalidInput)
	requireKind(t, a.Refresh(ctx, RefreshAll), InvalidInput)
	assert.Equal(t, 0, chain.TxCount())
}

func TestConcurrentDeposits(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = a.Deposit(context.Background(), "1")
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, ether(3), chain.Balance(banktest.CustomerAddress))
	require.NoError(t, a.Refresh(context.Background(), RefreshBalance))
	assert.Equal(t, ether(3), a.View().Balance)
}

func TestRefreshRecordsErrorsPerRead(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.OwnerKey)
	require.NoError(t, a.SetBankName(context.Background(), "Gopher Bank"))

	chain.SetDown(errors.New("connection refused"))
	err := a.Refresh(context.Background(), RefreshAll)
	requireKind(t, err, NetworkError)

	v := a.View()
	require.NotNil(t, v.NameErr)
	require.NotNil(t, v.OwnerErr)
	require.NotNil(t, v.BalanceErr)
	assert.Equal(t, NetworkError, v.BalanceErr.Kind)
	// last known values stay on the page
	assert.Equal(t, "Gopher Bank", v.BankName)
	assert.Equal(t, banktest.OwnerAddress.Hex(), v.Owner)

	chain.SetDown(nil)
	require.NoError(t, a.Refresh(context.Background(), RefreshAll))
	v = a.View()
	assert.Nil(t, v.NameErr)
	assert.Nil(t, v.OwnerErr)
	assert.Nil(t, v.BalanceErr)
}

func TestDisconnectResetsState(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	a, u := connected(t, chain, banktest.OwnerKey)
	require.NoError(t, a.Deposit(context.Background(), "1"))

	a.Disconnect()
	v := a.View()
	assert.Equal(t, Disconnected, v.State)
	assert.False(t, v.Connected)
	assert.False(t, v.IsOwner)
	assert.Empty(t, v.Account)
	assert.Empty(t, v.Owner)
	assert.Nil(t, v.Balance)

	u.Reset()
	a.Render(u)
	assert.True(t, u.HasMessage("Connect Wallet"))
	assert.False(t, u.HasMessage(AdminPanelTitle))

	require.NoError(t, a.Connect(context.Background()))
	assert.Equal(t, ether(1), a.View().Balance)
}

func TestFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger.Set(zap.New(core).Sugar())
	t.Cleanup(func() { logger.Set(zap.NewNop().Sugar()) })

	chain := banktest.NewChain(banktest.OwnerAddress)
	a, _ := connected(t, chain, banktest.CustomerKey)
	requireKind(t, a.Deposit(context.Background(), "abc"), InvalidInput)

	entries := logs.FilterMessage("deposit failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "invalid input", entries[0].ContextMap()["kind"])
	assert.Equal(t, 1, logs.FilterMessage("wallet connected").Len())
}

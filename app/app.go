// Package app is the bank page: it connects a wallet, mirrors the Bank
// contract state for the connected account and runs the deposit, withdraw
// and rename actions.
package app

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/util/logger"
	"github.com/tranvictor/bankdapp/wallet"
)

// View is a snapshot of the page state.
type View struct {
	State     State
	Connected bool
	IsOwner   bool

	BankName string
	NameSet  bool
	// Owner and Account are empty until known
	Owner   string
	Account string
	Balance *big.Int

	DepositInput  string
	WithdrawInput string
	NameDraft     string

	NameErr    *Error
	OwnerErr   *Error
	BalanceErr *Error
	LastError  *Error
}

// BalanceEther formats the balance, empty when unknown.
func (v View) BalanceEther() string {
	if v.Balance == nil {
		return ""
	}
	return bankcommon.FormatEther(v.Balance)
}

type App struct {
	ui         ui.UI
	provider   wallet.Provider
	newSession SessionFactory

	mu      sync.Mutex
	session *Session
	view    View
}

// New creates a disconnected page. A nil provider means no wallet is
// available, connecting then fails with ProviderUnavailable.
func New(u ui.UI, provider wallet.Provider, newSession SessionFactory) *App {
	return &App{
		ui:         u,
		provider:   provider,
		newSession: newSession,
	}
}

func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.view
	if v.Balance != nil {
		v.Balance = new(big.Int).Set(v.Balance)
	}
	return v
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.State
}

// apply runs e through the state machine. a.mu must be held.
func (a *App) apply(e Event) (Transition, error) {
	t, err := Next(a.view.State, e)
	if err != nil {
		return t, err
	}
	logger.L().Debugw("state transition", "from", a.view.State, "event", e, "to", t.To)
	if t.Reset {
		if a.session != nil {
			a.session.Close()
			a.session = nil
		}
		a.view = View{LastError: a.view.LastError}
	}
	a.view.State = t.To
	a.view.Connected = t.To == Connected
	return t, nil
}

// fail records err as the last error and logs it. It returns the
// classified error.
func (a *App) fail(action string, err error) *Error {
	appErr := Classify(err)
	logger.L().Errorw(action+" failed", "kind", appErr.Kind.String(), "reason", appErr.Reason, "err", err)
	a.mu.Lock()
	a.view.LastError = appErr
	a.mu.Unlock()
	return appErr
}

func (a *App) clearError() {
	a.mu.Lock()
	a.view.LastError = nil
	a.mu.Unlock()
}

func (a *App) deny(err error) error {
	a.mu.Lock()
	if _, terr := a.apply(AccountsDenied); terr != nil {
		logger.L().Warnw("ignored transition", "err", terr)
	}
	a.mu.Unlock()
	return a.fail("connect", err)
}

// Connect asks the provider for accounts and opens a session for the first
// one. Calling it while connected does nothing.
func (a *App) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.view.State != Disconnected {
		a.mu.Unlock()
		return nil
	}
	if _, err := a.apply(ConnectRequested); err != nil {
		a.mu.Unlock()
		return err
	}
	a.mu.Unlock()

	if a.provider == nil {
		return a.deny(wallet.ErrNoProvider)
	}
	addrs, err := a.provider.RequestAccounts(ctx)
	if err != nil {
		return a.deny(err)
	}
	if len(addrs) == 0 {
		return a.deny(fmt.Errorf("%w: no account authorized", wallet.ErrUserRejected))
	}
	acc, err := a.provider.Account(ctx, addrs[0])
	if err != nil {
		return a.deny(err)
	}
	session, err := a.newSession(ctx, acc)
	if err != nil {
		return a.deny(err)
	}

	a.mu.Lock()
	t, err := a.apply(AccountsGranted)
	if err != nil {
		// disconnected while the session was being opened
		a.mu.Unlock()
		session.Close()
		return a.fail("connect", err)
	}
	a.session = session
	a.view.Account = session.Address().Hex()
	a.view.LastError = nil
	a.mu.Unlock()
	logger.L().Infow("wallet connected", "account", session.Address().Hex(), "provider", a.provider.Name())

	return a.Refresh(ctx, t.Refresh)
}

// Disconnect closes the session and forgets the mirrored state.
func (a *App) Disconnect() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.apply(DisconnectRequested); err != nil {
		logger.L().Warnw("ignored transition", "err", err)
	}
}

// Close releases the session if any.
func (a *App) Close() {
	a.Disconnect()
}

func (a *App) currentSession() (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.State != Connected || a.session == nil {
		return nil, ErrNotConnected
	}
	return a.session, nil
}

// update applies f to the view if s is still the active session.
func (a *App) update(s *Session, f func(v *View)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != s {
		return
	}
	f(&a.view)
}

func (a *App) refreshName(ctx context.Context, s *Session) error {
	name, isSet, err := s.Contract.BankName(ctx)
	if err != nil {
		appErr := Classify(err)
		logger.L().Errorw("reading bank name failed", "err", err)
		a.update(s, func(v *View) { v.NameErr = appErr })
		return appErr
	}
	a.update(s, func(v *View) {
		v.BankName, v.NameSet, v.NameErr = name, isSet, nil
	})
	return nil
}

func (a *App) refreshOwner(ctx context.Context, s *Session) error {
	owner, err := s.Contract.BankOwner(ctx)
	if err != nil {
		appErr := Classify(err)
		logger.L().Errorw("reading bank owner failed", "err", err)
		a.update(s, func(v *View) { v.OwnerErr = appErr })
		return appErr
	}
	a.update(s, func(v *View) {
		v.Owner = owner.Hex()
		v.IsOwner = bankcommon.SameAddress(v.Owner, v.Account)
		v.OwnerErr = nil
	})
	return nil
}

func (a *App) refreshBalance(ctx context.Context, s *Session) error {
	balance, err := s.Contract.CustomerBalance(ctx, s.Address())
	if err != nil {
		appErr := Classify(err)
		logger.L().Errorw("reading balance failed", "err", err)
		a.update(s, func(v *View) { v.BalanceErr = appErr })
		return appErr
	}
	a.update(s, func(v *View) {
		v.Balance, v.BalanceErr = balance, nil
	})
	return nil
}

// Refresh runs the reads in what concurrently. Every read records its own
// error in the view, the first one is returned.
func (a *App) Refresh(ctx context.Context, what Refresh) error {
	s, err := a.currentSession()
	if err != nil {
		return a.fail("refresh", err)
	}
	var g errgroup.Group
	if what.Has(RefreshName) {
		g.Go(func() error { return a.refreshName(ctx, s) })
	}
	if what.Has(RefreshOwner) {
		g.Go(func() error { return a.refreshOwner(ctx, s) })
	}
	if what.Has(RefreshBalance) {
		g.Go(func() error { return a.refreshBalance(ctx, s) })
	}
	return g.Wait()
}

func (a *App) SetDepositInput(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.DepositInput = s
}

func (a *App) SetWithdrawInput(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.WithdrawInput = s
}

func (a *App) SetNameDraft(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.NameDraft = s
}

// run performs one write action. The view only changes through the
// refresh that follows a mined tx.
func (a *App) run(
	ctx context.Context,
	action string,
	refresh Refresh,
	send func(s *Session) (bankcommon.TxInfo, error),
	clearInput func(v *View),
) error {
	s, err := a.currentSession()
	if err != nil {
		return a.fail(action, err)
	}
	a.clearError()
	stop := a.ui.Spinner(fmt.Sprintf("Waiting for the %s to be mined...", action))
	info, err := send(s)
	stop()
	if err != nil {
		return a.fail(action, err)
	}
	if info.Receipt != nil {
		hash := info.Receipt.TxHash.Hex()
		if url := s.Network.TxURL(hash); url != "" {
			hash = url
		}
		a.ui.Success("%s mined: %s", action, hash)
	}
	a.update(s, clearInput)
	return a.Refresh(ctx, refresh)
}

// Deposit sends amount ether from the connected account to the bank.
func (a *App) Deposit(ctx context.Context, amount string) error {
	a.SetDepositInput(amount)
	wei, err := bankcommon.ParseEther(amount)
	if err != nil {
		return a.fail("deposit", err)
	}
	return a.run(ctx, "deposit", RefreshBalance,
		func(s *Session) (bankcommon.TxInfo, error) {
			return s.Contract.DepositMoney(ctx, s.Address(), wei)
		},
		func(v *View) { v.DepositInput = "" },
	)
}

// Withdraw takes amount ether out of the bank to the connected account.
func (a *App) Withdraw(ctx context.Context, amount string) error {
	a.SetWithdrawInput(amount)
	wei, err := bankcommon.ParseEther(amount)
	if err != nil {
		return a.fail("withdraw", err)
	}
	return a.run(ctx, "withdraw", RefreshBalance,
		func(s *Session) (bankcommon.TxInfo, error) {
			return s.Contract.WithdrawMoney(ctx, s.Address(), s.Address(), wei)
		},
		func(v *View) { v.WithdrawInput = "" },
	)
}

// SetBankName renames the bank. The name is NFC normalized so it reads back
// byte for byte the way it is displayed.
func (a *App) SetBankName(ctx context.Context, name string) error {
	name = norm.NFC.String(name)
	a.SetNameDraft(name)
	return a.run(ctx, "rename", RefreshName,
		func(s *Session) (bankcommon.TxInfo, error) {
			return s.Contract.SetBankName(ctx, s.Address(), name)
		},
		func(v *View) { v.NameDraft = "" },
	)
}

// Owner returns the owner address once known.
func (a *App) Owner() (common.Address, bool) {
	v := a.View()
	if v.Owner == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(v.Owner), true
}

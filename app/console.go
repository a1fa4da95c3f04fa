package app

import (
	"context"
)

const (
	ActionConnect    = "Connect Wallet"
	ActionDeposit    = "Deposit Money In ETH"
	ActionWithdraw   = "Withdraw Money In ETH"
	ActionSetName    = "Set Bank Name"
	ActionRefresh    = "Refresh"
	ActionDisconnect = "Disconnect"
	ActionQuit       = "Quit"
)

// ActionContext returns the context one console action runs with. The
// terminal cancels it on Ctrl-C so a receipt wait can be abandoned without
// leaving the console.
type ActionContext func() (context.Context, context.CancelFunc)

func backgroundAction() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// Console renders the page and runs the actions the user picks until they
// quit.
type Console struct {
	app       *App
	actionCtx ActionContext
}

// NewConsole creates a console over a. A nil actionCtx runs actions with
// a background context.
func NewConsole(a *App, actionCtx ActionContext) *Console {
	if actionCtx == nil {
		actionCtx = backgroundAction
	}
	return &Console{app: a, actionCtx: actionCtx}
}

// actions lists what the user can do in the current view.
func actions(v View) []string {
	if !v.Connected {
		return []string{ActionConnect, ActionQuit}
	}
	res := []string{ActionDeposit, ActionWithdraw}
	if v.IsOwner {
		res = append(res, ActionSetName)
	}
	return append(res, ActionRefresh, ActionDisconnect, ActionQuit)
}

// Run connects the wallet for the first render, then loops until the user
// quits. Failed actions are shown on the page and never end the loop.
func (c *Console) Run() {
	u := c.app.ui
	c.connect()
	for {
		c.app.Render(u)
		options := actions(c.app.View())
		picked := options[u.Choose("What do you want to do?", options)]
		if picked == ActionQuit {
			return
		}
		c.do(picked)
	}
}

func (c *Console) connect() {
	ctx, cancel := c.actionCtx()
	defer cancel()
	_ = c.app.Connect(ctx)
}

func (c *Console) do(action string) {
	u := c.app.ui
	ctx, cancel := c.actionCtx()
	defer cancel()

	switch action {
	case ActionConnect:
		_ = c.app.Connect(ctx)
	case ActionDeposit:
		u.Info("Amount to deposit (0.0000 ETH):")
		_ = c.app.Deposit(ctx, u.Ask(nil))
	case ActionWithdraw:
		u.Info("Amount to withdraw (0.0000 ETH):")
		_ = c.app.Withdraw(ctx, u.Ask(nil))
	case ActionSetName:
		u.Info("Enter a Name for Your Bank:")
		_ = c.app.SetBankName(ctx, u.Ask(nil))
	case ActionRefresh:
		_ = c.app.Refresh(ctx, RefreshAll)
	case ActionDisconnect:
		c.app.Disconnect()
	}
}

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/bankdapp/bank/banktest"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/wallet"
)

func TestConsoleSession(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	provider, err := wallet.NewPrivateKeyProvider(banktest.OwnerKey)
	require.NoError(t, err)
	u := ui.NewRecordingUI(
		ActionDeposit, "2",
		ActionWithdraw, "5",
		ActionWithdraw, "0.5",
		ActionSetName, "Gopher Bank",
		ActionDisconnect,
		ActionQuit,
	)
	a := New(u, provider, chainSessions(chain))

	var actionCtxs int
	NewConsole(a, func() (context.Context, context.CancelFunc) {
		actionCtxs++
		return context.WithCancel(context.Background())
	}).Run()

	assert.Equal(t, 6, actionCtxs)
	assert.Equal(t, "1500000000000000000", chain.Balance(banktest.OwnerAddress).String())
	assert.True(t, u.HasMessage(banktest.ReasonInsufficientFunds))
	assert.True(t, u.HasMessage("Gopher Bank"))
	assert.Equal(t, Disconnected, a.State())
}

func TestConsoleInitialLoad(t *testing.T) {
	chain := banktest.NewChain(banktest.OwnerAddress)
	provider, err := wallet.NewPrivateKeyProvider(banktest.OwnerKey)
	require.NoError(t, err)
	u := ui.NewRecordingUI(ActionQuit)
	a := New(u, provider, chainSessions(chain))
	t.Cleanup(a.Close)

	NewConsole(a, nil).Run()

	v := a.View()
	assert.Equal(t, Connected, a.State())
	assert.True(t, v.IsOwner)
	assert.Equal(t, banktest.OwnerAddress.Hex(), v.Owner)
	assert.Equal(t, banktest.OwnerAddress.Hex(), v.Account)
	require.NotNil(t, v.Balance)
	assert.Equal(t, "0", v.Balance.String())
	assert.True(t, u.HasMessage(SetupNamePrompt))
	assert.True(t, u.HasMessage(AdminPanelTitle))
}

func TestConsoleActions(t *testing.T) {
	assert.Equal(t, []string{ActionConnect, ActionQuit}, actions(View{}))
	assert.Equal(t,
		[]string{ActionDeposit, ActionWithdraw, ActionRefresh, ActionDisconnect, ActionQuit},
		actions(View{Connected: true}),
	)
	assert.Equal(t,
		[]string{ActionDeposit, ActionWithdraw, ActionSetName, ActionRefresh, ActionDisconnect, ActionQuit},
		actions(View{Connected: true, IsOwner: true}),
	)
}

func TestConsoleWithoutWallet(t *testing.T) {
	u := ui.NewRecordingUI(ActionConnect, ActionQuit)
	a := New(u, nil, chainSessions(banktest.NewChain(banktest.OwnerAddress)))
	NewConsole(a, nil).Run()

	assert.Contains(t, u.ErrorMessages(), wallet.ErrNoProvider.Error())
	assert.Len(t, u.ErrorMessages(), 2)
	assert.Equal(t, Disconnected, a.State())
}

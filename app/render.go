package app

import (
	"github.com/tranvictor/bankdapp/ui"
)

const (
	PageTitle       = "Bank Contract Project"
	AdminPanelTitle = "Bank Admin Panel"
	SetupNamePrompt = "Setup the name of your bank."
)

// Render writes the page for the current view.
func (a *App) Render(u ui.UI) {
	RenderView(u, a.View())
}

func RenderView(u ui.UI, v View) {
	u.Section(PageTitle)
	if v.LastError != nil {
		u.Error("%s", v.LastError.Error())
	}

	switch {
	case !v.NameSet && v.IsOwner:
		u.Info(SetupNamePrompt)
	case v.NameSet:
		u.Critical("%s", v.BankName)
	}

	rows := [][2]string{
		{"Customer Balance", balanceText(v)},
		{"Bank Owner Address", v.Owner},
	}
	if v.Connected {
		rows = append(rows, [2]string{"Your Wallet Address", v.Account})
		rows = append(rows, [2]string{"Wallet", "Wallet Connected"})
	} else {
		rows = append(rows, [2]string{"Wallet", "Connect Wallet"})
	}
	u.KeyValue(rows)

	for _, e := range []*Error{v.NameErr, v.OwnerErr, v.BalanceErr} {
		if e != nil {
			u.Warn("%s", e.Error())
		}
	}

	if v.IsOwner {
		u.Section(AdminPanelTitle)
		draft := v.NameDraft
		if draft == "" {
			draft = "Enter a Name for Your Bank"
		}
		u.KeyValue([][2]string{{"Set Bank Name", draft}})
	}
}

func balanceText(v View) string {
	if v.Balance == nil {
		return ""
	}
	return v.BalanceEther() + " ETH"
}

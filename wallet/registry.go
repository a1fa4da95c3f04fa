package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/bankdapp/accounts"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/logger"
)

// RegistryProvider serves keystore accounts from the account registry. The
// user approves the account through the UI once, the passphrase is asked
// the first time a signer is needed.
type RegistryProvider struct {
	ui       ui.UI
	registry *accounts.Registry
	hint     string

	mu       sync.Mutex
	approved []accounts.AccDesc
	unlocked map[common.Address]*account.Account
}

// NewRegistryProvider creates a provider. A non empty hint is fuzzy matched
// against the registry instead of letting the user pick.
func NewRegistryProvider(u ui.UI, registry *accounts.Registry, hint string) *RegistryProvider {
	return &RegistryProvider{
		ui:       u,
		registry: registry,
		hint:     hint,
		unlocked: map[common.Address]*account.Account{},
	}
}

func (p *RegistryProvider) Name() string {
	return "account registry"
}

func (p *RegistryProvider) pick() (accounts.AccDesc, error) {
	if p.hint != "" {
		return p.registry.Find(p.hint)
	}
	accs, err := p.registry.Accounts()
	if err != nil {
		return accounts.AccDesc{}, err
	}
	switch len(accs) {
	case 0:
		return accounts.AccDesc{}, ErrNoProvider
	case 1:
		return accs[0], nil
	}
	options := make([]string, len(accs))
	for i, a := range accs {
		options[i] = fmt.Sprintf("%s %s", a.Address, a.Desc)
	}
	return accs[p.ui.Choose("Select the account to connect", options)], nil
}

func addresses(descs []accounts.AccDesc) []common.Address {
	result := make([]common.Address, len(descs))
	for i, d := range descs {
		result[i] = common.HexToAddress(d.Address)
	}
	return result
}

func (p *RegistryProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.approved) > 0 {
		return addresses(p.approved), nil
	}

	desc, err := p.pick()
	if err != nil {
		return nil, err
	}
	p.ui.Interpret(fmt.Sprintf("%s (%s)", desc.Address, desc.Desc))
	if !p.ui.Confirm(fmt.Sprintf("Connect %s to the bank?", desc.Address), true) {
		logger.L().Infow("account request rejected", "address", desc.Address)
		return nil, ErrUserRejected
	}
	p.approved = []accounts.AccDesc{desc}
	return addresses(p.approved), nil
}

func (p *RegistryProvider) Account(ctx context.Context, addr common.Address) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if acc, found := p.unlocked[addr]; found {
		return acc, nil
	}
	var desc *accounts.AccDesc
	for i := range p.approved {
		if common.HexToAddress(p.approved[i].Address) == addr {
			desc = &p.approved[i]
		}
	}
	if desc == nil {
		return nil, fmt.Errorf("%s: %w", addr.Hex(), ErrNotAuthorized)
	}

	p.ui.Info("Using keystore: %s", desc.Keypath)
	passphrase := p.ui.Secret("Enter passphrase")
	acc, err := accounts.Unlock(*desc, passphrase)
	if err != nil {
		return nil, err
	}
	p.unlocked[addr] = acc
	return acc, nil
}

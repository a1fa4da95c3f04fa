package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/bankdapp/util/account"
)

// PrivateKeyProvider authorizes exactly one account without prompting.
type PrivateKeyProvider struct {
	acc *account.Account
}

func NewPrivateKeyProvider(hex string) (*PrivateKeyProvider, error) {
	acc, err := account.NewPrivateKeyAccount(hex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", PrivateKeyVariableName, err)
	}
	return &PrivateKeyProvider{acc: acc}, nil
}

// NewPrivateKeyFileProvider loads the key from a file holding it in hex,
// as geth writes node keys.
func NewPrivateKeyFileProvider(file string) (*PrivateKeyProvider, error) {
	acc, err := account.NewPrivateKeyFileAccount(file)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", PrivateKeyVariableName, file, err)
	}
	return &PrivateKeyProvider{acc: acc}, nil
}

func (p *PrivateKeyProvider) Name() string {
	return "private key"
}

func (p *PrivateKeyProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []common.Address{p.acc.Address()}, nil
}

func (p *PrivateKeyProvider) Account(ctx context.Context, addr common.Address) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if addr != p.acc.Address() {
		return nil, fmt.Errorf("%s: %w", addr.Hex(), ErrNotAuthorized)
	}
	return p.acc, nil
}

// Package wallet provides the accounts the bank page can connect with.
// A Provider plays the role of an injected browser wallet: it is asked for
// the accounts the user authorizes, then for a signer of one of them.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/bankdapp/accounts"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/util/account"
)

const PrivateKeyVariableName = "BANKDAPP_PRIVATE_KEY"

var (
	ErrNoProvider = errors.New(
		"no wallet found. Please register a wallet with `bankdapp wallet add` " +
			"or set " + PrivateKeyVariableName + " (a hex key or a key file) to use our bank",
	)
	ErrUserRejected  = errors.New("user rejected the request")
	ErrNotAuthorized = errors.New("account is not authorized")
)

type Provider interface {
	Name() string
	// RequestAccounts returns the accounts the user authorizes, in order.
	// Calling it again after a successful call returns the same accounts
	// without prompting.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Account returns a signer for an authorized address.
	Account(ctx context.Context, addr common.Address) (*account.Account, error)
}

// Detect picks the provider the way a page finds an injected wallet: an
// explicit private key wins, then the account registry. privateKey is either
// the key in hex or a file holding it. ErrNoProvider is returned when no key
// is given and the registry is empty.
func Detect(u ui.UI, registry *accounts.Registry, hint, privateKey string) (Provider, error) {
	if privateKey = strings.TrimSpace(privateKey); privateKey != "" {
		if info, err := os.Stat(privateKey); err == nil && info.Mode().IsRegular() {
			return NewPrivateKeyFileProvider(privateKey)
		}
		return NewPrivateKeyProvider(privateKey)
	}
	if registry == nil {
		return nil, ErrNoProvider
	}
	accs, err := registry.Accounts()
	if err != nil {
		return nil, fmt.Errorf("couldn't read the wallet registry %s: %w", registry.Dir(), err)
	}
	if len(accs) == 0 {
		return nil, ErrNoProvider
	}
	return NewRegistryProvider(u, registry, hint), nil
}

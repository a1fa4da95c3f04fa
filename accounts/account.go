package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/logger"
)

const KindKeystore = "keystore"

var ErrAccountNotFound = errors.New("no registered account matches")

type AccDesc struct {
	Address string
	Kind    string
	Keypath string
	Desc    string
}

// Registry keeps one json description per account in its directory and the
// keystores it imported under dir/keystores.
type Registry struct {
	dir     string
	scryptN int
	scryptP int
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:     dir,
		scryptN: gethkeystore.StandardScryptN,
		scryptP: gethkeystore.StandardScryptP,
	}
}

// DefaultRegistry is the registry under the bankdapp data dir.
func DefaultRegistry() *Registry {
	return NewRegistry(filepath.Join(bankcommon.DataDir(), "accounts"))
}

// WithScrypt changes the key derivation cost of keystores created by
// ImportPrivateKey.
func (r *Registry) WithScrypt(n, p int) *Registry {
	r.scryptN = n
	r.scryptP = p
	return r
}

func (r *Registry) Dir() string {
	return r.dir
}

type keystoreFile struct {
	Address string `json:"address"`
}

// VerifyKeystore returns the checksummed address a keystore file belongs to.
func VerifyKeystore(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	k := &keystoreFile{}
	if err = json.Unmarshal(content, k); err != nil {
		return "", fmt.Errorf("%s is not a keystore file: %w", path, err)
	}
	if !common.IsHexAddress(k.Address) {
		return "", fmt.Errorf("%s has no valid address", path)
	}
	return common.HexToAddress(k.Address).Hex(), nil
}

// ImportPrivateKey encrypts privateKey with passphrase into a new keystore
// and registers it.
func (r *Registry) ImportPrivateKey(privateKey, passphrase, desc string) (AccDesc, error) {
	_, priv, err := account.PrivateKeyFromHex(privateKey)
	if err != nil {
		return AccDesc{}, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return AccDesc{}, err
	}
	key := &gethkeystore.Key{
		Id:         id,
		Address:    bankcommon.HexToAddress(account.AddressFromPrivateKey(priv)),
		PrivateKey: priv,
	}
	keystoreJSON, err := gethkeystore.EncryptKey(key, passphrase, r.scryptN, r.scryptP)
	if err != nil {
		return AccDesc{}, fmt.Errorf("couldn't encrypt the key: %w", err)
	}

	dir := filepath.Join(r.dir, "keystores")
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return AccDesc{}, err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.json", key.Address.Hex()))
	if err = os.WriteFile(path, keystoreJSON, 0o600); err != nil {
		return AccDesc{}, err
	}
	return r.AddKeystore(path, desc)
}

// AddKeystore registers an existing keystore file without copying it.
func (r *Registry) AddKeystore(path, desc string) (AccDesc, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AccDesc{}, err
	}
	address, err := VerifyKeystore(abs)
	if err != nil {
		return AccDesc{}, err
	}
	ad := AccDesc{
		Address: address,
		Kind:    KindKeystore,
		Keypath: abs,
		Desc:    strings.TrimSpace(desc),
	}
	return ad, r.StoreAccountRecord(ad)
}

func (r *Registry) StoreAccountRecord(ad AccDesc) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}
	content, err := json.MarshalIndent(ad, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.dir, fmt.Sprintf("%s.json", ad.Address))
	logger.L().Debugw("storing account record", "address", ad.Address, "path", path)
	return os.WriteFile(path, content, 0o600)
}

// Accounts returns the registered accounts sorted by address. Unreadable
// records are skipped. A missing directory is an empty registry.
func (r *Registry) Accounts() ([]AccDesc, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []AccDesc{}, nil
	}
	if err != nil {
		return nil, err
	}
	result := []AccDesc{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		p := filepath.Join(r.dir, e.Name())
		content, err := os.ReadFile(p)
		if err != nil {
			logger.L().Warnw("reading account description failed", "path", p, "err", err)
			continue
		}
		desc := AccDesc{}
		if err = json.Unmarshal(content, &desc); err != nil {
			logger.L().Warnw("invalid account description", "path", p, "err", err)
			continue
		}
		if !bankcommon.IsAddress(desc.Address) {
			logger.L().Warnw("account description without address", "path", p)
			continue
		}
		result = append(result, desc)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Address) < strings.ToLower(result[j].Address)
	})
	return result, nil
}

// Find returns the best fuzzy match of input against the registered
// addresses and descriptions.
func (r *Registry) Find(input string) (AccDesc, error) {
	source, err := r.fuzzySource()
	if err != nil {
		return AccDesc{}, err
	}
	matches := fuzzy.FindFrom(strings.ReplaceAll(input, " ", "_"), source)
	if len(matches) == 0 {
		return AccDesc{}, fmt.Errorf("%w '%s'", ErrAccountNotFound, input)
	}
	return source[matches[0].Index], nil
}

// Unlock decrypts the account's keystore.
func Unlock(ad AccDesc, passphrase string) (*account.Account, error) {
	if ad.Kind != KindKeystore {
		return nil, fmt.Errorf("account kind %q is not supported", ad.Kind)
	}
	acc, err := account.NewKeystoreAccount(ad.Keypath, passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking keystore '%s' failed: %w", ad.Keypath, err)
	}
	if !bankcommon.SameAddress(acc.AddressHex(), ad.Address) {
		return nil, fmt.Errorf(
			"keystore '%s' belongs to %s, not %s", ad.Keypath, acc.AddressHex(), ad.Address,
		)
	}
	return acc, nil
}

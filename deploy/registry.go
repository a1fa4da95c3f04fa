package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bankcommon "github.com/tranvictor/bankdapp/common"
)

type Deployment struct {
	Name      string    `json:"name"`
	Network   string    `json:"network"`
	ChainID   uint64    `json:"chain_id"`
	Address   string    `json:"address"`
	Deployer  string    `json:"deployer"`
	TxHash    string    `json:"tx_hash"`
	Timestamp time.Time `json:"timestamp"`
}

// Registry is the list of deployments made from this machine, kept in one
// json file.
type Registry struct {
	mu   sync.Mutex
	path string
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

func DefaultRegistry() *Registry {
	return NewRegistry(filepath.Join(bankcommon.DataDir(), "deployments.json"))
}

func (r *Registry) load() ([]Deployment, error) {
	content, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Deployment{}, nil
	}
	if err != nil {
		return nil, err
	}
	result := []Deployment{}
	if err = json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return result, nil
}

// List returns the deployments oldest first.
func (r *Registry) List() ([]Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *Registry) Add(d Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.load()
	if err != nil {
		return err
	}
	all = append(all, d)
	content, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Latest returns the most recent deployment on network.
func (r *Registry) Latest(network string) (Deployment, bool, error) {
	all, err := r.List()
	if err != nil {
		return Deployment{}, false, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if strings.EqualFold(all[i].Network, network) {
			return all[i], true, nil
		}
	}
	return Deployment{}, false, nil
}

// Labels names every deployment for the address book.
func (r *Registry) Labels() ([]bankcommon.Address, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	result := make([]bankcommon.Address, 0, len(all))
	for _, d := range all {
		result = append(result, bankcommon.Address{
			Address: d.Address,
			Desc:    fmt.Sprintf("%s on %s", d.Name, d.Network),
		})
	}
	return result, nil
}

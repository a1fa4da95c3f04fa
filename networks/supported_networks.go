package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/util/logger"
)

var (
	EthereumMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "mainnet",
		AlternativeNames:   []string{"ethereum"},
		ChainID:            1,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		NodeVariableName:   "ETHEREUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"mainnet-publicnode": "https://ethereum-rpc.publicnode.com",
			"mainnet-llamarpc":   "https://eth.llamarpc.com",
		},
		BlockExplorerURL: "https://etherscan.io",
	})

	Sepolia Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "sepolia",
		ChainID:            11155111,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		NodeVariableName:   "ETHEREUM_SEPOLIA_NODE",
		DefaultNodes: map[string]string{
			"sepolia-publicnode": "https://ethereum-sepolia-rpc.publicnode.com",
		},
		BlockExplorerURL: "https://sepolia.etherscan.io",
	})

	Holesky Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "holesky",
		ChainID:            17000,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		NodeVariableName:   "ETHEREUM_HOLESKY_NODE",
		DefaultNodes: map[string]string{
			"holesky-publicnode": "https://ethereum-holesky-rpc.publicnode.com",
		},
		BlockExplorerURL: "https://holesky.etherscan.io",
	})

	// Localhost is the hardhat/anvil development chain.
	Localhost Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "localhost",
		AlternativeNames:   []string{"hardhat", "anvil"},
		ChainID:            31337,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          1,
		NodeVariableName:   "LOCALHOST_NODE",
		DefaultNodes: map[string]string{
			"localhost": "http://127.0.0.1:8545",
		},
	})
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	Sepolia,
	Holesky,
	Localhost,
}

var ErrNetworkNotFound = fmt.Errorf("network not found")

type networks struct {
	mu           sync.RWMutex
	networks     map[string]Network
	networksByID map[uint64]Network
	customDir    string
}

func (n *networks) getSupportedNetworkNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) list() []Network {
	n.mu.RLock()
	defer n.mu.RUnlock()
	seen := map[Network]bool{}
	res := []Network{}
	for _, nw := range n.networks {
		if seen[nw] {
			continue
		}
		seen[nw] = true
		res = append(res, nw)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetName() < res[j].GetName() })
	return res
}

// register adds a network under its name and alternative names. Later
// registrations replace earlier ones so custom networks win over built-ins.
func (n *networks) register(nw Network) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if old, found := n.networks[nw.GetName()]; found {
		logger.L().Infow("network overridden", "name", nw.GetName(), "old_chain_id", old.GetChainID())
	}
	n.networks[nw.GetName()] = nw
	n.networksByID[nw.GetChainID()] = nw
	for _, an := range nw.GetAlternativeNames() {
		n.networks[an] = nw
	}
}

func newNetworks(builtins []Network, customDir string) *networks {
	result := &networks{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
		customDir:    customDir,
	}
	for _, nw := range builtins {
		result.register(nw)
	}

	customNetworks, err := loadCustomNetworks(customDir)
	if err != nil {
		logger.L().Warnw("failed to load custom networks, continue with built-in networks", "err", err)
		return result
	}
	for _, nw := range customNetworks {
		result.register(nw)
	}
	return result
}

func loadCustomNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			logger.L().Warnw("skip custom network", "file", file, "err", err)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func (n *networks) add(network Network) error {
	n.register(network)

	if err := os.MkdirAll(n.customDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", n.customDir, err)
	}

	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	err = os.WriteFile(filepath.Join(n.customDir, fmt.Sprintf("%s.json", network.GetName())), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	if err := json.Unmarshal(content, &networkConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.NativeTokenSymbol == "" {
		networkConfig.NativeTokenSymbol = "ETH"
	}
	if networkConfig.NativeTokenDecimal == 0 {
		networkConfig.NativeTokenDecimal = 18
	}
	network := NewGenericNetwork(networkConfig)
	if err := network.validate(); err != nil {
		return nil, err
	}
	return network, nil
}

func CustomNetworksDir() string {
	return filepath.Join(bankcommon.DataDir(), "networks")
}

var (
	globalOnce              sync.Once
	globalSupportedNetworks *networks
)

func global() *networks {
	globalOnce.Do(func() {
		globalSupportedNetworks = newNetworks(supportedNetworks, CustomNetworksDir())
	})
	return globalSupportedNetworks
}

func GetSupportedNetworks() []Network {
	return global().list()
}

func GetNetwork(name string) (Network, error) {
	return global().getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return global().getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return global().getSupportedNetworkNames()
}

// AddNetwork registers the network for this process and stores it in the
// custom networks directory so later runs pick it up.
func AddNetwork(network Network) error {
	return global().add(network)
}

package networks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinNetworksResolveByNameAndAlias(t *testing.T) {
	n := newNetworks(supportedNetworks, t.TempDir())

	nw, err := n.getNetwork("hardhat")
	require.NoError(t, err)
	assert.Equal(t, "localhost", nw.GetName())
	assert.Equal(t, uint64(31337), nw.GetChainID())

	nw, err = n.getNetworkByID(11155111)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", nw.GetName())

	_, err = n.getNetwork("ropsten")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestCustomNetworkOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"name": "localhost",
		"chain_id": 1337,
		"default_nodes": {"ganache": "http://127.0.0.1:7545"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost.json"), []byte(content), 0644))
	// broken files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	n := newNetworks(supportedNetworks, dir)
	nw, err := n.getNetwork("localhost")
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), nw.GetChainID())
	assert.Equal(t, "ETH", nw.GetNativeTokenSymbol())
	assert.Equal(t, uint64(18), nw.GetNativeTokenDecimal())
}

func TestAddNetworkPersists(t *testing.T) {
	dir := t.TempDir()
	n := newNetworks(nil, dir)

	nw := NewGenericNetwork(GenericNetworkConfig{
		Name:             "devnet",
		ChainID:          4242,
		DefaultNodes:     map[string]string{"dev": "http://10.0.0.2:8545"},
		BlockExplorerURL: "https://explorer.devnet/",
	})
	require.NoError(t, n.add(nw))

	reloaded := newNetworks(nil, dir)
	got, err := reloaded.getNetwork("devnet")
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), got.GetChainID())
	assert.Equal(t, "https://explorer.devnet/tx/0xabc", got.TxURL("0xabc"))
}

func TestNewNetworkFromJSONValidates(t *testing.T) {
	_, err := NewNetworkFromJSON([]byte(`{"name": "nochain", "default_nodes": {"a": "http://a"}}`))
	assert.Error(t, err)

	_, err = NewNetworkFromJSON([]byte(`{"name": "nonode", "chain_id": 5}`))
	assert.Error(t, err)
}

func TestGetNodesUsesNodeVariable(t *testing.T) {
	nw := NewGenericNetwork(GenericNetworkConfig{
		Name:             "envnet",
		ChainID:          99,
		NodeVariableName: "BANKDAPP_TEST_ENVNET_NODE",
	})

	_, err := GetNodes(nw)
	assert.Error(t, err)

	t.Setenv("BANKDAPP_TEST_ENVNET_NODE", " http://node.local:8545 ")
	nodes, err := GetNodes(nw)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"custom-node": "http://node.local:8545"}, nodes)
}

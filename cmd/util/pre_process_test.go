package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/bankdapp/accounts"
	"github.com/tranvictor/bankdapp/deploy"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/ui"
)

const (
	localBank   = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	sepoliaBank = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	labelled    = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
)

func testRegistries(t *testing.T) (*deploy.Registry, *accounts.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	deployments := deploy.NewRegistry(filepath.Join(dir, "deployments.json"))
	now := time.Now()
	require.NoError(t, deployments.Add(deploy.Deployment{
		Name: "Bank", Network: "localhost", ChainID: 31337, Address: localBank, Timestamp: now,
	}))
	require.NoError(t, deployments.Add(deploy.Deployment{
		Name: "Bank", Network: "sepolia", ChainID: 11155111, Address: sepoliaBank, Timestamp: now,
	}))
	labels := filepath.Join(dir, "addresses.json")
	require.NoError(t, os.WriteFile(labels, []byte(`{"`+labelled+`": "gopher treasury"}`), 0o600))
	return deployments, accounts.NewRegistry(filepath.Join(dir, "accounts")), labels
}

func TestResolveContract(t *testing.T) {
	deployments, registry, labels := testRegistries(t)

	tests := []struct {
		name    string
		input   string
		network networks.Network
		want    string
	}{
		{"address", " " + labelled + " ", networks.Localhost, labelled},
		{"latest deployment", "", networks.Localhost, localBank},
		{"latest deployment on sepolia", "", networks.Sepolia, sepoliaBank},
		{"label", "treasury", networks.Localhost, labelled},
		{"deployment label", "sepolia", networks.Localhost, sepoliaBank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveContract(tt.input, tt.network, deployments, registry, labels)
			require.NoError(t, err)
			assert.Equal(t, common.HexToAddress(tt.want), got)
		})
	}
}

func TestResolveContractNotFound(t *testing.T) {
	deployments, registry, labels := testRegistries(t)

	_, err := ResolveContract("", networks.Holesky, deployments, registry, labels)
	assert.ErrorIs(t, err, ErrNoDeployment)

	_, err = ResolveContract("nothing like this", networks.Localhost, deployments, registry, labels)
	assert.Error(t, err)
}

func TestPromptItemInList(t *testing.T) {
	u := ui.NewRecordingUI("keystore")
	got := PromptItemInList(u, "Enter key type", []string{"keystore", "privatekey"})
	assert.Equal(t, "keystore", got)
	assert.Equal(t, []string{"Enter key type"}, u.InfoMessages())
}

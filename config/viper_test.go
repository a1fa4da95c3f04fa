package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFlags struct {
	network string
	from    string
	gas     uint64
	timeout time.Duration
}

func newFlagSet(t *testing.T) (*pflag.FlagSet, *testFlags) {
	t.Helper()
	tf := &testFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVarP(&tf.network, "network", "k", "localhost", "")
	fs.StringVarP(&tf.from, "from", "f", "", "")
	fs.Uint64Var(&tf.gas, "deploy-gas", 0, "")
	fs.DurationVar(&tf.timeout, "timeout", 5*time.Minute, "")
	return fs, tf
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromConfigFile(t *testing.T) {
	path := writeConfig(t, "network: sepolia\ndeploy-gas: 900000\ntimeout: 30s\n")
	fs, tf := newFlagSet(t)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, Load(fs, path))
	assert.Equal(t, "sepolia", tf.network)
	assert.Equal(t, uint64(900000), tf.gas)
	assert.Equal(t, 30*time.Second, tf.timeout)
	assert.Empty(t, tf.from)
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	path := writeConfig(t, "network: sepolia\n")
	t.Setenv("BANKDAPP_NETWORK", "holesky")
	t.Setenv("BANKDAPP_DEPLOY_GAS", "1234")
	fs, tf := newFlagSet(t)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, Load(fs, path))
	assert.Equal(t, "holesky", tf.network)
	assert.Equal(t, uint64(1234), tf.gas)
}

func TestLoadFlagsWin(t *testing.T) {
	path := writeConfig(t, "network: sepolia\nfrom: alice\n")
	t.Setenv("BANKDAPP_NETWORK", "holesky")
	fs, tf := newFlagSet(t)
	require.NoError(t, fs.Parse([]string{"-k", "mainnet"}))

	require.NoError(t, Load(fs, path))
	assert.Equal(t, "mainnet", tf.network)
	assert.Equal(t, "alice", tf.from)
}

func TestLoadMissingConfigFile(t *testing.T) {
	fs, tf := newFlagSet(t)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, Load(fs, filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Equal(t, "localhost", tf.network)
}

func TestLoadInvalidValue(t *testing.T) {
	path := writeConfig(t, "deploy-gas: lots\n")
	fs, _ := newFlagSet(t)
	require.NoError(t, fs.Parse(nil))

	err := Load(fs, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy-gas")
}

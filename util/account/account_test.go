package account

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hardhat's first default account
const testKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
const testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestPrivateKeyFromHex(t *testing.T) {
	addr, _, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	addr, _, err = PrivateKeyFromHex(testKeyHex[2:])
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	_, _, err = PrivateKeyFromHex("0x1234")
	assert.Error(t, err)
}

func TestSignTxRecoversSender(t *testing.T) {
	acc, err := NewPrivateKeyAccount(testKeyHex)
	require.NoError(t, err)

	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	chainID := big.NewInt(31337)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       50000,
		To:        &to,
		Value:     big.NewInt(0),
	})
	signed, err := acc.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, acc.Address(), sender)
	assert.Equal(t, testAddress, acc.AddressHex())
}

func TestKeystoreAccount(t *testing.T) {
	key, err := crypto.HexToECDSA(testKeyHex[2:])
	require.NoError(t, err)
	content, err := keystore.EncryptKey(&keystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, "secret", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(file, content, 0600))

	acc, err := NewKeystoreAccount(file, "secret")
	require.NoError(t, err)
	assert.Equal(t, testAddress, acc.AddressHex())

	_, err = NewKeystoreAccount(file, "wrong")
	assert.ErrorIs(t, err, keystore.ErrDecrypt)
}

package wallet

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 公开的测试私钥（hardhat 默认账户 #0）
const testKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var testAddress = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func TestNewWalletFromPrivateKey(t *testing.T) {
	w, err := NewWalletFromPrivateKey(testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testAddress, w.Address())

	_, err = NewWalletFromPrivateKey("0x1234")
	assert.Error(t, err)
}

func TestSimpleWallet_SignTx(t *testing.T) {
	w, err := NewWalletFromPrivateKey(testKeyHex)
	require.NoError(t, err)

	to := common.HexToAddress("0x00000000000000000000000000000000000000b0")
	chainID := big.NewInt(4)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    1,
		GasPrice: big.NewInt(1_000_000_000),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(0),
	})

	signed, err := w.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, testAddress, sender)

	_, err = w.SignTx(tx, nil)
	assert.Error(t, err)
}

func TestSimpleWallet_SignMessage(t *testing.T) {
	w, err := NewWallet()
	require.NoError(t, err)

	msg := []byte("rightshare")
	sig, err := w.SignMessage(msg)
	require.NoError(t, err)
	assert.Len(t, sig, 65)

	signer, err := RecoverMessageSigner(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), signer)

	_, err = w.SignHash([]byte("short"))
	assert.Error(t, err)
}

func TestKeystoreManager_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeystoreManager(filepath.Join(dir, "keys"), WithLightScrypt())
	require.NoError(t, err)

	w, err := NewWalletFromPrivateKey(testKeyHex)
	require.NoError(t, err)

	path, err := km.Save(w, "secret")
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded, err := km.Load(testAddress, "secret")
	require.NoError(t, err)
	assert.Equal(t, w.Address(), loaded.Address())

	_, err = km.Load(testAddress, "wrong")
	assert.Error(t, err)
}

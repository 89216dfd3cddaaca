package ledger

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rightshare/client-sdk-go/services/rights"
)

func selector(contract abi.ABI, method string) string {
	return hex.EncodeToString(contract.Methods[method].ID)
}

func packOutput(t *testing.T, contract abi.ABI, method string, v interface{}) []byte {
	t.Helper()
	out, err := contract.Methods[method].Outputs.Pack(v)
	require.NoError(t, err)
	return out
}

func TestReader_RefreshPlainAsset(t *testing.T) {
	eth := &fakeEth{calls: map[string][]byte{
		selector(nftContract, "ownerOf"):        packOutput(t, nftContract, "ownerOf", common.HexToAddress(otherAddr)),
		selector(rightsDaoContract, "isFrozen"): packOutput(t, rightsDaoContract, "isFrozen", true),
	}}
	reader := NewReader(eth, Rinkeby.Contracts)

	before := plainAsset()
	fresh, err := reader.Refresh(context.Background(), before)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress(otherAddr).Hex(), fresh.Owner)
	assert.True(t, fresh.IsFrozen)
	assert.Equal(t, rights.AssetPlain, fresh.Type)
	assert.Equal(t, ownerAddr, before.Owner, "input snapshot is not modified")
	assert.False(t, before.IsFrozen)
}

func TestReader_RefreshFRight(t *testing.T) {
	eth := &fakeEth{calls: map[string][]byte{
		selector(nftContract, "ownerOf"):             packOutput(t, nftContract, "ownerOf", common.HexToAddress(ownerAddr)),
		selector(rightsDaoContract, "isUnfreezable"): packOutput(t, rightsDaoContract, "isUnfreezable", true),
		selector(rightsDaoContract, "isIMintable"):   packOutput(t, rightsDaoContract, "isIMintable", false),
	}}
	reader := NewReader(eth, Rinkeby.Contracts)

	asset := &rights.Asset{TokenID: "3", Owner: ownerAddr, ContractAddress: Rinkeby.Contracts.FRight.Hex()}
	fresh, err := reader.Refresh(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, rights.AssetFRight, fresh.Type)
	assert.True(t, fresh.IsUnfreezable)
	assert.False(t, fresh.IsIMintable)
}

func TestReader_RefreshFailure(t *testing.T) {
	reader := NewReader(&fakeEth{}, Rinkeby.Contracts)

	_, err := reader.Refresh(context.Background(), plainAsset())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh asset 42")

	_, err = reader.Refresh(context.Background(), nil)
	assert.ErrorIs(t, err, rights.ErrNoAsset)
}

func TestReader_AssetReloader(t *testing.T) {
	eth := &fakeEth{calls: map[string][]byte{
		selector(nftContract, "ownerOf"):        packOutput(t, nftContract, "ownerOf", common.HexToAddress(ownerAddr)),
		selector(rightsDaoContract, "isFrozen"): packOutput(t, rightsDaoContract, "isFrozen", false),
	}}
	reader := NewReader(eth, Rinkeby.Contracts)

	var got *rights.Asset
	var gotHint string
	reloader := reader.AssetReloader(plainAsset, func(ctx context.Context, a *rights.Asset, hint string) error {
		got, gotHint = a, hint
		return nil
	})

	require.NoError(t, reloader.Reload(context.Background(), "freeze"))
	require.NotNil(t, got)
	assert.Equal(t, "freeze", gotHint)
	assert.Equal(t, "42", got.TokenID)
}

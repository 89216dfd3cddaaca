package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/types"
)

// 合约版本号
const (
	FVersion = 1
	IVersion = 1
)

// nftABI ERC-721 子集（底层 NFT、FRight、IRight 共用）
const nftABI = `[
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

// rightsDaoABI RightsDao 合约接口
const rightsDaoABI = `[
	{"type":"function","name":"freeze","stateMutability":"nonpayable","inputs":[{"name":"baseAssetAddress","type":"address"},{"name":"baseAssetId","type":"uint256"},{"name":"expiry","type":"uint256"},{"name":"values","type":"uint256[3]"},{"name":"metadata","type":"string[3]"}],"outputs":[]},
	{"type":"function","name":"issueUnencumberedI","stateMutability":"nonpayable","inputs":[{"name":"baseAssetAddress","type":"address"},{"name":"values","type":"uint256[3]"},{"name":"metadata","type":"string[3]"}],"outputs":[]},
	{"type":"function","name":"unfreeze","stateMutability":"nonpayable","inputs":[{"name":"fRightId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"issueI","stateMutability":"nonpayable","inputs":[{"name":"values","type":"uint256[3]"}],"outputs":[]},
	{"type":"function","name":"revokeI","stateMutability":"nonpayable","inputs":[{"name":"iRightId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"isFrozen","stateMutability":"view","inputs":[{"name":"baseAssetAddress","type":"address"},{"name":"baseAssetId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isUnfreezable","stateMutability":"view","inputs":[{"name":"from","type":"address"},{"name":"fRightId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isIMintable","stateMutability":"view","inputs":[{"name":"fRightId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	nftContract       = mustParseABI(nftABI)
	rightsDaoContract = mustParseABI(rightsDaoABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parse contract abi: %v", err))
	}
	return parsed
}

// call 一次已编码的合约调用
type call struct {
	method string
	to     common.Address
	data   []byte
}

// buildApprove NFT.approve(RightsDao, tokenId)
func buildApprove(asset *rights.Asset, spender common.Address) (*call, error) {
	contract, err := parseAddress("baseAssetAddress", asset.ContractAddress)
	if err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID("tokenId", asset.TokenID)
	if err != nil {
		return nil, err
	}
	return pack(nftContract, contract, "approve", spender, tokenID)
}

// buildFreeze RightsDao.freeze(base, tokenId, expiry, [supply, F_VERSION, I_VERSION], [purpose, image, terms])
func buildFreeze(asset *rights.Asset, p rights.FreezeParams, dao common.Address) (*call, error) {
	base, err := parseAddress("baseAssetAddress", asset.ContractAddress)
	if err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID("baseAssetId", asset.TokenID)
	if err != nil {
		return nil, err
	}
	expiry, err := parseExpiry(p.Expiry)
	if err != nil {
		return nil, err
	}
	supply := p.MaxISupply
	if p.IsExclusive {
		supply = 1
	}
	values := [3]*big.Int{new(big.Int).SetUint64(supply), big.NewInt(FVersion), big.NewInt(IVersion)}
	return pack(rightsDaoContract, dao, "freeze", base, tokenID, expiry, values, metadataOf(p))
}

// buildIssueUnencumberedI RightsDao.issueUnencumberedI(base, [tokenId, expiry, I_VERSION], [purpose, image, terms])
func buildIssueUnencumberedI(asset *rights.Asset, p rights.FreezeParams, dao common.Address) (*call, error) {
	base, err := parseAddress("baseAssetAddress", asset.ContractAddress)
	if err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID("baseAssetId", asset.TokenID)
	if err != nil {
		return nil, err
	}
	expiry, err := parseExpiry(p.Expiry)
	if err != nil {
		return nil, err
	}
	values := [3]*big.Int{tokenID, expiry, big.NewInt(IVersion)}
	return pack(rightsDaoContract, dao, "issueUnencumberedI", base, values, metadataOf(p))
}

// buildUnfreeze RightsDao.unfreeze(fRightId)
func buildUnfreeze(asset *rights.Asset, dao common.Address) (*call, error) {
	tokenID, err := parseTokenID("fRightId", asset.TokenID)
	if err != nil {
		return nil, err
	}
	return pack(rightsDaoContract, dao, "unfreeze", tokenID)
}

// buildIssueI RightsDao.issueI([fRightId, endTime, I_VERSION])
func buildIssueI(asset *rights.Asset, dao common.Address) (*call, error) {
	if asset.Metadata == nil {
		return nil, types.NewInvalidArgumentError("metadata", "asset has no rights metadata")
	}
	tokenID, err := parseTokenID("fRightId", asset.RightTokenID())
	if err != nil {
		return nil, err
	}
	values := [3]*big.Int{tokenID, big.NewInt(asset.Metadata.EndTime), big.NewInt(IVersion)}
	return pack(rightsDaoContract, dao, "issueI", values)
}

// buildRevokeI RightsDao.revokeI(iRightId)
func buildRevokeI(asset *rights.Asset, dao common.Address) (*call, error) {
	tokenID, err := parseTokenID("iRightId", asset.RightTokenID())
	if err != nil {
		return nil, err
	}
	return pack(rightsDaoContract, dao, "revokeI", tokenID)
}

// buildTransfer IRight.transferFrom(owner, to, iRightId)
func buildTransfer(asset *rights.Asset, to string, iRight common.Address) (*call, error) {
	from, err := parseAddress("from", asset.Owner)
	if err != nil {
		return nil, err
	}
	dest, err := parseAddress("to", to)
	if err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID("tokenId", asset.RightTokenID())
	if err != nil {
		return nil, err
	}
	return pack(nftContract, iRight, "transferFrom", from, dest, tokenID)
}

func pack(contract abi.ABI, to common.Address, method string, args ...interface{}) (*call, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, types.NewInvalidArgumentError(method, err.Error())
	}
	return &call{method: method, to: to, data: data}, nil
}

func metadataOf(p rights.FreezeParams) [3]string {
	return [3]string{p.Purpose, p.ImageURL, p.TermsURL}
}

func parseAddress(arg, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, types.NewInvalidArgumentError(arg, "invalid address")
	}
	return common.HexToAddress(s), nil
}

func parseTokenID(arg, s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok || id.Sign() < 0 {
		return nil, types.NewInvalidArgumentError(arg, "invalid token id")
	}
	return id, nil
}

func parseExpiry(expiry int64) (*big.Int, error) {
	if expiry <= 0 {
		return nil, types.NewInvalidArgumentError("expiry", "invalid expiry")
	}
	return big.NewInt(expiry), nil
}

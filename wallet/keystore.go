package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// KeystoreManager Keystore 目录管理器
//
// 文件格式为 Web3 Secret Storage v3（scrypt + aes-128-ctr），
// 与 geth / MetaMask 导出的 JSON 兼容。
type KeystoreManager struct {
	keystoreDir string
	scryptN     int
	scryptP     int
}

// KeystoreOption Keystore 选项
type KeystoreOption func(*KeystoreManager)

// WithLightScrypt 使用轻量 scrypt 参数（测试与开发环境）
func WithLightScrypt() KeystoreOption {
	return func(km *KeystoreManager) {
		km.scryptN = keystore.LightScryptN
		km.scryptP = keystore.LightScryptP
	}
}

// NewKeystoreManager 创建 Keystore 管理器
func NewKeystoreManager(keystoreDir string, opts ...KeystoreOption) (*KeystoreManager, error) {
	if err := os.MkdirAll(keystoreDir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}

	km := &KeystoreManager{
		keystoreDir: keystoreDir,
		scryptN:     keystore.StandardScryptN,
		scryptP:     keystore.StandardScryptP,
	}
	for _, opt := range opts {
		opt(km)
	}
	return km, nil
}

// Save 加密保存钱包私钥，返回文件路径
func (km *KeystoreManager) Save(w Wallet, password string) (string, error) {
	// 1. 构建 Key
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate key id: %w", err)
	}
	key := &keystore.Key{
		Id:         id,
		Address:    w.Address(),
		PrivateKey: w.PrivateKey(),
	}

	// 2. 加密
	data, err := keystore.EncryptKey(key, password, km.scryptN, km.scryptP)
	if err != nil {
		return "", fmt.Errorf("encrypt key: %w", err)
	}

	// 3. 写入文件
	path := km.path(w.Address())
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write keystore file: %w", err)
	}
	return path, nil
}

// Load 解密加载指定地址的钱包
func (km *KeystoreManager) Load(address common.Address, password string) (Wallet, error) {
	return LoadKeystoreFile(km.path(address), password)
}

// LoadKeystoreFile 从任意 Keystore 文件加载钱包
func LoadKeystoreFile(path, password string) (Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keystore file: %w", err)
	}

	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return NewWalletFromKey(key.PrivateKey)
}

func (km *KeystoreManager) path(address common.Address) string {
	name := strings.ToLower(strings.TrimPrefix(address.Hex(), "0x"))
	return filepath.Join(km.keystoreDir, name+".json")
}

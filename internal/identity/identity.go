package identity

import (
	"encoding/json"
	"fmt"
	"os"

	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/pkg/types"
)

// Identity 内存中的密钥对，私钥从不写日志、不落盘
type Identity struct {
	account soltypes.Account
}

// Generate 随机生成新的密钥对
func Generate() Identity {
	return Identity{account: soltypes.NewAccount()}
}

// FromBase58 解析 base58 编码的 64 字节私钥（Phantom 导出格式）
func FromBase58(secret string) (Identity, error) {
	account, err := soltypes.AccountFromBase58(secret)
	if err != nil {
		return Identity{}, fmt.Errorf("parse base58 private key: %w", err)
	}
	return Identity{account: account}, nil
}

// FromKeypairFile 读取 solana-keygen 生成的 JSON 字节数组文件
func FromKeypairFile(path string) (Identity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Identity{}, fmt.Errorf("read keypair file %s: %w", path, err)
	}
	var key []byte
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return Identity{}, fmt.Errorf("decode keypair file %s: %w", path, err)
	}
	key = make([]byte, 0, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return Identity{}, fmt.Errorf("keypair file %s: byte %d out of range: %d", path, i, v)
		}
		key = append(key, byte(v))
	}
	account, err := soltypes.AccountFromBytes(key)
	if err != nil {
		return Identity{}, fmt.Errorf("keypair file %s: %w", path, err)
	}
	return Identity{account: account}, nil
}

// WriteKeypairFile 以 solana-keygen 兼容格式写出私钥，文件权限 0600
func (id Identity) WriteKeypairFile(path string) error {
	ints := make([]int, len(id.account.PrivateKey))
	for i, b := range id.account.PrivateKey {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func (id Identity) PublicKey() types.Pubkey {
	return types.PubkeyFromCommon(id.account.PublicKey)
}

// Account 返回 SDK 账户，用于交易签名
func (id Identity) Account() soltypes.Account {
	return id.account
}

func (id Identity) IsZero() bool {
	return len(id.account.PrivateKey) == 0
}

// String 只输出公钥
func (id Identity) String() string {
	return id.PublicKey().String()
}

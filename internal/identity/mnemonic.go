package identity

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	soltypes "github.com/blocto/solana-go-sdk/types"
	"github.com/tyler-smith/go-bip39"
)

const hardenedOffset uint32 = 0x80000000

// DefaultDerivationPath m/44'/501'/0'/0'，与 Phantom / solana-keygen 一致
var DefaultDerivationPath = []uint32{
	hardenedOffset + 44,
	hardenedOffset + 501,
	hardenedOffset + 0,
	hardenedOffset + 0,
}

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// FromMnemonic 按 SLIP-0010 从 BIP-39 助记词派生 ed25519 密钥
func FromMnemonic(mnemonic, passphrase string) (Identity, error) {
	return FromMnemonicPath(mnemonic, passphrase, DefaultDerivationPath)
}

func FromMnemonicPath(mnemonic, passphrase string, path []uint32) (Identity, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Identity{}, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, passphrase)

	key, chainCode := hmacSplit([]byte("ed25519 seed"), seed)
	for _, segment := range path {
		// ed25519 只支持 hardened 派生
		if segment < hardenedOffset {
			return Identity{}, fmt.Errorf("non-hardened path segment %d", segment)
		}
		buf := make([]byte, 0, 1+len(key)+4)
		buf = append(buf, 0)
		buf = append(buf, key...)
		buf = binary.BigEndian.AppendUint32(buf, segment)
		key, chainCode = hmacSplit(chainCode, buf)
	}

	account, err := soltypes.AccountFromSeed(key)
	if err != nil {
		return Identity{}, fmt.Errorf("derive account: %w", err)
	}
	return Identity{account: account}, nil
}

func hmacSplit(key, data []byte) ([]byte, []byte) {
	h := hmac.New(sha512.New, key)
	h.Write(data)
	sum := h.Sum(nil)
	return sum[:32], sum[32:]
}

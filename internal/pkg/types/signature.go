package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const SignatureSize = 64

// Signature 交易签名，第一个签名即交易 ID
type Signature [SignatureSize]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) Equals(other Signature) bool {
	return s == other
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}

func SignatureFromBase58(str string) (Signature, error) {
	var s Signature
	data, err := base58.Decode(str)
	if err != nil {
		return s, fmt.Errorf("failed to decode base58 signature %q: %w", str, err)
	}
	if len(data) != SignatureSize {
		return s, fmt.Errorf("invalid signature length: got %d, want %d", len(data), SignatureSize)
	}
	copy(s[:], data)
	return s, nil
}

func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, fmt.Errorf("invalid signature length: got %d, want %d", len(b), SignatureSize)
	}
	copy(s[:], b)
	return s, nil
}

package contract

import (
	"errors"
	"fmt"

	"pam-client-sol/internal/pkg/types"
)

var (
	ErrEmptyData      = errors.New("instruction data is empty")
	ErrUnknownTag     = errors.New("unknown instruction tag")
	ErrPayloadLength  = errors.New("payload length is not a multiple of 32")
	ErrUnexpectedKeys = errors.New("unexpected number of keys for tag")
)

// EncodeData 编码为 [tag: 1 byte][key0: 32 bytes][key1: 32 bytes]...
func EncodeData(tag Tag, keys ...types.Pubkey) []byte {
	buf := make([]byte, 1, 1+types.PubkeySize*len(keys))
	buf[0] = byte(tag)
	for _, k := range keys {
		buf = append(buf, k[:]...)
	}
	return buf
}

// DecodeData 是 EncodeData 的逆过程，同时校验公钥个数与 tag 是否匹配
func DecodeData(data []byte) (Tag, []types.Pubkey, error) {
	if len(data) == 0 {
		return 0, nil, ErrEmptyData
	}
	tag := Tag(data[0])
	if !tag.Valid() {
		return tag, nil, fmt.Errorf("%w: %d", ErrUnknownTag, data[0])
	}
	payload := data[1:]
	if len(payload)%types.PubkeySize != 0 {
		return tag, nil, fmt.Errorf("%w: got %d", ErrPayloadLength, len(payload))
	}

	keys := make([]types.Pubkey, 0, len(payload)/types.PubkeySize)
	for off := 0; off < len(payload); off += types.PubkeySize {
		var k types.Pubkey
		copy(k[:], payload[off:off+types.PubkeySize])
		keys = append(keys, k)
	}
	if want := tag.keyCount(); want >= 0 && len(keys) != want {
		return tag, nil, fmt.Errorf("%w: %s want %d, got %d", ErrUnexpectedKeys, tag, want, len(keys))
	}
	return tag, keys, nil
}

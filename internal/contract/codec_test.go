package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeData_FirstByteIsTag(t *testing.T) {
	for _, tag := range Tags() {
		data := EncodeData(tag)
		assert.Equal(t, []byte{byte(tag)}, data)

		withKey := EncodeData(tag, key(7), key(8))
		assert.Equal(t, byte(tag), withKey[0])
		assert.Len(t, withKey, 1+2*32)
	}
}

func TestDecodeData(t *testing.T) {
	tag, keys, err := DecodeData(EncodeData(TagAddToAccessList, key(9)))
	require.NoError(t, err)
	assert.Equal(t, TagAddToAccessList, tag)
	assert.Equal(t, key(9), keys[0])

	tag, keys, err = DecodeData([]byte{0})
	require.NoError(t, err)
	assert.Equal(t, TagInit, tag)
	assert.Empty(t, keys)
}

func TestDecodeData_Errors(t *testing.T) {
	_, _, err := DecodeData(nil)
	assert.ErrorIs(t, err, ErrEmptyData)

	_, _, err = DecodeData([]byte{42})
	assert.ErrorIs(t, err, ErrUnknownTag)

	_, _, err = DecodeData(append([]byte{byte(TagUpdateAccessList)}, make([]byte, 31)...))
	assert.ErrorIs(t, err, ErrPayloadLength)

	_, _, err = DecodeData(EncodeData(TagRemoveFromAccessList))
	assert.ErrorIs(t, err, ErrUnexpectedKeys)

	_, _, err = DecodeData(EncodeData(TagInit, key(1)))
	assert.ErrorIs(t, err, ErrUnexpectedKeys)
}

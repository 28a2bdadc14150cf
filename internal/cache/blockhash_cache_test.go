package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func (c *counter) fetch(context.Context) (string, error) {
	c.n++
	return fmt.Sprintf("hash-%d", c.n), nil
}

func TestBlockhashCache_ReuseWithinTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	bc := NewBlockhashCache(30 * time.Second)
	bc.now = func() time.Time { return now }

	c := &counter{}
	h1, err := bc.Get(context.Background(), c.fetch)
	require.NoError(t, err)
	h2, err := bc.Get(context.Background(), c.fetch)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", h1)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, c.n)

	now = now.Add(31 * time.Second)
	h3, err := bc.Get(context.Background(), c.fetch)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", h3)
}

func TestBlockhashCache_Invalidate(t *testing.T) {
	bc := NewBlockhashCache(time.Minute)
	c := &counter{}

	_, _ = bc.Get(context.Background(), c.fetch)
	bc.Invalidate()
	h, err := bc.Get(context.Background(), c.fetch)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", h)
}

func TestBlockhashCache_ZeroTTLAlwaysFetches(t *testing.T) {
	bc := NewBlockhashCache(0)
	c := &counter{}
	for i := 0; i < 3; i++ {
		_, _ = bc.Get(context.Background(), c.fetch)
	}
	assert.Equal(t, 3, c.n)
}

func TestBlockhashCache_FetchError(t *testing.T) {
	bc := NewBlockhashCache(time.Minute)
	_, err := bc.Get(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("rpc down")
	})
	assert.Error(t, err)

	c := &counter{}
	h, err := bc.Get(context.Background(), c.fetch)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", h)
}

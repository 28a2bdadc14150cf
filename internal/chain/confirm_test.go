package chain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/chain/chaintest"
	"pam-client-sol/internal/pkg/types"
)

func testSig(b byte) types.Signature {
	var s types.Signature
	s[0] = b
	return s
}

func TestWaitForConfirmation_AfterPending(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.PendingPolls = 2

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := chain.WaitForConfirmation(ctx, fake, testSig(1), chain.CommitmentConfirmed, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, chain.CommitmentFinalized, st.Commitment)
}

func TestWaitForConfirmation_OnChainError(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.OnChainErr = map[string]any{"InstructionError": []any{0, "MissingRequiredSignature"}}

	_, err := chain.WaitForConfirmation(context.Background(), fake, testSig(2), chain.CommitmentConfirmed, time.Millisecond)
	assert.ErrorIs(t, err, chain.ErrTransactionFailed)
}

func TestWaitForConfirmation_Timeout(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.PendingPolls = 1 << 30

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := chain.WaitForConfirmation(ctx, fake, testSig(3), chain.CommitmentConfirmed, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForConfirmation_StatusErrorsKeepPolling(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.StatusErr = errors.New("node busy")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := chain.WaitForConfirmation(ctx, fake, testSig(4), chain.CommitmentProcessed, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

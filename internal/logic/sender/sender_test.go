package sender

import (
	"context"
	"errors"
	"testing"
	"time"

	soltypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/chain/chaintest"
	"pam-client-sol/internal/consts"
	"pam-client-sol/internal/contract"
	"pam-client-sol/internal/identity"
	"pam-client-sol/internal/pkg/errs"
	"pam-client-sol/internal/pkg/types"
)

func newTestSender(fake *chaintest.FakeClient) (*Sender, identity.Identity) {
	payer := identity.Generate()
	s := NewSender(fake, payer, Option{
		Commitment:     chain.CommitmentConfirmed,
		ConfirmTimeout: time.Second,
		PollInterval:   time.Millisecond,
		BlockhashTTL:   time.Minute,
	})
	return s, payer
}

func TestRequiredSigners(t *testing.T) {
	payer := identity.Generate().PublicKey()
	data := identity.Generate().PublicKey()
	list := identity.Generate().PublicKey()
	c := contract.NewContract(consts.PamProgram, payer)

	signers := RequiredSigners(payer, []soltypes.Instruction{
		c.InitProgramData(data),
		c.InitAccessList(data, list),
		c.AddToAccessList(data, list, payer),
	})
	assert.Equal(t, []types.Pubkey{payer, data, list}, signers)
}

func TestSend_Success(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.PendingPolls = 1
	s, payer := newTestSender(fake)
	data := identity.Generate()
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())

	sig, err := s.Send(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())}, data)
	require.NoError(t, err)
	require.Equal(t, 1, fake.SentCount())

	tx := fake.Sent[0]
	assert.Equal(t, []byte(tx.Signatures[0]), sig[:])
	assert.Equal(t, payer.PublicKey().ToCommon(), tx.Message.Accounts[0], "payer 必须是 fee payer")
	assert.Equal(t, uint8(2), tx.Message.Header.NumRequireSignatures)
}

func TestSend_MissingSignerFailsBeforeSubmission(t *testing.T) {
	fake := chaintest.NewFakeClient()
	s, payer := newTestSender(fake)
	data := identity.Generate()
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())

	_, err := s.Send(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.MissingSigner))
	assert.Equal(t, 0, fake.SentCount())
	assert.Equal(t, 0, fake.BlockhashCalls, "缺少签名时不应访问网络")
}

func TestSend_DropsUnneededSigner(t *testing.T) {
	fake := chaintest.NewFakeClient()
	s, payer := newTestSender(fake)
	data := identity.Generate()
	stranger := identity.Generate()
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())

	_, err := s.Send(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())}, data, stranger, payer)
	require.NoError(t, err)
	assert.Len(t, fake.Sent[0].Signatures, 2)
}

func TestSend_NoInstructions(t *testing.T) {
	fake := chaintest.NewFakeClient()
	s, _ := newTestSender(fake)

	_, err := s.Send(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoInstructions)
	assert.True(t, errs.IsKind(err, errs.SubmissionFailed))
}

func TestSend_SubmissionFailed(t *testing.T) {
	fake := chaintest.NewFakeClient()
	cause := errors.New("node rejected transaction")
	fake.SendErr = cause
	s, payer := newTestSender(fake)
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())
	data := identity.Generate()
	ixs := []soltypes.Instruction{c.InitProgramData(data.PublicKey())}

	_, err := s.Send(context.Background(), ixs, data)
	require.Error(t, err)
	assert.Equal(t, errs.SubmissionFailed, errs.KindOf(err))
	assert.ErrorIs(t, err, cause)

	// 失败后 blockhash 缓存失效，下一次重新获取
	fake.SendErr = nil
	_, err = s.Send(context.Background(), ixs, data)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.BlockhashCalls)
}

func TestSend_BlockhashError(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.BlockhashErr = errors.New("timeout")
	s, payer := newTestSender(fake)
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())
	data := identity.Generate()

	_, err := s.Send(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())}, data)
	assert.True(t, errs.IsKind(err, errs.SubmissionFailed))
	assert.Equal(t, 0, fake.SentCount())
}

func TestSend_ReusesBlockhash(t *testing.T) {
	fake := chaintest.NewFakeClient()
	s, payer := newTestSender(fake)
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())

	for i := 0; i < 3; i++ {
		data := identity.Generate()
		_, err := s.Send(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())}, data)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.BlockhashCalls)
	assert.Equal(t, 3, fake.SentCount())
}

func TestSend_ConfirmationFailed(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.OnChainErr = "custom program error: 0x70"
	s, payer := newTestSender(fake)
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())
	data := identity.Generate()

	sig, err := s.Send(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())}, data)
	require.Error(t, err)
	assert.Equal(t, errs.ConfirmationFailed, errs.KindOf(err))
	assert.ErrorIs(t, err, chain.ErrTransactionFailed)
	assert.False(t, sig.IsZero(), "已提交的签名仍需返回")
}

func TestSubmit_DoesNotWaitForConfirmation(t *testing.T) {
	fake := chaintest.NewFakeClient()
	fake.OnChainErr = "custom program error: 0x70"
	s, payer := newTestSender(fake)
	c := contract.NewContract(consts.PamProgram, payer.PublicKey())
	data := identity.Generate()

	sig, err := s.Submit(context.Background(), []soltypes.Instruction{c.InitProgramData(data.PublicKey())}, data)
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	assert.Equal(t, 1, fake.SentCount())

	err = s.Confirm(context.Background(), sig)
	assert.Equal(t, errs.ConfirmationFailed, errs.KindOf(err))
}

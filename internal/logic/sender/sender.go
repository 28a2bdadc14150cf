package sender

import (
	"context"
	"errors"
	"fmt"
	"time"

	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/cache"
	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/identity"
	"pam-client-sol/internal/pkg/errs"
	"pam-client-sol/internal/pkg/types"
	"pam-client-sol/pkg/logger"
)

var ErrNoInstructions = errors.New("no instructions to send")

// Option Sender 可选参数
type Option struct {
	Commitment     chain.Commitment // 等待的确认级别
	ConfirmTimeout time.Duration    // 单笔交易确认超时
	PollInterval   time.Duration    // 签名状态轮询间隔
	BlockhashTTL   time.Duration    // recent blockhash 复用时长
}

// Sender 将一组指令打包为单笔交易，由 payer 付费并签名，提交后等待确认。
// 内部不做重试，失败直接返回给调用方。
type Sender struct {
	client      chain.Client
	payer       identity.Identity
	opt         Option
	blockhashes *cache.BlockhashCache
}

func NewSender(client chain.Client, payer identity.Identity, opt Option) *Sender {
	if opt.Commitment == chain.CommitmentUnknown {
		opt.Commitment = chain.CommitmentConfirmed
	}
	return &Sender{
		client:      client,
		payer:       payer,
		opt:         opt,
		blockhashes: cache.NewBlockhashCache(opt.BlockhashTTL),
	}
}

func (s *Sender) Payer() identity.Identity {
	return s.payer
}

// RequiredSigners 交易需要的全部签名账户：payer 在前，其余按指令中首次出现的顺序
func RequiredSigners(payer types.Pubkey, ixs []soltypes.Instruction) []types.Pubkey {
	seen := map[types.Pubkey]bool{payer: true}
	signers := []types.Pubkey{payer}
	for _, ix := range ixs {
		for _, m := range ix.Accounts {
			if !m.IsSigner {
				continue
			}
			pk := types.PubkeyFromCommon(m.PubKey)
			if seen[pk] {
				continue
			}
			seen[pk] = true
			signers = append(signers, pk)
		}
	}
	return signers
}

// resolveSigners 为每个需要签名的账户找到对应的密钥；缺失时在提交前失败。
// 用不到的额外密钥被丢弃，SDK 不接受多余签名。
func (s *Sender) resolveSigners(ixs []soltypes.Instruction, extra []identity.Identity) ([]soltypes.Account, error) {
	available := make(map[types.Pubkey]identity.Identity, len(extra)+1)
	available[s.payer.PublicKey()] = s.payer
	for _, id := range extra {
		available[id.PublicKey()] = id
	}

	required := RequiredSigners(s.payer.PublicKey(), ixs)
	needed := make(map[types.Pubkey]bool, len(required))
	accounts := make([]soltypes.Account, 0, len(required))
	var missing []types.Pubkey
	for _, pk := range required {
		needed[pk] = true
		id, ok := available[pk]
		if !ok {
			missing = append(missing, pk)
			continue
		}
		accounts = append(accounts, id.Account())
	}
	if len(missing) > 0 {
		return nil, errs.New(errs.MissingSigner, "resolve signers", fmt.Errorf("no identity for signer accounts %v", missing))
	}

	for _, id := range extra {
		if !needed[id.PublicKey()] {
			logger.Warnf("[Sender] 忽略多余的签名账户: %s", id)
		}
	}
	return accounts, nil
}

// Send 组装、签名、提交并等待确认，返回交易签名。
// 确认失败时仍返回已提交的签名，便于调用方查询。
func (s *Sender) Send(ctx context.Context, ixs []soltypes.Instruction, extra ...identity.Identity) (types.Signature, error) {
	start := time.Now()
	sig, err := s.Submit(ctx, ixs, extra...)
	if err != nil {
		return sig, err
	}
	if err := s.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	logger.Infof("[Sender] 交易已确认: sig=%s commitment=%s 耗时=%v", sig, s.opt.Commitment, time.Since(start))
	return sig, nil
}

// Submit 组装、签名并提交，不等待确认。缺少签名者时不发起任何网络请求
func (s *Sender) Submit(ctx context.Context, ixs []soltypes.Instruction, extra ...identity.Identity) (types.Signature, error) {
	if len(ixs) == 0 {
		return types.Signature{}, errs.New(errs.SubmissionFailed, "build transaction", ErrNoInstructions)
	}

	signers, err := s.resolveSigners(ixs, extra)
	if err != nil {
		logger.Errorf("[Sender] %v", err)
		return types.Signature{}, err
	}

	blockhash, err := s.blockhashes.Get(ctx, s.client.LatestBlockhash)
	if err != nil {
		logger.Errorf("[Sender] 获取 recent blockhash 失败: %v", err)
		return types.Signature{}, errs.New(errs.SubmissionFailed, "get recent blockhash", err)
	}

	tx, err := soltypes.NewTransaction(soltypes.NewTransactionParam{
		Message: soltypes.NewMessage(soltypes.NewMessageParam{
			FeePayer:        s.payer.PublicKey().ToCommon(),
			RecentBlockhash: blockhash,
			Instructions:    ixs,
		}),
		Signers: signers,
	})
	if err != nil {
		logger.Errorf("[Sender] 构造交易失败: %v", err)
		return types.Signature{}, errs.New(errs.SubmissionFailed, "sign transaction", err)
	}

	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		s.blockhashes.Invalidate()
		logger.Errorf("[Sender] Error with send: instructions=%d signers=%d err=%v", len(ixs), len(signers), err)
		return types.Signature{}, errs.New(errs.SubmissionFailed, "send transaction", err)
	}
	logger.Infof("[Sender] 交易已提交: sig=%s instructions=%d", sig, len(ixs))
	return sig, nil
}

// Confirm 轮询直到交易达到目标确认级别，超时或链上失败归为 ConfirmationFailed
func (s *Sender) Confirm(ctx context.Context, sig types.Signature) error {
	confirmCtx := ctx
	if s.opt.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		confirmCtx, cancel = context.WithTimeout(ctx, s.opt.ConfirmTimeout)
		defer cancel()
	}
	if _, err := chain.WaitForConfirmation(confirmCtx, s.client, sig, s.opt.Commitment, s.opt.PollInterval); err != nil {
		logger.Errorf("[Sender] 交易确认失败: sig=%s err=%v", sig, err)
		return errs.New(errs.ConfirmationFailed, "confirm transaction", err)
	}
	return nil
}

package bootstrap

import (
	"context"
	"time"

	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/contract"
	"pam-client-sol/internal/identity"
	"pam-client-sol/internal/logic/sender"
	"pam-client-sol/internal/pkg/errs"
	"pam-client-sol/internal/pkg/types"
	"pam-client-sol/pkg/logger"
)

// 步骤名，写入运行记录
const (
	StepFundPayer         = "fund_payer"
	StepCreateDataAccount = "create_data_account"
)

// Observer 接收每个链上步骤的结果
type Observer interface {
	StepDone(ctx context.Context, name string, sig types.Signature, err error)
}

type Option struct {
	FundPayer        bool   // 是否为 payer 申请空投
	AirdropLamports  uint64 // 空投额度
	AccountLamports  uint64 // 新账户预存 lamports
	UseRentExempt    bool   // 按免租最低余额建账户
	DataAccountSpace uint64 // 程序状态账户大小

	Commitment     chain.Commitment
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// Session 一次运行中创建的账户，仅存在于内存
type Session struct {
	Payer       identity.Identity
	DataAccount identity.Identity
	FundingSig  types.Signature // 未申请空投时为零值
	CreateSig   types.Signature
}

// Bootstrapper 负责资金准备与程序账户创建
type Bootstrapper struct {
	client   chain.Client
	sender   *sender.Sender
	contract *contract.Contract
	opt      Option
	observer Observer
}

func NewBootstrapper(client chain.Client, s *sender.Sender, c *contract.Contract, opt Option) *Bootstrapper {
	if opt.Commitment == chain.CommitmentUnknown {
		opt.Commitment = chain.CommitmentConfirmed
	}
	return &Bootstrapper{client: client, sender: s, contract: c, opt: opt}
}

func (b *Bootstrapper) SetObserver(o Observer) {
	b.observer = o
}

func (b *Bootstrapper) notify(ctx context.Context, name string, sig types.Signature, err error) {
	if b.observer != nil {
		b.observer.StepDone(ctx, name, sig, err)
	}
}

// Fund 申请空投并等待确认，任何失败都归为 FundingFailed
func (b *Bootstrapper) Fund(ctx context.Context, who types.Pubkey, lamports uint64) (types.Signature, error) {
	sig, err := b.client.RequestAirdrop(ctx, who, lamports)
	if err != nil {
		logger.Errorf("[Bootstrap] 空投请求失败: to=%s lamports=%d err=%v", who, lamports, err)
		return types.Signature{}, errs.New(errs.FundingFailed, "request airdrop", err)
	}

	confirmCtx, cancel := b.confirmContext(ctx)
	defer cancel()
	if _, err := chain.WaitForConfirmation(confirmCtx, b.client, sig, b.opt.Commitment, b.opt.PollInterval); err != nil {
		logger.Errorf("[Bootstrap] 空投确认失败: sig=%s err=%v", sig, err)
		return sig, errs.New(errs.FundingFailed, "confirm airdrop", err)
	}

	if balance, err := b.client.GetBalance(ctx, who); err == nil {
		logger.Infof("[Bootstrap] airdrop done: to=%s balance=%d", who, balance)
	}
	return sig, nil
}

func (b *Bootstrapper) confirmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.opt.ConfirmTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.opt.ConfirmTimeout)
}

// accountLamports 开启 UseRentExempt 时取免租最低余额
func (b *Bootstrapper) accountLamports(ctx context.Context, space uint64) (uint64, error) {
	if !b.opt.UseRentExempt {
		return b.opt.AccountLamports, nil
	}
	return b.client.MinimumBalanceForRentExemption(ctx, space)
}

// CreateAccount 创建归属于合约的账户，payer 出资、account 共同签名。
// 任何失败都归为 AccountCreationFailed。
func (b *Bootstrapper) CreateAccount(ctx context.Context, account identity.Identity, space uint64) (types.Signature, error) {
	lamports, err := b.accountLamports(ctx, space)
	if err != nil {
		logger.Errorf("[Bootstrap] 查询免租余额失败: space=%d err=%v", space, err)
		return types.Signature{}, errs.New(errs.AccountCreationFailed, "get rent exemption", err)
	}

	ix := b.contract.CreateProgramAccount(account.PublicKey(), lamports, space)
	sig, err := b.sender.Send(ctx, []soltypes.Instruction{ix}, account)
	if err != nil {
		logger.Errorf("[Bootstrap] Failed to init account: account=%s err=%v", account, err)
		return sig, errs.New(errs.AccountCreationFailed, "create account "+account.String(), err)
	}
	logger.Infof("[Bootstrap] 账户已创建: account=%s space=%d lamports=%d sig=%s", account, space, lamports, sig)
	return sig, nil
}

// InitAccounts 为 payer 准备资金并创建程序状态账户
func (b *Bootstrapper) InitAccounts(ctx context.Context) (*Session, error) {
	payer := b.sender.Payer()
	session := &Session{
		Payer:       payer,
		DataAccount: identity.Generate(),
	}
	logger.Infof("[Bootstrap] new data account: %s", session.DataAccount)

	if b.opt.FundPayer {
		sig, err := b.Fund(ctx, payer.PublicKey(), b.opt.AirdropLamports)
		b.notify(ctx, StepFundPayer, sig, err)
		if err != nil {
			return nil, err
		}
		session.FundingSig = sig
	}

	sig, err := b.CreateAccount(ctx, session.DataAccount, b.opt.DataAccountSpace)
	b.notify(ctx, StepCreateDataAccount, sig, err)
	if err != nil {
		return nil, err
	}
	session.CreateSig = sig
	logger.Infof("[Bootstrap] Data account init")
	return session, nil
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/contract"
	"pam-client-sol/internal/identity"
	"pam-client-sol/internal/ledger"
	"pam-client-sol/internal/logic/bootstrap"
	"pam-client-sol/internal/logic/sender"
	"pam-client-sol/internal/pkg/types"
	"pam-client-sol/pkg/logger"
)

// 步骤名，bootstrap 的两个步骤之后依次执行
const (
	StepInitProgram       = "init_program"
	StepCreateAccessList  = "create_access_list"
	StepInitAccessList    = "init_access_list"
	StepAddMemberPrefix   = "add_member:"
	defaultAccessListSize = 1024
)

// StepPublisher 接收已落账的步骤，可为 nil
type StepPublisher interface {
	PublishSteps(ctx context.Context, recs ...*ledger.StepRecord) int
}

type Option struct {
	Members         []types.Pubkey // 依次加入访问列表的成员
	AccessListSpace uint64
}

// StepSummary 结果中的单个步骤
type StepSummary struct {
	Name      string `yaml:"name"`
	Signature string `yaml:"signature,omitempty"`
	Status    string `yaml:"status"`
	Error     string `yaml:"error,omitempty"`
}

// Result 一次运行的输出。OnChainMembers 为回读结果，回读失败时为空
type Result struct {
	RunID          string        `yaml:"run_id"`
	Payer          string        `yaml:"payer"`
	DataAccount    string        `yaml:"data_account"`
	AccessList     string        `yaml:"access_list,omitempty"`
	OnChainMembers []string      `yaml:"on_chain_members,omitempty"`
	Steps          []StepSummary `yaml:"steps"`
	Elapsed        string        `yaml:"elapsed"`
}

// Runner 串起账户准备与合约调用的完整流程
type Runner struct {
	client       chain.Client
	sender       *sender.Sender
	contract     *contract.Contract
	bootstrapper *bootstrap.Bootstrapper
	ledger       *ledger.Ledger
	publisher    StepPublisher
	opt          Option
	newRunID     func() string
}

func NewRunner(
	client chain.Client,
	s *sender.Sender,
	c *contract.Contract,
	b *bootstrap.Bootstrapper,
	l *ledger.Ledger,
	publisher StepPublisher,
	opt Option,
) *Runner {
	if opt.AccessListSpace == 0 {
		opt.AccessListSpace = defaultAccessListSize
	}
	if l == nil {
		l = ledger.NewLedger(nil)
	}
	return &Runner{
		client:       client,
		sender:       s,
		contract:     c,
		bootstrapper: b,
		ledger:       l,
		publisher:    publisher,
		opt:          opt,
		newRunID: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}
}

// stepRecorder 把步骤结果写入 ledger 并投递事件
type stepRecorder struct {
	runID     string
	ledger    *ledger.Ledger
	publisher StepPublisher
}

func (r *stepRecorder) StepDone(ctx context.Context, name string, sig types.Signature, err error) {
	status := ledger.StepConfirmed
	if err != nil {
		status = ledger.StepFailed
	}
	r.record(ctx, name, sig, status, err)
}

func (r *stepRecorder) record(ctx context.Context, name string, sig types.Signature, status ledger.StepStatus, err error) {
	sigStr := ""
	if !sig.IsZero() {
		sigStr = sig.String()
	}
	rec := r.ledger.Record(ctx, r.runID, name, sigStr, status, err)
	if r.publisher != nil {
		r.publisher.PublishSteps(ctx, rec)
	}
}

// Run 依次执行：
//  1. 空投并创建程序状态账户
//  2. 初始化程序状态
//  3. 创建访问列表账户
//  4. 在程序状态中登记访问列表
//  5. 逐个加入成员
//  6. 回读访问列表
//
// 成员校验失败时不发起任何请求；其余出错时返回已填充部分的 Result 和错误
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := contract.CheckMembers(r.opt.Members); err != nil {
		return nil, err
	}

	startTime := time.Now()
	runID := r.newRunID()
	rec := &stepRecorder{runID: runID, ledger: r.ledger, publisher: r.publisher}
	r.bootstrapper.SetObserver(rec)

	payer := r.sender.Payer()
	result := &Result{RunID: runID, Payer: payer.String()}
	defer func() {
		result.Steps = r.summaries(runID)
		result.Elapsed = time.Since(startTime).Round(time.Millisecond).String()
		logger.Infof("[Runner] 运行结束: run=%s steps=%d elapsed=%s", runID, len(result.Steps), result.Elapsed)
	}()

	logger.Infof("[Runner] 开始运行: run=%s payer=%s program=%s", runID, payer, r.contract.ProgramID())

	// 1. 准备资金与程序状态账户
	session, err := r.bootstrapper.InitAccounts(ctx)
	if err != nil {
		return result, err
	}
	data := session.DataAccount
	result.DataAccount = data.String()

	// 2. 初始化程序状态
	if err := r.step(ctx, rec, StepInitProgram, []soltypes.Instruction{
		r.contract.InitProgramData(data.PublicKey()),
	}, data); err != nil {
		return result, err
	}

	// 3. 创建访问列表账户
	accessList := identity.Generate()
	result.AccessList = accessList.String()
	sig, err := r.bootstrapper.CreateAccount(ctx, accessList, r.opt.AccessListSpace)
	rec.StepDone(ctx, StepCreateAccessList, sig, err)
	if err != nil {
		return result, err
	}

	// 4. 登记访问列表
	if err := r.step(ctx, rec, StepInitAccessList, []soltypes.Instruction{
		r.contract.InitAccessList(data.PublicKey(), accessList.PublicKey()),
	}, accessList); err != nil {
		return result, err
	}

	// 5. 加入成员
	for _, member := range r.opt.Members {
		if err := r.step(ctx, rec, StepAddMemberPrefix+member.String(), []soltypes.Instruction{
			r.contract.AddToAccessList(data.PublicKey(), accessList.PublicKey(), member),
		}, accessList); err != nil {
			return result, err
		}
	}

	// 6. 回读，失败不影响结果
	result.OnChainMembers = r.readBack(ctx, data.PublicKey(), accessList.PublicKey())
	return result, nil
}

func (r *Runner) step(ctx context.Context, rec *stepRecorder, name string, ixs []soltypes.Instruction, signers ...identity.Identity) error {
	sig, err := r.sender.Submit(ctx, ixs, signers...)
	if err == nil {
		// 已提交未确认，确认结果覆盖此记录
		rec.record(ctx, name, sig, ledger.StepPending, nil)
		err = r.sender.Confirm(ctx, sig)
	}
	rec.StepDone(ctx, name, sig, err)
	if err != nil {
		logger.Errorf("[Runner] 步骤失败: step=%s err=%v", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Infof("[Runner] %s confirmed: sig=%s", name, sig)
	return nil
}

// readBack 程序以访问列表账户自身（InitAccessList 的签名者）为 key 登记
func (r *Runner) readBack(ctx context.Context, data, accessList types.Pubkey) []string {
	if raw, err := r.client.GetAccountData(ctx, data); err != nil {
		logger.Warnf("[Runner] 读取程序状态失败: account=%s err=%v", data, err)
	} else if state, err := contract.DecodeProgramData(raw); err != nil {
		logger.Warnf("[Runner] 解析程序状态失败: account=%s err=%v", data, err)
	} else if list, ok := state.AccessListOf(accessList); !ok {
		logger.Warnf("[Runner] 程序状态中未登记访问列表: account=%s", accessList)
	} else if !list.Equals(accessList) {
		logger.Warnf("[Runner] 访问列表不一致: want=%s got=%s", accessList, list)
	}

	raw, err := r.client.GetAccountData(ctx, accessList)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			logger.Warnf("[Runner] 访问列表账户不存在: %s", accessList)
		} else {
			logger.Warnf("[Runner] 读取访问列表失败: account=%s err=%v", accessList, err)
		}
		return nil
	}
	members, err := contract.DecodeAccessList(raw)
	if err != nil {
		logger.Warnf("[Runner] 解析访问列表失败: account=%s err=%v", accessList, err)
		return nil
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.String())
	}
	logger.Infof("[Runner] 访问列表成员: account=%s members=%v", accessList, out)
	return out
}

func (r *Runner) summaries(runID string) []StepSummary {
	recs := r.ledger.Steps(runID)
	out := make([]StepSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, StepSummary{
			Name:      rec.Name,
			Signature: rec.Signature,
			Status:    rec.Status.String(),
			Error:     rec.Error,
		})
	}
	return out
}

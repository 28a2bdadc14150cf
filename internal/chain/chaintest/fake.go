// Package chaintest 提供内存版 chain.Client，供各业务包单测使用
package chaintest

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/pkg/types"
)

var ErrMissingSignature = errors.New("fake: transaction missing required signature")

// FakeClient 线程安全；所有注入的错误字段为 nil 时按成功路径处理
type FakeClient struct {
	mu sync.Mutex

	AirdropErr   error
	BlockhashErr error
	SendErr      error
	StatusErr    error
	RentErr      error
	// OnChainErr 非空时所有交易的状态都带执行错误
	OnChainErr any
	// PendingPolls 每笔交易在达到 finalized 之前返回 nil 状态的轮询次数
	PendingPolls int
	RentLamports uint64
	// OnSend 在交易被接受后调用，用于模拟合约对账户数据的修改
	OnSend func(f *FakeClient, tx soltypes.Transaction)

	Airdrops        []Airdrop
	Sent            []soltypes.Transaction
	BlockhashCalls  int
	Balances        map[types.Pubkey]uint64
	Accounts        map[types.Pubkey][]byte
	polls           map[types.Signature]int
	blockhashSerial int
}

type Airdrop struct {
	To       types.Pubkey
	Lamports uint64
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		RentLamports: 890_880,
		Balances:     make(map[types.Pubkey]uint64),
		Accounts:     make(map[types.Pubkey][]byte),
		polls:        make(map[types.Signature]int),
	}
}

var _ chain.Client = (*FakeClient)(nil)

func (f *FakeClient) RequestAirdrop(_ context.Context, to types.Pubkey, lamports uint64) (types.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AirdropErr != nil {
		return types.Signature{}, f.AirdropErr
	}
	f.Airdrops = append(f.Airdrops, Airdrop{To: to, Lamports: lamports})
	f.Balances[to] += lamports

	var sig types.Signature
	copy(sig[:], to[:])
	binary.LittleEndian.PutUint32(sig[60:], uint32(len(f.Airdrops)))
	return sig, nil
}

func (f *FakeClient) LatestBlockhash(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BlockhashCalls++
	if f.BlockhashErr != nil {
		return "", f.BlockhashErr
	}
	f.blockhashSerial++
	var h types.Pubkey
	h[0] = byte(f.blockhashSerial)
	return h.String(), nil
}

func (f *FakeClient) MinimumBalanceForRentExemption(_ context.Context, space uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RentErr != nil {
		return 0, f.RentErr
	}
	return f.RentLamports + space*6960, nil
}

func (f *FakeClient) SendTransaction(_ context.Context, tx soltypes.Transaction) (types.Signature, error) {
	f.mu.Lock()
	if f.SendErr != nil {
		f.mu.Unlock()
		return types.Signature{}, f.SendErr
	}
	// 与节点一致：所有需要签名的位置都必须有非零签名
	zero := make([]byte, 64)
	for i, s := range tx.Signatures {
		if len(s) != 64 || bytes.Equal(s, zero) {
			f.mu.Unlock()
			return types.Signature{}, fmt.Errorf("%w: index %d (%s)", ErrMissingSignature, i, tx.Message.Accounts[i].ToBase58())
		}
	}
	f.Sent = append(f.Sent, tx)
	f.applyCreateAccounts(tx)
	hook := f.OnSend
	f.mu.Unlock()

	if hook != nil {
		hook(f, tx)
	}
	return types.SignatureFromBytes(tx.Signatures[0])
}

// applyCreateAccounts 识别 system program 的 CreateAccount，按 space 分配账户数据
func (f *FakeClient) applyCreateAccounts(tx soltypes.Transaction) {
	for _, ix := range tx.Message.DecompileInstructions() {
		if ix.ProgramID != common.SystemProgramID || len(ix.Data) < 20 || len(ix.Accounts) < 2 {
			continue
		}
		if binary.LittleEndian.Uint32(ix.Data[:4]) != 0 {
			continue
		}
		lamports := binary.LittleEndian.Uint64(ix.Data[4:12])
		space := binary.LittleEndian.Uint64(ix.Data[12:20])
		newAcc := types.PubkeyFromCommon(ix.Accounts[1].PubKey)
		f.Accounts[newAcc] = make([]byte, space)
		f.Balances[newAcc] += lamports
	}
}

func (f *FakeClient) SignatureStatus(_ context.Context, sig types.Signature) (*chain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	f.polls[sig]++
	if f.polls[sig] <= f.PendingPolls {
		return nil, nil
	}
	return &chain.Status{Slot: 100, Commitment: chain.CommitmentFinalized, Err: f.OnChainErr}, nil
}

func (f *FakeClient) GetBalance(_ context.Context, account types.Pubkey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Balances[account], nil
}

func (f *FakeClient) GetAccountData(_ context.Context, account types.Pubkey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Accounts[account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chain.ErrAccountNotFound, account)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// SetAccountData 供 OnSend 钩子修改账户数据
func (f *FakeClient) SetAccountData(account types.Pubkey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Accounts[account] = data
}

// AccountData 返回内部数据的拷贝
func (f *FakeClient) AccountData(account types.Pubkey) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.Accounts[account]...)
}

func (f *FakeClient) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

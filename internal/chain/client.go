package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/pkg/types"
)

// Status 签名状态，Err 非空表示交易已上链但执行失败
type Status struct {
	Slot       uint64
	Commitment Commitment
	Err        any
}

// Client 脚本用到的全部 RPC 能力
type Client interface {
	RequestAirdrop(ctx context.Context, to types.Pubkey, lamports uint64) (types.Signature, error)
	LatestBlockhash(ctx context.Context) (string, error)
	MinimumBalanceForRentExemption(ctx context.Context, space uint64) (uint64, error)
	SendTransaction(ctx context.Context, tx soltypes.Transaction) (types.Signature, error)
	// SignatureStatus 签名未被节点看到时返回 (nil, nil)
	SignatureStatus(ctx context.Context, sig types.Signature) (*Status, error)
	GetBalance(ctx context.Context, account types.Pubkey) (uint64, error)
	// GetAccountData 账户不存在时返回 ErrAccountNotFound
	GetAccountData(ctx context.Context, account types.Pubkey) ([]byte, error)
}

var ErrAccountNotFound = errors.New("account not found")

// RPCClient 基于 solana-go-sdk 的 JSON-RPC 实现
type RPCClient struct {
	client        *client.Client
	endpoint      string
	skipPreflight bool
	preflight     Commitment
}

func NewRPCClient(endpoint string, skipPreflight bool, preflight Commitment) (*RPCClient, error) {
	c := client.NewClient(endpoint)
	if c == nil {
		return nil, errors.New("rpc client init failed")
	}
	return &RPCClient{
		client:        c,
		endpoint:      endpoint,
		skipPreflight: skipPreflight,
		preflight:     preflight,
	}, nil
}

func (r *RPCClient) Endpoint() string {
	return r.endpoint
}

func (r *RPCClient) RequestAirdrop(ctx context.Context, to types.Pubkey, lamports uint64) (types.Signature, error) {
	sig, err := r.client.RequestAirdrop(ctx, to.String(), lamports)
	if err != nil {
		return types.Signature{}, fmt.Errorf("RequestAirdrop failed: %w", err)
	}
	return types.SignatureFromBase58(sig)
}

func (r *RPCClient) LatestBlockhash(ctx context.Context) (string, error) {
	resp, err := r.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash failed: %w", err)
	}
	return resp.Blockhash, nil
}

func (r *RPCClient) MinimumBalanceForRentExemption(ctx context.Context, space uint64) (uint64, error) {
	lamports, err := r.client.GetMinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return 0, fmt.Errorf("GetMinimumBalanceForRentExemption failed: %w", err)
	}
	return lamports, nil
}

func (r *RPCClient) SendTransaction(ctx context.Context, tx soltypes.Transaction) (types.Signature, error) {
	sig, err := r.client.SendTransactionWithConfig(ctx, tx, client.SendTransactionConfig{
		SkipPreflight:       r.skipPreflight,
		PreflightCommitment: r.preflight.toRPC(),
	})
	if err != nil {
		return types.Signature{}, fmt.Errorf("SendTransaction failed: %w", err)
	}
	return types.SignatureFromBase58(sig)
}

func (r *RPCClient) SignatureStatus(ctx context.Context, sig types.Signature) (*Status, error) {
	st, err := r.client.GetSignatureStatus(ctx, sig.String())
	if err != nil {
		return nil, fmt.Errorf("GetSignatureStatus failed: %w", err)
	}
	if st == nil {
		return nil, nil
	}
	status := &Status{Slot: st.Slot, Err: st.Err}
	if st.ConfirmationStatus != nil {
		status.Commitment = commitmentFromRPC(*st.ConfirmationStatus)
	}
	return status, nil
}

func (r *RPCClient) GetBalance(ctx context.Context, account types.Pubkey) (uint64, error) {
	balance, err := r.client.GetBalance(ctx, account.String())
	if err != nil {
		return 0, fmt.Errorf("GetBalance failed: %w", err)
	}
	return balance, nil
}

func (r *RPCClient) GetAccountData(ctx context.Context, account types.Pubkey) ([]byte, error) {
	info, err := r.client.GetAccountInfo(ctx, account.String())
	if err != nil {
		return nil, fmt.Errorf("GetAccountInfo failed: %w", err)
	}
	// 不存在的账户返回零值 AccountInfo
	if info.Lamports == 0 && len(info.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	return info.Data, nil
}

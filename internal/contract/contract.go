package contract

import (
	"github.com/blocto/solana-go-sdk/program/system"
	soltypes "github.com/blocto/solana-go-sdk/types"

	"pam-client-sol/internal/pkg/types"
)

// Contract 访问控制合约的指令构造器，字段在构造后不可变。
// 所有方法都是纯函数，不访问网络。
type Contract struct {
	programID types.Pubkey
	payer     types.Pubkey
}

// NewContract programID 为合约地址，payer 为建账户时的出资方
func NewContract(programID, payer types.Pubkey) *Contract {
	return &Contract{programID: programID, payer: payer}
}

func (c *Contract) ProgramID() types.Pubkey {
	return c.programID
}

func (c *Contract) Payer() types.Pubkey {
	return c.payer
}

func (c *Contract) instruction(tag Tag, metas []soltypes.AccountMeta, keys ...types.Pubkey) soltypes.Instruction {
	return soltypes.Instruction{
		ProgramID: c.programID.ToCommon(),
		Accounts:  metas,
		Data:      EncodeData(tag, keys...),
	}
}

func meta(pk types.Pubkey, isSigner, isWritable bool) soltypes.AccountMeta {
	return soltypes.AccountMeta{PubKey: pk.ToCommon(), IsSigner: isSigner, IsWritable: isWritable}
}

// InitProgramData 初始化程序状态账户。
// 账户：
//  0. [signer, writable] 程序状态账户
func (c *Contract) InitProgramData(dataAccount types.Pubkey) soltypes.Instruction {
	return c.instruction(TagInit, []soltypes.AccountMeta{
		meta(dataAccount, true, true),
	})
}

// InitAccessList 在程序状态中登记新的访问列表，key 为签名者（即访问列表账户自身）。
// 账户：
//  0. [writable] 程序状态账户
//  1. [signer, writable] 新访问列表账户
func (c *Contract) InitAccessList(dataAccount, accessList types.Pubkey) soltypes.Instruction {
	return c.instruction(TagInitAccessList, []soltypes.AccountMeta{
		meta(dataAccount, false, true),
		meta(accessList, true, true),
	})
}

// AddToAccessList 账户：
//  0. [] 程序状态账户
//  1. [signer, writable] 访问列表账户
func (c *Contract) AddToAccessList(dataAccount, accessList, member types.Pubkey) soltypes.Instruction {
	return c.instruction(TagAddToAccessList, []soltypes.AccountMeta{
		meta(dataAccount, false, false),
		meta(accessList, true, true),
	}, member)
}

// RemoveFromAccessList 账户布局同 AddToAccessList
func (c *Contract) RemoveFromAccessList(dataAccount, accessList, member types.Pubkey) soltypes.Instruction {
	return c.instruction(TagRemoveFromAccessList, []soltypes.AccountMeta{
		meta(dataAccount, false, false),
		meta(accessList, true, true),
	}, member)
}

// UpdateAccessList 用 members 整体替换访问列表。
// 账户：
//  0. [writable] 程序状态账户
//  1. [signer, writable] 访问列表账户
func (c *Contract) UpdateAccessList(dataAccount, accessList types.Pubkey, members ...types.Pubkey) soltypes.Instruction {
	return c.instruction(TagUpdateAccessList, []soltypes.AccountMeta{
		meta(dataAccount, false, true),
		meta(accessList, true, true),
	}, members...)
}

// CreateProgramAccount 由 payer 出资创建归属于合约的新账户，newAccount 需要同时签名
func (c *Contract) CreateProgramAccount(newAccount types.Pubkey, lamports, space uint64) soltypes.Instruction {
	return system.CreateAccount(system.CreateAccountParam{
		From:     c.payer.ToCommon(),
		New:      newAccount.ToCommon(),
		Owner:    c.programID.ToCommon(),
		Lamports: lamports,
		Space:    space,
	})
}

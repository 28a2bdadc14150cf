package consts

import (
	"pam-client-sol/internal/pkg/types"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对
var (
	SystemProgram types.Pubkey
	PamProgram    types.Pubkey
)

func init() {
	SystemProgram = types.PubkeyFromBase58(SystemProgramStr)
	PamProgram = types.PubkeyFromBase58(PamProgramStr)
}

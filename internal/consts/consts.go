package consts

import "time"

const (
	LamportsPerSol uint64 = 1_000_000_000

	// DevnetEndpoint 公共测试网 RPC
	DevnetEndpoint = "https://api.devnet.solana.com"
)

// 链上账户默认参数，与原始脚本保持一致
const (
	DefaultAirdropLamports  = 2 * LamportsPerSol // devnet 单次空投上限 2 SOL
	DefaultAccountLamports  = 10_000_000
	DefaultDataAccountSpace = 1024 * 100
	DefaultAccessListSpace  = 1024
)

// 交易确认相关默认值
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultBlockhashTTL   = 30 * time.Second
)

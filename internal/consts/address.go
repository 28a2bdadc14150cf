package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	SystemProgramStr = "11111111111111111111111111111111"

	// PamProgramStr 访问控制合约的默认部署地址（devnet）
	PamProgramStr = "8wmMgLo9xBGUKai7eWxF2ziVNVFagGX9bWDgntbx4ifL"
)

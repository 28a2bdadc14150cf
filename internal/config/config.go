package config

import (
	"errors"
	"fmt"
	"time"

	"pam-client-sol/internal/contract"
	"pam-client-sol/internal/pkg/types"
	"pam-client-sol/pkg/logger"
)

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`        // 日志目录（为空时只输出到 stdout）
	Level    string `json:"level,default=info"`      // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`       // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig 节点连接与交易确认配置
type RpcConfig struct {
	Endpoint          string `json:"endpoint,default=https://api.devnet.solana.com"` // RPC 地址
	Commitment        string `json:"commitment,default=confirmed"`                   // 等待的确认级别：processed / confirmed / finalized
	SkipPreflight     bool   `json:"skip_preflight,default=true"`                    // 跳过节点预执行
	ConfirmTimeoutSec int    `json:"confirm_timeout_sec,default=60"`                 // 单笔交易确认超时（秒）
	PollIntervalMs    int    `json:"poll_interval_ms,default=500"`                   // 签名状态轮询间隔（毫秒）
	BlockhashTTLSec   int    `json:"blockhash_ttl_sec,default=30"`                   // recent blockhash 复用时长（秒）
}

func (c *RpcConfig) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSec) * time.Second
}

func (c *RpcConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *RpcConfig) BlockhashTTL() time.Duration {
	return time.Duration(c.BlockhashTTLSec) * time.Second
}

// ProgramConfig 目标合约
type ProgramConfig struct {
	ProgramID string `json:"program_id,default=8wmMgLo9xBGUKai7eWxF2ziVNVFagGX9bWDgntbx4ifL"`
}

// FundingConfig 空投与建账户参数
type FundingConfig struct {
	AirdropLamports  uint64 `json:"airdrop_lamports,default=2000000000"` // 为付款账户申请的空投，0 表示仅对新生成的付款账户申请默认额度
	AccountLamports  uint64 `json:"account_lamports,default=10000000"`   // 新建程序账户预存的 lamports
	DataAccountSpace uint64 `json:"data_account_space,default=102400"`   // 程序状态账户大小（字节）
	AccessListSpace  uint64 `json:"access_list_space,default=1024"`      // 访问列表账户大小（字节）
	UseRentExempt    bool   `json:"use_rent_exempt,optional"`            // 按免租最低余额建账户，忽略 AccountLamports
}

// PayerConfig 付款账户来源，优先级：KeypairFile > PrivateKey > Mnemonic > 随机生成
type PayerConfig struct {
	KeypairFile string `json:"keypair_file,optional"` // solana-keygen 生成的 JSON 文件
	PrivateKey  string `json:"private_key,optional"`  // base58 编码的 64 字节私钥
	Mnemonic    string `json:"mnemonic,optional"`     // BIP-39 助记词
	Passphrase  string `json:"passphrase,optional"`   // 助记词口令
}

// AccessListConfig 初始化后需要加入访问列表的成员
type AccessListConfig struct {
	Members []string `json:"members,optional"` // base58 公钥
}

// RedisConfig 运行记录（ledger）存储，Addr 为空时只保存在内存
type RedisConfig struct {
	Addr     string `json:"addr,optional"`
	Password string `json:"password,optional"`
	DB       int    `json:"db,optional"`
	TTLHours int    `json:"ttl_hours,default=72"`
}

// KafkaProducerConfig 运行事件推送，Brokers 为空时关闭
type KafkaProducerConfig struct {
	Brokers    string `json:"brokers,optional"`            // Kafka broker 地址，多个用英文逗号分隔
	Topic      string `json:"topic,default=pam_client_run"` // 运行事件 topic
	Partitions int    `json:"partitions,default=1"`         // topic 分区数
	BatchSize  int    `json:"batch_size,optional"`          // 批处理大小（单位字节）
	LingerMs   int    `json:"linger_ms,optional"`           // 批处理最大延迟（毫秒）
	TimeoutMs  int    `json:"timeout_ms,default=5000"`      // 单条事件发送并等待 ack 的超时
}

// ClientConfig 是主配置结构体
type ClientConfig struct {
	Log        LogConfig           `json:"logger"`
	Rpc        RpcConfig           `json:"rpc"`
	Program    ProgramConfig       `json:"program"`
	Funding    FundingConfig       `json:"funding"`
	Payer      PayerConfig         `json:"payer,optional"`
	AccessList AccessListConfig    `json:"access_list,optional"`
	Redis      RedisConfig         `json:"redis,optional"`
	Kafka      KafkaProducerConfig `json:"kafka,optional"`
	ReportFile string              `json:"report_file,optional"` // 运行结果 YAML 输出路径
}

var validCommitments = map[string]bool{
	"processed": true, "confirmed": true, "finalized": true,
	// 旧版本名称
	"recent": true, "single": true, "singleGossip": true, "max": true, "root": true,
}

// Validate 在连接节点之前检查配置
func (c *ClientConfig) Validate() error {
	if c.Rpc.Endpoint == "" {
		return errors.New("rpc.endpoint is empty")
	}
	if !validCommitments[c.Rpc.Commitment] {
		return fmt.Errorf("rpc.commitment %q not supported", c.Rpc.Commitment)
	}
	if c.Rpc.ConfirmTimeoutSec <= 0 {
		return fmt.Errorf("rpc.confirm_timeout_sec must be positive, got %d", c.Rpc.ConfirmTimeoutSec)
	}
	if _, err := types.TryPubkeyFromBase58(c.Program.ProgramID); err != nil {
		return fmt.Errorf("program.program_id: %w", err)
	}
	if c.Funding.DataAccountSpace == 0 || c.Funding.AccessListSpace == 0 {
		return errors.New("funding: account space must be positive")
	}
	if c.Funding.AccessListSpace%types.PubkeySize != 0 {
		return fmt.Errorf("funding.access_list_space must be a multiple of %d, got %d", types.PubkeySize, c.Funding.AccessListSpace)
	}
	members, err := types.PubkeysFromBase58(c.AccessList.Members)
	if err != nil {
		return fmt.Errorf("access_list.members: %w", err)
	}
	if err := contract.CheckMembers(members); err != nil {
		return fmt.Errorf("access_list.members: %w", err)
	}
	if need := uint64(len(members)) * types.PubkeySize; need > c.Funding.AccessListSpace {
		return fmt.Errorf("access_list.members: %d members need %d bytes, access_list_space is %d", len(members), need, c.Funding.AccessListSpace)
	}
	return nil
}

// ProgramPubkey 已通过 Validate 校验
func (c *ClientConfig) ProgramPubkey() types.Pubkey {
	return types.PubkeyFromBase58(c.Program.ProgramID)
}

func (c *ClientConfig) MemberPubkeys() []types.Pubkey {
	members, _ := types.PubkeysFromBase58(c.AccessList.Members)
	return members
}

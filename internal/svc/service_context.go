package svc

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pam-client-sol/internal/chain"
	"pam-client-sol/internal/config"
	"pam-client-sol/internal/consts"
	"pam-client-sol/internal/contract"
	"pam-client-sol/internal/identity"
	"pam-client-sol/internal/ledger"
	"pam-client-sol/internal/logic/bootstrap"
	"pam-client-sol/internal/logic/runner"
	"pam-client-sol/internal/logic/sender"
	"pam-client-sol/internal/mq"
	"pam-client-sol/pkg/logger"
)

// ServiceContext 包含一次运行所需的全部资源
type ServiceContext struct {
	Config       config.ClientConfig
	Client       chain.Client
	Payer        identity.Identity
	Sender       *sender.Sender
	Contract     *contract.Contract
	Bootstrapper *bootstrap.Bootstrapper
	Ledger       *ledger.Ledger
	Redis        *redis.Client      // 未配置时为 nil
	Publisher    *mq.EventPublisher // 未配置时为 nil
	Runner       *runner.Runner
}

// NewServiceContext 按配置装配依赖，调用前需先通过 c.Validate()
func NewServiceContext(c config.ClientConfig) (*ServiceContext, error) {
	commitment, err := chain.ParseCommitment(c.Rpc.Commitment)
	if err != nil {
		return nil, err
	}

	// 1. RPC 客户端
	client, err := chain.NewRPCClient(c.Rpc.Endpoint, c.Rpc.SkipPreflight, commitment)
	if err != nil {
		return nil, err
	}

	// 2. 付款账户
	payer, generated, err := identity.LoadPayer(c.Payer)
	if err != nil {
		return nil, fmt.Errorf("load payer: %w", err)
	}

	sc := &ServiceContext{
		Config: c,
		Client: client,
		Payer:  payer,
	}

	// 3. 发送器、合约与 bootstrap
	sc.Sender = sender.NewSender(client, payer, sender.Option{
		Commitment:     commitment,
		ConfirmTimeout: c.Rpc.ConfirmTimeout(),
		PollInterval:   c.Rpc.PollInterval(),
		BlockhashTTL:   c.Rpc.BlockhashTTL(),
	})
	sc.Contract = contract.NewContract(c.ProgramPubkey(), payer.PublicKey())

	airdrop := c.Funding.AirdropLamports
	if airdrop == 0 && generated {
		airdrop = consts.DefaultAirdropLamports
	}
	sc.Bootstrapper = bootstrap.NewBootstrapper(client, sc.Sender, sc.Contract, bootstrap.Option{
		FundPayer:        airdrop > 0,
		AirdropLamports:  airdrop,
		AccountLamports:  c.Funding.AccountLamports,
		UseRentExempt:    c.Funding.UseRentExempt,
		DataAccountSpace: c.Funding.DataAccountSpace,
		Commitment:       commitment,
		ConfirmTimeout:   c.Rpc.ConfirmTimeout(),
		PollInterval:     c.Rpc.PollInterval(),
	})

	// 4. 运行记录（可选 Redis）
	var store *ledger.RedisLedgerStore
	if c.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			logger.Errorf("[Svc] Redis 连接失败: addr=%s err=%v", c.Redis.Addr, err)
			return nil, fmt.Errorf("redis ping %s: %w", c.Redis.Addr, err)
		}
		sc.Redis = rdb
		store = ledger.NewRedisLedgerStore(rdb, time.Duration(c.Redis.TTLHours)*time.Hour)
	}
	sc.Ledger = ledger.NewLedger(store)

	// 5. 事件投递（可选 Kafka）
	var publisher runner.StepPublisher
	if c.Kafka.Brokers != "" {
		producer, err := mq.NewKafkaProducer(c.Kafka)
		if err != nil {
			logger.Errorf("[Svc] Kafka producer 初始化失败: %v", err)
			sc.Close()
			return nil, err
		}
		sc.Publisher = mq.NewEventPublisher(producer, c.Kafka.Topic, c.Kafka.Partitions,
			time.Duration(c.Kafka.TimeoutMs)*time.Millisecond)
		publisher = sc.Publisher
	}

	// 6. 运行器
	sc.Runner = runner.NewRunner(client, sc.Sender, sc.Contract, sc.Bootstrapper, sc.Ledger, publisher, runner.Option{
		Members:         c.MemberPubkeys(),
		AccessListSpace: c.Funding.AccessListSpace,
	})

	logger.Infof("[Svc] 服务上下文初始化完成: endpoint=%s redis=%v kafka=%v",
		c.Rpc.Endpoint, sc.Redis != nil, sc.Publisher != nil)
	return sc, nil
}

// Close 关闭服务上下文中的资源
func (sc *ServiceContext) Close() {
	if sc.Publisher != nil {
		sc.Publisher.Close()
	}
	if sc.Redis != nil {
		if err := sc.Redis.Close(); err != nil {
			logger.Warnf("[Svc] 关闭 Redis 失败: %v", err)
		}
	}
}

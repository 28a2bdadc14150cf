package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"pam-client-sol/internal/config"
	"pam-client-sol/internal/pkg/errs"
	"pam-client-sol/internal/svc"
	"pam-client-sol/internal/utils"
	"pam-client-sol/pkg/logger"
)

var (
	configFile = flag.String("f", "etc/pamclient.yaml", "the config file")
	showRun    = flag.String("run", "", "print the recorded steps of a previous run (needs redis) and exit")
)

func main() {
	logx.DisableStat()
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	var c config.ClientConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.Log.ToLogOption()); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := c.Validate(); err != nil {
		logger.Errorf("[Main] 配置无效: %v", err)
		exit(1)
	}

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		logger.Errorf("[Main] 初始化失败: %v", err)
		exit(1)
	}
	defer serviceContext.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *showRun != "" {
		records, err := serviceContext.Ledger.History(ctx, *showRun)
		if err != nil {
			logger.Errorf("[Main] 读取运行记录失败: run=%s err=%v", *showRun, err)
			serviceContext.Close()
			exit(1)
		}
		fmt.Printf("run: %s (%d steps)\n", *showRun, len(records))
		for _, rec := range records {
			fmt.Printf("  %-10s %-60s %s %s\n", rec.Status, rec.Name, rec.Signature, rec.Error)
		}
		return
	}

	result, runErr := serviceContext.Runner.Run(ctx)
	if result != nil {
		fmt.Printf("run:          %s\n", result.RunID)
		fmt.Printf("payer:        %s\n", result.Payer)
		fmt.Printf("data account: %s\n", result.DataAccount)
		fmt.Printf("access list:  %s\n", result.AccessList)
		for _, step := range result.Steps {
			fmt.Printf("  %-10s %-60s %s\n", step.Status, step.Name, step.Signature)
		}
		if c.ReportFile != "" {
			if err := utils.WriteYAMLReport(c.ReportFile, result); err != nil {
				logger.Warnf("[Main] 写入运行报告失败: %v", err)
			} else {
				logger.Infof("[Main] 运行报告已写入 %s", c.ReportFile)
			}
		}
	}

	if runErr != nil {
		logger.Errorf("[Main] 运行失败: kind=%s err=%v", errs.KindOf(runErr), runErr)
		serviceContext.Close()
		exit(1)
	}
	logger.Infof("[Main] 完成")
}

// exit 在 os.Exit 前刷新日志，defer 不会执行
func exit(code int) {
	logger.Sync()
	os.Exit(code)
}

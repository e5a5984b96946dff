package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/repo/rpbundle"
	"fzscan/internal/app/domains/repo/rporder"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/repo/rptemplate"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/infra/catalog"
	"fzscan/internal/app/infra/persistence/db"
	"fzscan/internal/app/infra/persistence/redis"
	"fzscan/internal/sync/domains"
	"fzscan/internal/sync/worker"
	"fzscan/pkg/config"
	"fzscan/pkg/lmstfy"
	"fzscan/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  fzscan Worker Starting...")
	log.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化依赖
	progress, cleanup, err := newProgressModule(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to init progress module: %v", err)
	}
	defer cleanup()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	// 4. 创建 Manager
	handlers := domains.NewHandlerMap(&domains.Deps{Progress: progress, Logger: zapLogger})
	mgr, err := worker.NewManagerInstance(cfg, lmstfyClient, handlers, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	go func() {
		if err := mgr.Start(); err != nil {
			log.Fatalf("Manager start failed: %v", err)
		}
	}()
	log.Println("Worker started. Press Ctrl+C to shutdown.")

	// 5. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v, shutting down worker...", sig)
	mgr.Shutdown()
	log.Println("Worker exited gracefully")
}

// newProgressModule 进度重算依赖：数据库、模板目录、Redis 通知（未配置时不发通知）
func newProgressModule(cfg *config.Config, log logger.Logger) (*mdprogress.ProgressModule, func(), error) {
	ctx := context.Background()

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	xdb, err := db.NewSQLX(gdb)
	if err != nil {
		_ = db.Close(gdb)
		return nil, nil, err
	}

	var templateFile *catalog.FileCatalog
	if cfg.Catalog.TemplateFile != "" {
		if templateFile, err = catalog.LoadFile(cfg.Catalog.TemplateFile); err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
	}

	var pubsub mdprogress.PubSub
	closers := []func() error{func() error { return db.Close(gdb) }}
	if cfg.Redis.Addr != "" {
		client, err := redis.NewPubSubClient(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close(gdb)
			return nil, nil, fmt.Errorf("init redis failed: %w", err)
		}
		pubsub = client
		closers = append(closers, client.Close)
	} else {
		log.Warnf(ctx, "[Worker] redis not configured, progress notifications disabled")
	}

	stages := mdstage.NewStageModule(catalog.NewCatalog(rptemplate.NewTemplateRepository(gdb), templateFile))
	module := mdprogress.NewProgressModule(
		rporder.NewOrderRepository(gdb),
		rpbundle.NewBundleRepository(gdb),
		rpscan.NewScanRecordRepository(gdb, xdb),
		rpwarehouse.NewWarehousingRepository(gdb),
		stages,
		pubsub,
		cfg.Progress.Channel,
		log,
	)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}
	return module, cleanup, nil
}

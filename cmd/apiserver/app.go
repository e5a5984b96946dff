package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"fzscan/internal/app/domains/modules/mdledger"
	"fzscan/internal/app/domains/modules/mdlocator"
	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/app/domains/modules/mdquality"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/modules/mdvalidate"
	"fzscan/internal/app/domains/modules/mdwarehouse"
	"fzscan/internal/app/domains/repo/rpbundle"
	"fzscan/internal/app/domains/repo/rporder"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/repo/rptemplate"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/domains/services/svprogress"
	"fzscan/internal/app/domains/services/svscan"
	"fzscan/internal/app/infra/catalog"
	"fzscan/internal/app/infra/persistence/db"
	"fzscan/internal/app/infra/persistence/redis"
	"fzscan/internal/app/pkg/idgen"
	"fzscan/internal/app/server/handlers/progress"
	"fzscan/internal/app/server/handlers/scan"
	"fzscan/internal/app/server/routers"
	"fzscan/pkg/config"
	"fzscan/pkg/lmstfy"
	"fzscan/pkg/logger"
)

// App 应用实例
type App struct {
	Engine *gin.Engine
}

// InitializeApp 组装基础设施、仓储、模块、服务与路由
func InitializeApp(cfg *config.Config, log logger.Logger) (*App, func(), error) {
	ctx := context.Background()

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
	}
	xdb, err := db.NewSQLX(gdb)
	if err != nil {
		_ = db.Close(gdb)
		return nil, nil, err
	}
	log.Infof(ctx, "Database connected: driver=%s", cfg.Database.Driver)

	pubsub, err := redis.NewPubSubClient(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close(gdb)
		return nil, nil, err
	}
	log.Infof(ctx, "Redis connected: %s", cfg.Redis.Addr)

	cleanup := func() {
		_ = pubsub.Close()
		_ = db.Close(gdb)
	}

	// 仓储
	orderRepo := rporder.NewOrderRepository(gdb)
	bundleRepo := rpbundle.NewBundleRepository(gdb)
	scanRepo := rpscan.NewScanRecordRepository(gdb, xdb)
	whRepo := rpwarehouse.NewWarehousingRepository(gdb)
	templateRepo := rptemplate.NewTemplateRepository(gdb)

	var templateFile *catalog.FileCatalog
	if cfg.Catalog.TemplateFile != "" {
		templateFile, err = catalog.LoadFile(cfg.Catalog.TemplateFile)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	// 领域模块
	numbers := idgen.NewNumberGenerator(1)
	stages := mdstage.NewStageModule(catalog.NewCatalog(templateRepo, templateFile))
	ledger := mdledger.NewLedgerModule(scanRepo, log)
	validator := mdvalidate.NewValidateModule(scanRepo, whRepo)
	progressModule := mdprogress.NewProgressModule(orderRepo, bundleRepo, scanRepo, whRepo, stages, pubsub, cfg.Progress.Channel, log)

	dispatcher, err := newDispatcher(cfg, progressModule, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// 服务
	scanService := svscan.NewScanService(
		mdlocator.NewLocatorModule(orderRepo, bundleRepo),
		stages,
		validator,
		ledger,
		mdquality.NewQualityModule(ledger, validator, whRepo, numbers, log),
		mdwarehouse.NewWarehouseModule(ledger, validator, whRepo, numbers, log),
		dispatcher,
		log,
	)
	progressService := svprogress.NewProgressService(progressModule, cfg.Progress.WaitMax, log)

	engine := routers.SetupRoutes(
		scan.NewScanHandler(scanService),
		progress.NewProgressHandler(progressService),
		log,
	)

	return &App{Engine: engine}, cleanup, nil
}

// newDispatcher 按配置选择同步重算或投递队列
func newDispatcher(cfg *config.Config, module *mdprogress.ProgressModule, log logger.Logger) (mdprogress.Dispatcher, error) {
	inline := mdprogress.NewSyncDispatcher(module, log)
	if cfg.Progress.Mode != config.ProgressModeAsync {
		return inline, nil
	}

	client, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}
	return mdprogress.NewQueueDispatcher(client, cfg.Progress.Queue, inline, log), nil
}

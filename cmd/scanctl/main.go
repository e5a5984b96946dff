// scanctl 运维命令：建表、导入款式模板、重算订单进度
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/repo/rpbundle"
	"fzscan/internal/app/domains/repo/rporder"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/repo/rptemplate"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/domains/services/svprogress"
	"fzscan/internal/app/infra/catalog"
	"fzscan/internal/app/infra/persistence/db"
	"fzscan/internal/app/infra/persistence/redis"
	"fzscan/pkg/config"
	"fzscan/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "scanctl",
		Usage: "fzscan 运维工具",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config/config.yaml",
				Usage:   "配置文件路径",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "同步表结构",
				Action: migrate,
			},
			{
				Name:  "seed-templates",
				Usage: "把模板文件中的款式写入数据库",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "模板文件，默认取 catalog.template_file"},
				},
				Action: seedTemplates,
			},
			{
				Name:  "recompute",
				Usage: "重算订单进度（按订单或款式）",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "order", Usage: "订单 ID"},
					&cli.StringFlag{Name: "style", Usage: "款号"},
				},
				Action: recompute,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// env 命令执行环境
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	logger logger.Logger
}

func setup(c *cli.Context) (*env, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("database dsn is required")
	}
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger failed: %w", err)
	}
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close(gdb)
		_ = zapLogger.Sync()
	}
	return &env{cfg: cfg, db: gdb, logger: zapLogger}, cleanup, nil
}

func migrate(c *cli.Context) error {
	e, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := db.AutoMigrate(e.db); err != nil {
		return err
	}
	fmt.Println("migrate done")
	return nil
}

func seedTemplates(c *cli.Context) error {
	e, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	path := c.String("file")
	if path == "" {
		path = e.cfg.Catalog.TemplateFile
	}
	if path == "" {
		return fmt.Errorf("template file is required")
	}
	file, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	n, err := catalog.NewCatalog(rptemplate.NewTemplateRepository(e.db), file).Seed(c.Context)
	if err != nil {
		return fmt.Errorf("seed templates failed after %d styles: %w", n, err)
	}
	fmt.Printf("seeded %d styles from %s\n", n, path)
	return nil
}

func recompute(c *cli.Context) error {
	orderID, styleNo := c.String("order"), c.String("style")
	if (orderID == "") == (styleNo == "") {
		return fmt.Errorf("exactly one of --order and --style is required")
	}

	e, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, closeRedis, err := newProgressService(c.Context, e)
	if err != nil {
		return err
	}
	defer closeRedis()

	if orderID != "" {
		p, err := svc.Recompute(c.Context, orderID)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%d%%\t%s\t%s\n", p.OrderID, p.Percent, p.Status, p.CurrentStage)
		return nil
	}

	summary, err := svc.RecomputeByStyle(c.Context, styleNo)
	if err != nil {
		return err
	}
	for _, p := range summary.Progress {
		fmt.Printf("%s\t%d%%\t%s\t%s\n", p.OrderID, p.Percent, p.Status, p.CurrentStage)
	}
	fmt.Printf("style %s: %d orders, %d failed\n", summary.StyleNo, summary.Total, len(summary.Failed))
	if len(summary.Failed) > 0 {
		return fmt.Errorf("recompute failed for orders: %v", summary.Failed)
	}
	return nil
}

func newProgressService(ctx context.Context, e *env) (*svprogress.ProgressService, func(), error) {
	xdb, err := db.NewSQLX(e.db)
	if err != nil {
		return nil, nil, err
	}

	var templateFile *catalog.FileCatalog
	if e.cfg.Catalog.TemplateFile != "" {
		if templateFile, err = catalog.LoadFile(e.cfg.Catalog.TemplateFile); err != nil {
			return nil, nil, err
		}
	}

	var pubsub mdprogress.PubSub
	closeRedis := func() {}
	if e.cfg.Redis.Addr != "" {
		client, err := redis.NewPubSubClient(ctx, e.cfg.Redis)
		if err != nil {
			e.logger.Warnf(ctx, "[scanctl] redis unavailable, skip notifications: %v", err)
		} else {
			pubsub = client
			closeRedis = func() { _ = client.Close() }
		}
	}

	module := mdprogress.NewProgressModule(
		rporder.NewOrderRepository(e.db),
		rpbundle.NewBundleRepository(e.db),
		rpscan.NewScanRecordRepository(e.db, xdb),
		rpwarehouse.NewWarehousingRepository(e.db),
		mdstage.NewStageModule(catalog.NewCatalog(rptemplate.NewTemplateRepository(e.db), templateFile)),
		pubsub,
		e.cfg.Progress.Channel,
		e.logger,
	)
	return svprogress.NewProgressService(module, 0, e.logger), closeRedis, nil
}

// Package testkit 模块与服务测试使用的 sqlite 仓储组合及数据准备
package testkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fzscan/internal/app/domains/entity/etbundle"
	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/domains/repo/rpbundle"
	"fzscan/internal/app/domains/repo/rporder"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/repo/rptemplate"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/infra/persistence/db"
	"fzscan/internal/app/infra/persistence/db/dbtest"
)

// Env 测试仓储集合
type Env struct {
	DB          *gorm.DB
	XDB         *sqlx.DB
	Orders      rporder.OrderRepository
	Bundles     rpbundle.BundleRepository
	Scans       rpscan.ScanRecordRepository
	Warehousing rpwarehouse.WarehousingRepository
	Templates   rptemplate.TemplateRepository
}

// New 基于内存 sqlite 创建仓储集合
func New(t testing.TB) *Env {
	t.Helper()
	gdb := dbtest.Open(t)
	xdb, err := db.NewSQLX(gdb)
	require.NoError(t, err)

	return &Env{
		DB:          gdb,
		XDB:         xdb,
		Orders:      rporder.NewOrderRepository(gdb),
		Bundles:     rpbundle.NewBundleRepository(gdb),
		Scans:       rpscan.NewScanRecordRepository(gdb, xdb),
		Warehousing: rpwarehouse.NewWarehousingRepository(gdb),
		Templates:   rptemplate.NewTemplateRepository(gdb),
	}
}

// Order 准备订单
func (e *Env) Order(t testing.TB, id, styleNo string, quantity int) *etorder.Order {
	t.Helper()
	order, err := etorder.NewOrder(id, "NO-"+id, styleNo, quantity)
	require.NoError(t, err)
	require.NoError(t, e.Orders.Create(context.Background(), order))
	return order
}

// Bundle 准备菲号，扫码内容为 <订单号>-<序号>
func (e *Env) Bundle(t testing.TB, order *etorder.Order, bundleNo int, quantity int) *etbundle.Bundle {
	t.Helper()
	b, err := etbundle.NewBundle(
		fmt.Sprintf("%s-B%d", order.ID, bundleNo),
		order.ID, order.OrderNo, bundleNo, "黑", "L", quantity,
		fmt.Sprintf("%s-%d", order.OrderNo, bundleNo),
	)
	require.NoError(t, err)
	b.StyleNo = order.StyleNo
	require.NoError(t, e.Bundles.Create(context.Background(), b))
	return b
}

// Template 保存款式模板
func (e *Env) Template(t testing.TB, styleNo string, nodes ...ettemplate.Node) *ettemplate.Template {
	t.Helper()
	tpl, err := ettemplate.NewTemplate(styleNo, nodes)
	require.NoError(t, err)
	require.NoError(t, e.Templates.Save(context.Background(), tpl))
	return tpl
}

// TemplateSource 模板来源（直接读库）
func (e *Env) TemplateSource() *RepoSource {
	return &RepoSource{repo: e.Templates}
}

// RepoSource 仓储模板来源
type RepoSource struct {
	repo rptemplate.TemplateRepository
}

// Template 取款式模板
func (s *RepoSource) Template(ctx context.Context, styleNo string) (*ettemplate.Template, error) {
	tpl, err := s.repo.GetByStyleNo(ctx, styleNo)
	if err != nil || tpl != nil {
		return tpl, err
	}
	return &ettemplate.Template{StyleNo: styleNo}, nil
}

// SewingNodes 常用款式工序：裁剪、两道车缝、整烫、质检、包装
func SewingNodes() []ettemplate.Node {
	price := decimal.RequireFromString
	return []ettemplate.Node{
		{Name: "裁剪", ProgressStage: "裁剪", UnitPrice: price("0.50")},
		{Name: "上领", ProgressStage: "车缝", UnitPrice: price("1.20")},
		{Name: "上袖", ProgressStage: "车缝", UnitPrice: price("1.10")},
		{Name: "整烫", ProgressStage: "尾部", UnitPrice: price("0.80")},
		{Name: "质检", ProgressStage: "尾部", UnitPrice: price("0.30")},
		{Name: "包装", ProgressStage: "尾部", UnitPrice: price("0.40")},
	}
}

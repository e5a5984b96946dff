package mdvalidate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/domains/modules/mdlocator"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/testkit"
	"fzscan/internal/app/pkg/errorx"
)

type fixture struct {
	env       *testkit.Env
	validator *ValidateModule
	loc       *mdlocator.Location
	seq       int
}

func setup(t *testing.T, orderQty, bundleQty int) *fixture {
	env := testkit.New(t)
	order := env.Order(t, "PO-1", "ST-01", orderQty)
	bundle := env.Bundle(t, order, 1, bundleQty)
	return &fixture{
		env:       env,
		validator: NewValidateModule(env.Scans, env.Warehousing),
		loc:       &mdlocator.Location{Order: order, Bundle: bundle},
	}
}

// scan 直接落一条生产扫码
func (f *fixture) scan(t *testing.T, unitKey, bundleID, process string, qty int) {
	f.seq++
	now := time.Now()
	rec := &etscan.ScanRecord{
		ID: "s" + string(rune('a'+f.seq)), RequestID: "req" + string(rune('a'+f.seq)),
		OrderID: f.loc.Order.ID, OrderNo: f.loc.Order.OrderNo, BundleID: bundleID, UnitKey: unitKey,
		ScanType: etscan.ScanTypeProduction, ProcessCode: process, ProcessName: process,
		OperatorID: "u-1", OperatorName: "张三", Result: etscan.ResultSuccess,
		ScanTime: now, CreatedAt: now, UpdatedAt: now,
	}
	rec.SetPricing(decimal.Zero, qty)
	require.NoError(t, f.env.Scans.Create(context.Background(), rec))
}

func TestUnitCeilingUsesMergedQuantity(t *testing.T) {
	f := setup(t, 200, 50)
	ctx := context.Background()
	key := f.loc.ClaimKey(etscan.ScanTypeProduction, "上领")

	require.NoError(t, f.validator.CheckUnitCeiling(ctx, f.loc, key, 50))
	err := f.validator.CheckUnitCeiling(ctx, f.loc, key, 51)
	assert.True(t, errors.Is(err, errorx.ErrQuantityExceeded))

	// 同领取键已扫 50，再扫 20 取大后仍为 50
	f.scan(t, f.loc.Bundle.ID, f.loc.Bundle.ID, "上领", 50)
	assert.NoError(t, f.validator.CheckUnitCeiling(ctx, f.loc, key, 20))

	// 不同子工序各自计数
	other := f.loc.ClaimKey(etscan.ScanTypeProduction, "上袖")
	assert.NoError(t, f.validator.CheckQuantity(ctx, f.loc, other, 50))
}

func TestOrderCeilingAcrossBundles(t *testing.T) {
	f := setup(t, 80, 50)
	ctx := context.Background()
	second := f.env.Bundle(t, f.loc.Order, 2, 50)

	f.scan(t, second.ID, second.ID, "上领", 50)

	key := f.loc.ClaimKey(etscan.ScanTypeProduction, "上领")
	require.NoError(t, f.validator.CheckOrderCeiling(ctx, f.loc, key, 30))
	err := f.validator.CheckQuantity(ctx, f.loc, key, 31)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrQuantityExceeded))
	assert.Contains(t, err.Error(), "订单数量 80")
}

func TestOrderlessSkipsUnitCeiling(t *testing.T) {
	f := setup(t, 100, 10)
	ctx := context.Background()
	orderless := &mdlocator.Location{Order: f.loc.Order}
	key := orderless.ClaimKey(etscan.ScanTypeProduction, "上领")

	assert.NoError(t, f.validator.CheckQuantity(ctx, orderless, key, 100))
	assert.Error(t, f.validator.CheckQuantity(ctx, orderless, key, 101))
}

func TestQualityPrerequisiteTemplateDriven(t *testing.T) {
	f := setup(t, 50, 50)
	ctx := context.Background()
	table := mdstage.NewTable(&ettemplate.Template{StyleNo: "ST-01", Nodes: testkit.SewingNodes()})

	err := f.validator.CheckQualityPrerequisite(ctx, f.loc, table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrPrerequisiteNotMet))
	be, _ := errorx.As(err)
	assert.Len(t, be.Details, 2)

	f.scan(t, f.loc.Bundle.ID, f.loc.Bundle.ID, "上领", 50)
	err = f.validator.CheckQualityPrerequisite(ctx, f.loc, table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "上袖")
	assert.NotContains(t, err.Error(), "上领")

	f.scan(t, f.loc.Bundle.ID, f.loc.Bundle.ID, "上袖", 50)
	assert.NoError(t, f.validator.CheckQualityPrerequisite(ctx, f.loc, table))
}

func TestQualityPrerequisiteFallback(t *testing.T) {
	f := setup(t, 50, 50)
	ctx := context.Background()
	table := mdstage.NewTable(nil)

	assert.True(t, errors.Is(f.validator.CheckQualityPrerequisite(ctx, f.loc, table), errorx.ErrPrerequisiteNotMet))
	f.scan(t, f.loc.Bundle.ID, f.loc.Bundle.ID, "钉扣", 50)
	assert.NoError(t, f.validator.CheckQualityPrerequisite(ctx, f.loc, table))
}

func TestWarehousePrerequisite(t *testing.T) {
	f := setup(t, 50, 50)
	ctx := context.Background()

	assert.True(t, errors.Is(f.validator.CheckWarehousePrerequisite(ctx, f.loc), errorx.ErrPrerequisiteNotMet))

	f.scan(t, f.loc.Bundle.ID, f.loc.Bundle.ID, "上领", 50)
	err := f.validator.CheckWarehousePrerequisite(ctx, f.loc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "包装")

	f.scan(t, f.loc.Bundle.ID, f.loc.Bundle.ID, "打包", 50)
	assert.NoError(t, f.validator.CheckWarehousePrerequisite(ctx, f.loc))
}

func TestWarehouseCeiling(t *testing.T) {
	f := setup(t, 100, 50)
	ctx := context.Background()

	require.NoError(t, f.env.Warehousing.Create(ctx, &etwarehouse.Record{
		ID: "w1", WarehousingNo: "WH1", OrderID: "PO-1", OrderNo: f.loc.Order.OrderNo, BundleID: f.loc.Bundle.ID,
		Type: etwarehouse.TypeScan, Quantity: 30, Qualified: 30, QualityStatus: etwarehouse.QualityQualified,
		CreatedAt: time.Now(),
	}))

	assert.NoError(t, f.validator.CheckWarehouseCeiling(ctx, f.loc, 20))
	err := f.validator.CheckWarehouseCeiling(ctx, f.loc, 21)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrQuantityExceeded))

	orderless := &mdlocator.Location{Order: f.loc.Order}
	assert.NoError(t, f.validator.CheckWarehouseCeiling(ctx, orderless, 70))
	assert.Error(t, f.validator.CheckWarehouseCeiling(ctx, orderless, 71))
}

func TestOrderWarehouseCeilingAcrossBundles(t *testing.T) {
	f := setup(t, 50, 50)
	ctx := context.Background()
	second := f.env.Bundle(t, f.loc.Order, 2, 50)

	require.NoError(t, f.validator.CheckOrderWarehouseCeiling(ctx, f.loc, 50))
	require.NoError(t, f.env.Warehousing.Create(ctx, &etwarehouse.Record{
		ID: "w1", WarehousingNo: "WH1", RequestID: "wh-1", OrderID: f.loc.Order.ID, OrderNo: f.loc.Order.OrderNo,
		BundleID: f.loc.Bundle.ID, Type: etwarehouse.TypeScan, Quantity: 40, Qualified: 40,
		QualityStatus: etwarehouse.QualityQualified, CreatedAt: time.Now(),
	}))

	other := &mdlocator.Location{Order: f.loc.Order, Bundle: second}
	require.NoError(t, f.validator.CheckOrderWarehouseCeiling(ctx, other, 10))
	err := f.validator.CheckOrderWarehouseCeiling(ctx, other, 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrQuantityExceeded))
	be, ok := errorx.As(err)
	require.True(t, ok)
	assert.Contains(t, be.Details, errorx.ErrorDetail{Path: "remaining", Info: "10"})

	// 无菲号时由订单维度的入库上限负责
	assert.NoError(t, f.validator.CheckOrderWarehouseCeiling(ctx, &mdlocator.Location{Order: f.loc.Order}, 100))
}

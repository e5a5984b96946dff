package mdwarehouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/domains/modules/mdledger"
	"fzscan/internal/app/domains/modules/mdlocator"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/modules/mdvalidate"
	"fzscan/internal/app/domains/testkit"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/internal/app/pkg/idgen"
	"fzscan/pkg/logger"
)

var alice = etoperator.Operator{ID: "u-1", Name: "张三"}

type fixture struct {
	env       *testkit.Env
	ledger    *mdledger.LedgerModule
	warehouse *WarehouseModule
	loc       *mdlocator.Location
}

func setup(t *testing.T) *fixture {
	env := testkit.New(t)
	order := env.Order(t, "PO-1", "ST-01", 50)
	bundle := env.Bundle(t, order, 1, 50)
	log := logger.NewNopLogger()
	ledger := mdledger.NewLedgerModule(env.Scans, log)
	validator := mdvalidate.NewValidateModule(env.Scans, env.Warehousing)
	return &fixture{
		env:       env,
		ledger:    ledger,
		warehouse: NewWarehouseModule(ledger, validator, env.Warehousing, idgen.NewNumberGenerator(2), log),
		loc:       &mdlocator.Location{Order: order, Bundle: bundle},
	}
}

func (f *fixture) produce(t *testing.T, process string) {
	key := f.loc.ClaimKey(etscan.ScanTypeProduction, process)
	_, err := f.ledger.RecordScan(context.Background(), key, alice, mdledger.Entry{
		RequestID: "p-" + f.loc.Bundle.ID + "-" + process, OrderID: f.loc.Order.ID, OrderNo: f.loc.Order.OrderNo,
		BundleID: f.loc.Bundle.ID, ProcessName: process, ProgressStage: "sewing", Quantity: 50,
	})
	require.NoError(t, err)
}

func (f *fixture) input(requestID string, qty int) Input {
	return Input{
		Location: f.loc, Table: mdstage.NewTable(nil), Operator: alice,
		RequestID: requestID, ScanCode: f.loc.Bundle.ScanCode, Warehouse: "成品一仓", Quantity: qty,
	}
}

func TestIntakeValidations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	in := f.input("w1", 10)
	in.Warehouse = " "
	_, err := f.warehouse.Intake(ctx, in)
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))

	_, err = f.warehouse.Intake(ctx, f.input("w1", 10))
	assert.True(t, errors.Is(err, errorx.ErrPrerequisiteNotMet))

	f.produce(t, "上领")
	f.produce(t, "包装")

	res, err := f.warehouse.Intake(ctx, f.input("w1", 30))
	require.NoError(t, err)
	assert.Equal(t, 30, res.Warehousing.Qualified)
	assert.Equal(t, etwarehouse.TypeScan, res.Warehousing.Type)
	assert.Equal(t, "warehousing", res.Ledger.Record.ProgressStage)

	_, err = f.warehouse.Intake(ctx, f.input("w2", 21))
	assert.True(t, errors.Is(err, errorx.ErrQuantityExceeded))

	res, err = f.warehouse.Intake(ctx, f.input("w3", 20))
	require.NoError(t, err)
	assert.Equal(t, 30, res.Ledger.Record.Quantity)

	history, err := f.env.Warehousing.ListByBundle(ctx, f.loc.Bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, history.QualifiedTotal())
}

func TestIntakeBlockedByPendingRepair(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.produce(t, "上领")
	f.produce(t, "包装")

	require.NoError(t, f.env.Warehousing.Create(ctx, &etwarehouse.Record{
		ID: "q1", WarehousingNo: "QC1", OrderID: "PO-1", OrderNo: f.loc.Order.OrderNo, BundleID: f.loc.Bundle.ID,
		Type: etwarehouse.TypeQualityScan, Outcome: etwarehouse.OutcomeUnqualified, Quantity: 5, Unqualified: 5,
		QualityStatus: etwarehouse.QualityUnqualified, DefectCategory: "破洞", Disposition: etwarehouse.DispositionRepair,
		CreatedAt: time.Now().Add(-time.Minute),
	}))

	_, err := f.warehouse.Intake(ctx, f.input("w1", 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &errorx.BusinessError{Kind: errorx.KindIllegalState, Code: errorx.CodePendingRepair}))
}

func TestRollback(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.produce(t, "包装")

	_, err := f.warehouse.Intake(ctx, f.input("w1", 10))
	require.NoError(t, err)

	n, err := f.warehouse.Rollback(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	history, err := f.env.Warehousing.ListByBundle(ctx, f.loc.Bundle.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestIntakeRetryOfEarlierRequest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.produce(t, "包装")

	_, err := f.warehouse.Intake(ctx, f.input("w1", 20))
	require.NoError(t, err)
	_, err = f.warehouse.Intake(ctx, f.input("w2", 10))
	require.NoError(t, err)

	res, err := f.warehouse.Intake(ctx, f.input("w1", 20))
	require.NoError(t, err)
	assert.True(t, res.Ledger.Duplicate())
	assert.Nil(t, res.Warehousing)

	history, err := f.env.Warehousing.ListByBundle(ctx, f.loc.Bundle.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 30, history.QualifiedTotal())

	// 回滚覆盖该领取键下全部令牌
	n, err := f.warehouse.Rollback(ctx, "w1", "w2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestIntakeOrderCeilingAcrossBundles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.loc
	second := &mdlocator.Location{Order: f.loc.Order, Bundle: f.env.Bundle(t, f.loc.Order, 2, 50)}

	for _, loc := range []*mdlocator.Location{first, second} {
		f.loc = loc
		f.produce(t, "上领")
		f.produce(t, "包装")
	}

	f.loc = first
	_, err := f.warehouse.Intake(ctx, f.input("w1", 50))
	require.NoError(t, err)

	f.loc = second
	_, err = f.warehouse.Intake(ctx, f.input("w2", 50))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrQuantityExceeded))

	history, err := f.env.Warehousing.ListByOrder(ctx, f.loc.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, history.QualifiedTotal())
}

package mdledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/testkit"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/pkg/logger"
)

var (
	alice = etoperator.Operator{ID: "u-1", Name: "张三"}
	bob   = etoperator.Operator{ID: "u-2", Name: "李四"}
)

func sewingKey() etscan.ClaimKey {
	return etscan.NewClaimKey("B-1", "PO-1", etscan.ScanTypeProduction, "上领")
}

func entry(requestID string, qty int) Entry {
	return Entry{
		RequestID:     requestID,
		ScanCode:      "NO-PO-1-1",
		OrderID:       "PO-1",
		OrderNo:       "NO-PO-1",
		StyleNo:       "ST-01",
		BundleID:      "B-1",
		ProcessName:   "上领",
		ProgressStage: "sewing",
		Quantity:      qty,
		UnitPrice:     decimal.RequireFromString("1.20"),
	}
}

func newLedger(t *testing.T) (*LedgerModule, rpscan.ScanRecordRepository) {
	env := testkit.New(t)
	return NewLedgerModule(env.Scans, logger.NewNopLogger()), env.Scans
}

func TestRecordScanKeepsMaxQuantity(t *testing.T) {
	ledger, repo := newLedger(t)
	ctx := context.Background()

	res, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 30))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)

	res, err = ledger.RecordScan(ctx, sewingKey(), alice, entry("r2", 20))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, 30, res.Record.Quantity)

	res, err = ledger.RecordScan(ctx, sewingKey(), alice, entry("r3", 45))
	require.NoError(t, err)
	assert.Equal(t, 45, res.Record.Quantity)
	assert.Equal(t, "54", res.Record.TotalAmount.String())

	recs, err := repo.ListByUnit(ctx, "B-1", etscan.ScanTypeProduction)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 45, recs[0].Quantity)
	assert.Equal(t, "r3", recs[0].RequestID)
}

func TestRecordScanClaimExclusivity(t *testing.T) {
	ledger, _ := newLedger(t)
	ctx := context.Background()

	_, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 10))
	require.NoError(t, err)

	_, err = ledger.RecordScan(ctx, sewingKey(), bob, entry("r2", 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrConflict))
	be, ok := errorx.As(err)
	require.True(t, ok)
	assert.Equal(t, errorx.CodeClaimed, be.Code)
	assert.Contains(t, be.Message, "张三")

	res, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r3", 12))
	require.NoError(t, err)
	assert.Equal(t, 12, res.Record.Quantity)
}

func TestRecordScanRequestIDShortCircuit(t *testing.T) {
	ledger, _ := newLedger(t)
	ctx := context.Background()

	_, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("same", 10))
	require.NoError(t, err)

	// 重复令牌即使换了操作人和数量也直接返回原记录
	res, err := ledger.RecordScan(ctx, sewingKey(), bob, entry("same", 40))
	require.NoError(t, err)
	assert.True(t, res.Duplicate())
	assert.Equal(t, 10, res.Record.Quantity)
	assert.Equal(t, alice.ID, res.Record.OperatorID)
}

func TestRecordScanRetryOfEarlierToken(t *testing.T) {
	ledger, _ := newLedger(t)
	ctx := context.Background()

	_, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 20))
	require.NoError(t, err)
	res, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r2", 30))
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, res.Outcome)

	// r1 被 r2 续扫覆盖后重试，仍识别为重复
	res, err = ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 20))
	require.NoError(t, err)
	assert.True(t, res.Duplicate())
	assert.Equal(t, 30, res.Record.Quantity)

	replay, err := ledger.Replay(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.True(t, replay.Duplicate())

	ids, err := ledger.RequestIDs(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, ids)
}

func TestRecordScanDistinctKeysDoNotInterfere(t *testing.T) {
	ledger, _ := newLedger(t)
	ctx := context.Background()

	_, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 10))
	require.NoError(t, err)

	other := etscan.NewClaimKey("B-1", "PO-1", etscan.ScanTypeProduction, "上袖")
	e := entry("r2", 10)
	e.ProcessName = "上袖"
	res, err := ledger.RecordScan(ctx, other, bob, e)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
}

// racingRepo 在第一次 Create 前插入一条竞争记录，模拟并发首写
type racingRepo struct {
	rpscan.ScanRecordRepository
	once   sync.Once
	before func()
}

func (r *racingRepo) Create(ctx context.Context, rec *etscan.ScanRecord) error {
	r.once.Do(r.before)
	return r.ScanRecordRepository.Create(ctx, rec)
}

func competitor(op etoperator.Operator, qty int) *etscan.ScanRecord {
	key := sewingKey()
	now := time.Now()
	rec := &etscan.ScanRecord{
		ID: "rival", RequestID: "rival-req", OrderID: "PO-1", OrderNo: "NO-PO-1", BundleID: "B-1",
		UnitKey: key.UnitKey, ScanType: key.ScanType, ProcessCode: key.ProcessCode, ProcessName: "上领",
		Result: etscan.ResultSuccess, ScanTime: now, CreatedAt: now, UpdatedAt: now,
	}
	rec.SetOperator(op)
	rec.SetPricing(decimal.RequireFromString("1.20"), qty)
	return rec
}

func TestRecordScanCreateRaceFallsBackToUpdate(t *testing.T) {
	env := testkit.New(t)
	ctx := context.Background()
	repo := &racingRepo{ScanRecordRepository: env.Scans}
	repo.before = func() { require.NoError(t, env.Scans.Create(ctx, competitor(alice, 10))) }
	ledger := NewLedgerModule(repo, logger.NewNopLogger())

	res, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 25))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, 25, res.Record.Quantity)
	assert.Equal(t, "rival", res.Record.ID)
}

func TestRecordScanCreateRaceLostToOtherOperator(t *testing.T) {
	env := testkit.New(t)
	ctx := context.Background()
	repo := &racingRepo{ScanRecordRepository: env.Scans}
	repo.before = func() { require.NoError(t, env.Scans.Create(ctx, competitor(bob, 10))) }
	ledger := NewLedgerModule(repo, logger.NewNopLogger())

	_, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 25))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrConflict))
	assert.Contains(t, err.Error(), "李四")
}

func TestVoidThenReclaim(t *testing.T) {
	ledger, _ := newLedger(t)
	ctx := context.Background()

	res, err := ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 10))
	require.NoError(t, err)

	err = ledger.Void(ctx, res.Record, bob, "撤销")
	assert.True(t, errors.Is(err, errorx.ErrConflict))

	require.NoError(t, ledger.Void(ctx, res.Record, alice, "撤销"))
	assert.True(t, errors.Is(ledger.Void(ctx, res.Record, alice, "撤销"), errorx.ErrIllegalState))

	active, err := ledger.FindByClaimKey(ctx, sewingKey())
	require.NoError(t, err)
	assert.Nil(t, active)

	res, err = ledger.RecordScan(ctx, sewingKey(), bob, entry("r2", 8))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, bob.ID, res.Record.OperatorID)
	assert.Equal(t, 8, res.Record.Quantity)
}

func TestRecordScanRejectsBadInput(t *testing.T) {
	ledger, _ := newLedger(t)
	ctx := context.Background()

	_, err := ledger.RecordScan(ctx, sewingKey(), etoperator.Operator{}, entry("r1", 1))
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))

	_, err = ledger.RecordScan(ctx, sewingKey(), alice, entry("r1", 0))
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))

	e := entry("r1", 1)
	e.Remark = string(make([]rune, 300))
	_, err = ledger.RecordScan(ctx, sewingKey(), alice, e)
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}

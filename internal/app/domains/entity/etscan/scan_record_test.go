package etscan

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etoperator"
)

func TestComputeTotalRoundsHalfUp(t *testing.T) {
	assert.Equal(t, "0.05", ComputeTotal(decimal.RequireFromString("0.005"), 10).StringFixed(2))
	assert.Equal(t, "12.35", ComputeTotal(decimal.RequireFromString("0.2470"), 50).StringFixed(2))
	assert.Equal(t, "0.13", ComputeTotal(decimal.RequireFromString("0.125"), 1).StringFixed(2))
}

func TestNewClaimKeyOrderless(t *testing.T) {
	k := NewClaimKey("", "PO-1", ScanTypeWarehouse, ProcessWarehouse)
	assert.Equal(t, "order:PO-1", k.UnitKey)
	require.NoError(t, k.Validate())

	b := NewClaimKey("B-1", "PO-1", ScanTypeProduction, "上领")
	assert.Equal(t, "B-1", b.UnitKey)
	assert.Equal(t, "B-1/production/上领", b.String())

	assert.ErrorIs(t, NewClaimKey("B-1", "PO-1", "cutting", "x").Validate(), ErrInvalidScanType)
	assert.ErrorIs(t, NewClaimKey("B-1", "PO-1", ScanTypeProduction, "").Validate(), ErrEmptyProcessCode)
}

func TestRecordValidate(t *testing.T) {
	r := &ScanRecord{
		RequestID:   "req-1",
		UnitKey:     "B-1",
		ScanType:    ScanTypeProduction,
		ProcessCode: "上领",
		ProcessName: "上领",
		Quantity:    10,
	}
	require.NoError(t, r.Validate())

	r.Remark = strings.Repeat("备", MaxRemarkLen+1)
	assert.Error(t, r.Validate())

	r.Remark = ""
	r.Quantity = 0
	assert.ErrorIs(t, r.Validate(), ErrInvalidQuantity)
}

func TestSettersAndOwnership(t *testing.T) {
	r := &ScanRecord{}
	op := etoperator.Operator{ID: "op-1", Name: "张三"}
	r.SetOperator(op)
	r.SetPricing(decimal.RequireFromString("1.25"), 4)

	assert.True(t, r.HeldBy(op))
	assert.False(t, r.HeldBy(etoperator.Operator{ID: "op-2", Name: "李四"}))
	assert.Equal(t, "5.00", r.TotalAmount.StringFixed(2))
}

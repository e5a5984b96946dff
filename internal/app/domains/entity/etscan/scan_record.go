package etscan

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"fzscan/internal/app/domains/entity/etoperator"
)

var (
	ErrEmptyUnitKey     = errors.New("claim unit key cannot be empty")
	ErrEmptyProcessCode = errors.New("process code cannot be empty")
	ErrInvalidScanType  = errors.New("invalid scan type")
	ErrInvalidQuantity  = errors.New("scan quantity must be positive")
)

// 字段长度上限（与表结构一致）
const (
	MaxRequestIDLen = 64
	MaxScanCodeLen  = 200
	MaxProcessLen   = 100
	MaxRemarkLen    = 255
)

// ScanType 扫码类别
type ScanType string

const (
	ScanTypeProduction ScanType = "production"
	ScanTypeQuality    ScanType = "quality"
	ScanTypeWarehouse  ScanType = "warehouse"
)

// Valid 是否合法类别
func (t ScanType) Valid() bool {
	switch t {
	case ScanTypeProduction, ScanTypeQuality, ScanTypeWarehouse:
		return true
	}
	return false
}

// Result 扫码结果
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// 质检、入库使用的固定子工序编码
const (
	ProcessQualityReceive = "quality_receive"
	ProcessQualityInspect = "quality_inspect"
	ProcessQualityConfirm = "quality_confirm"
	ProcessWarehouse      = "warehouse"
)

// orderUnitPrefix 无菲号模式下以订单作为领取单元
const orderUnitPrefix = "order:"

// ClaimKey 领取键：(菲号或订单, 扫码类别, 子工序)
type ClaimKey struct {
	UnitKey     string
	ScanType    ScanType
	ProcessCode string
}

// UnitKeyFor 领取单元：菲号 ID，无菲号时为 order:<订单ID>
func UnitKeyFor(bundleID, orderID string) string {
	if bundleID != "" {
		return bundleID
	}
	return orderUnitPrefix + orderID
}

// NewClaimKey 构造领取键，bundleID 为空时落到订单
func NewClaimKey(bundleID, orderID string, scanType ScanType, processCode string) ClaimKey {
	return ClaimKey{UnitKey: UnitKeyFor(bundleID, orderID), ScanType: scanType, ProcessCode: processCode}
}

// Validate 校验领取键
func (k ClaimKey) Validate() error {
	if k.UnitKey == "" {
		return ErrEmptyUnitKey
	}
	if !k.ScanType.Valid() {
		return ErrInvalidScanType
	}
	if k.ProcessCode == "" {
		return ErrEmptyProcessCode
	}
	return nil
}

// String 日志用
func (k ClaimKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.UnitKey, k.ScanType, k.ProcessCode)
}

// ScanRecord 扫码台账记录
type ScanRecord struct {
	ID            string
	RequestID     string // 幂等令牌
	ScanCode      string
	OrderID       string
	OrderNo       string
	StyleNo       string
	BundleID      string // 无菲号模式为空
	UnitKey       string
	ScanType      ScanType
	ProcessCode   string // 子工序编码（领取键的一部分）
	ProcessName   string // 子工序名
	ProgressStage string // 父节点
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalAmount   decimal.Decimal
	OperatorID    string
	OperatorName  string
	Result        Result
	Remark        string
	ScanTime      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key 领取键
func (r *ScanRecord) Key() ClaimKey {
	return ClaimKey{UnitKey: r.UnitKey, ScanType: r.ScanType, ProcessCode: r.ProcessCode}
}

// IsSuccess 是否有效记录
func (r *ScanRecord) IsSuccess() bool {
	return r.Result == ResultSuccess
}

// Orderless 是否无菲号记录
func (r *ScanRecord) Orderless() bool {
	return r.BundleID == ""
}

// HeldBy 是否由该操作人领取
func (r *ScanRecord) HeldBy(op etoperator.Operator) bool {
	return op.Same(r.OperatorID)
}

// SetOperator 写入操作人
func (r *ScanRecord) SetOperator(op etoperator.Operator) {
	r.OperatorID = op.ID
	r.OperatorName = op.Name
}

// SetPricing 写入单价与数量，并重算金额
func (r *ScanRecord) SetPricing(price decimal.Decimal, quantity int) {
	r.UnitPrice = price
	r.Quantity = quantity
	r.TotalAmount = ComputeTotal(price, quantity)
}

// Validate 校验必填字段与长度
func (r *ScanRecord) Validate() error {
	if err := r.Key().Validate(); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	checks := []struct {
		name  string
		value string
		max   int
	}{
		{"request_id", r.RequestID, MaxRequestIDLen},
		{"scan_code", r.ScanCode, MaxScanCodeLen},
		{"process_code", r.ProcessCode, MaxProcessLen},
		{"process_name", r.ProcessName, MaxProcessLen},
		{"progress_stage", r.ProgressStage, MaxProcessLen},
		{"remark", r.Remark, MaxRemarkLen},
	}
	for _, c := range checks {
		if utf8.RuneCountInString(c.value) > c.max {
			return fmt.Errorf("%s too long (max %d)", c.name, c.max)
		}
	}
	return nil
}

// ComputeTotal 金额 = 单价 × 数量，保留两位（四舍五入）
func ComputeTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

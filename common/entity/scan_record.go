package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanRecord 扫码台账
// uk_scan_claim 保证同一领取键只有一条记录，是领取锁的落点
type ScanRecord struct {
	ID            string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	RequestID     string          `gorm:"column:request_id;type:varchar(64);not null;uniqueIndex:uk_request_id"`
	ScanCode      string          `gorm:"column:scan_code;type:varchar(200)"`
	OrderID       string          `gorm:"column:order_id;type:varchar(64);not null;index:idx_scan_order"`
	OrderNo       string          `gorm:"column:order_no;type:varchar(64);not null"`
	StyleNo       string          `gorm:"column:style_no;type:varchar(64)"`
	BundleID      string          `gorm:"column:cutting_bundle_id;type:varchar(64);not null;default:'';index:idx_scan_bundle"`
	UnitKey       string          `gorm:"column:unit_key;type:varchar(80);not null;uniqueIndex:uk_scan_claim,priority:1"`
	ScanType      string          `gorm:"column:scan_type;type:varchar(16);not null;uniqueIndex:uk_scan_claim,priority:2"`
	ProcessCode   string          `gorm:"column:process_code;type:varchar(100);not null;uniqueIndex:uk_scan_claim,priority:3"`
	ProcessName   string          `gorm:"column:process_name;type:varchar(100)"`
	ProgressStage string          `gorm:"column:progress_stage;type:varchar(100)"`
	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null"`
	OperatorID    string          `gorm:"column:operator_id;type:varchar(64);not null"`
	OperatorName  string          `gorm:"column:operator_name;type:varchar(64);not null"`
	ScanResult    string          `gorm:"column:scan_result;type:varchar(16);not null;default:'success'"`
	Remark        string          `gorm:"column:remark;type:varchar(255)"`
	ScanTime      time.Time       `gorm:"column:scan_time;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (ScanRecord) TableName() string {
	return "t_scan_record"
}

// 扫码结果常量
const (
	ScanResultSuccess = "success"
	ScanResultFailure = "failure"
)

// ScanRequest 扫码请求日志
// 每个幂等令牌一行，指向其写入的台账记录；续扫、重新领取不会覆盖早先的令牌
type ScanRequest struct {
	RequestID    string    `gorm:"column:request_id;primaryKey;type:varchar(64)"`
	ScanRecordID string    `gorm:"column:scan_record_id;type:varchar(64);not null;index:idx_request_record"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (ScanRequest) TableName() string {
	return "t_scan_request"
}

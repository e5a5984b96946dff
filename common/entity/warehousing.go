package entity

import (
	"time"

	"gorm.io/gorm"
)

// ProductWarehousing 成品入库记录（撤销时软删除）
type ProductWarehousing struct {
	ID                  string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	WarehousingNo       string         `gorm:"column:warehousing_no;type:varchar(64);not null;uniqueIndex:uk_warehousing_no"`
	RequestID           string         `gorm:"column:request_id;type:varchar(64);index:idx_wh_request"`
	OrderID             string         `gorm:"column:order_id;type:varchar(64);not null;index:idx_wh_order"`
	OrderNo             string         `gorm:"column:order_no;type:varchar(64);not null"`
	BundleID            string         `gorm:"column:cutting_bundle_id;type:varchar(64);not null;default:'';index:idx_wh_bundle"`
	ScanCode            string         `gorm:"column:scan_code;type:varchar(200)"`
	Warehouse           string         `gorm:"column:warehouse;type:varchar(64)"`
	WarehousingType     string         `gorm:"column:warehousing_type;type:varchar(16);not null"`
	ConfirmOutcome      string         `gorm:"column:confirm_outcome;type:varchar(16)"`
	Quantity            int            `gorm:"column:warehousing_quantity;not null"`
	QualifiedQuantity   int            `gorm:"column:qualified_quantity;not null;default:0"`
	UnqualifiedQuantity int            `gorm:"column:unqualified_quantity;not null;default:0"`
	QualityStatus       string         `gorm:"column:quality_status;type:varchar(16);not null"`
	DefectCategory      string         `gorm:"column:defect_category;type:varchar(64)"`
	DefectRemark        string         `gorm:"column:defect_remark;type:varchar(255)"`
	RepairStatus        string         `gorm:"column:repair_status;type:varchar(16)"`
	RepairRemark        string         `gorm:"column:repair_remark;type:varchar(255)"`
	OperatorID          string         `gorm:"column:operator_id;type:varchar(64)"`
	OperatorName        string         `gorm:"column:operator_name;type:varchar(64)"`
	CreatedAt           time.Time      `gorm:"column:created_at;not null;index:idx_wh_created"`
	DeletedAt           gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName 指定表名
func (ProductWarehousing) TableName() string {
	return "t_product_warehousing"
}

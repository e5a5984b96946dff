package entity

import "time"

// CuttingBundle 裁剪菲号
type CuttingBundle struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderID   string    `gorm:"column:production_order_id;type:varchar(64);not null;index:idx_bundle_order"`
	OrderNo   string    `gorm:"column:production_order_no;type:varchar(64);not null;index:idx_bundle_attr,priority:1"`
	StyleNo   string    `gorm:"column:style_no;type:varchar(64)"`
	BundleNo  int       `gorm:"column:bundle_no;not null"`
	Color     string    `gorm:"column:color;type:varchar(64);index:idx_bundle_attr,priority:2"`
	Size      string    `gorm:"column:size;type:varchar(32);index:idx_bundle_attr,priority:3"`
	Quantity  int       `gorm:"column:quantity;not null"`
	QrCode    string    `gorm:"column:qr_code;type:varchar(200);not null;uniqueIndex:uk_qr_code"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (CuttingBundle) TableName() string {
	return "cutting_bundles"
}

package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ProductionOrder 生产订单
type ProductionOrder struct {
	ID                  string `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderNo             string `gorm:"column:order_no;type:varchar(64);not null;uniqueIndex:uk_order_no"`
	StyleNo             string `gorm:"column:style_no;type:varchar(64);not null;index:idx_style_no"`
	Quantity            int    `gorm:"column:order_quantity;not null"`
	Status              string `gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	ProgressPercent     int    `gorm:"column:production_progress;not null;default:0"`
	MaterialArrivalRate int    `gorm:"column:material_arrival_rate;not null;default:0"`
	CurrentStage        string `gorm:"column:current_process_name;type:varchar(64)"`

	// 各父节点进度快照
	StageSnapshot datatypes.JSON `gorm:"column:stage_snapshot;type:json"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (ProductionOrder) TableName() string {
	return "production_orders"
}

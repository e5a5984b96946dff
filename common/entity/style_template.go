package entity

import (
	"time"

	"gorm.io/datatypes"
)

// StyleTemplate 款式工序模板（节点列表以 JSON 存储）
type StyleTemplate struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	StyleNo   string         `gorm:"column:style_no;type:varchar(64);not null;uniqueIndex:uk_style_no"`
	Content   datatypes.JSON `gorm:"column:content;type:json;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (StyleTemplate) TableName() string {
	return "t_style_template"
}

// All 需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&ProductionOrder{},
		&CuttingBundle{},
		&ScanRecord{},
		&ScanRequest{},
		&ProductWarehousing{},
		&StyleTemplate{},
	}
}

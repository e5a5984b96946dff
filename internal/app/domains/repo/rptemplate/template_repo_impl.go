package rptemplate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fzscan/common/entity"
	"fzscan/internal/app/domains/entity/ettemplate"
)

// TemplateRepositoryImpl 款式模板仓储实现
type TemplateRepositoryImpl struct {
	db *gorm.DB
}

// NewTemplateRepository 创建模板仓储实例
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &TemplateRepositoryImpl{db: db}
}

// GetByStyleNo 按款号查询
func (r *TemplateRepositoryImpl) GetByStyleNo(ctx context.Context, styleNo string) (*ettemplate.Template, error) {
	var po entity.StyleTemplate
	if err := r.db.WithContext(ctx).Where("style_no = ?", styleNo).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tpl := &ettemplate.Template{StyleNo: po.StyleNo, UpdatedAt: po.UpdatedAt}
	if err := json.Unmarshal(po.Content, &tpl.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal template %s: %w", styleNo, err)
	}
	return tpl, nil
}

// Save 按款号覆盖保存（upsert）
func (r *TemplateRepositoryImpl) Save(ctx context.Context, tpl *ettemplate.Template) error {
	content, err := json.Marshal(tpl.Nodes)
	if err != nil {
		return fmt.Errorf("marshal template %s: %w", tpl.StyleNo, err)
	}

	now := time.Now()
	po := &entity.StyleTemplate{
		StyleNo:   tpl.StyleNo,
		Content:   datatypes.JSON(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "style_no"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(po).Error
}

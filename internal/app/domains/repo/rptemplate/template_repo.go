package rptemplate

import (
	"context"

	"fzscan/internal/app/domains/entity/ettemplate"
)

// TemplateRepository 款式工序模板仓储接口
type TemplateRepository interface {
	// GetByStyleNo 不存在返回 nil, nil
	GetByStyleNo(ctx context.Context, styleNo string) (*ettemplate.Template, error)

	// Save 按款号覆盖保存
	Save(ctx context.Context, tpl *ettemplate.Template) error
}

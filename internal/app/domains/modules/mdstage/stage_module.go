package mdstage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/entity/ettemplate"
)

// TemplateSource 款式模板来源
type TemplateSource interface {
	Template(ctx context.Context, styleNo string) (*ettemplate.Template, error)
}

// StageModule 工序解析模块
type StageModule struct {
	source TemplateSource
}

// NewStageModule 创建工序解析模块
func NewStageModule(source TemplateSource) *StageModule {
	return &StageModule{source: source}
}

// Table 构建款式查找表
func (m *StageModule) Table(ctx context.Context, styleNo string) (*Table, error) {
	tpl, err := m.source.Template(ctx, styleNo)
	if err != nil {
		return nil, fmt.Errorf("load template %s failed: %w", styleNo, err)
	}
	return NewTable(tpl), nil
}

// ResolveStages 款式的进度节点
func (m *StageModule) ResolveStages(ctx context.Context, styleNo string) ([]etstage.Stage, error) {
	t, err := m.Table(ctx, styleNo)
	if err != nil {
		return nil, err
	}
	return t.Stages(), nil
}

// ResolvePrices 款式的工序单价
func (m *StageModule) ResolvePrices(ctx context.Context, styleNo string) (map[string]decimal.Decimal, error) {
	t, err := m.Table(ctx, styleNo)
	if err != nil {
		return nil, err
	}
	return t.Prices(), nil
}

// ResolveProcessMap 款式的子工序到父节点映射
func (m *StageModule) ResolveProcessMap(ctx context.Context, styleNo string) (map[string]etstage.Stage, error) {
	t, err := m.Table(ctx, styleNo)
	if err != nil {
		return nil, err
	}
	return t.ProcessMap(), nil
}

package ettemplate

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyStyleNo  = errors.New("style number cannot be empty")
	ErrEmptyNodeName = errors.New("template node name cannot be empty")
)

// Node 款式工序模板节点
type Node struct {
	Name          string          `json:"name" yaml:"name"`                     // 子工序名
	ProgressStage string          `json:"progress_stage" yaml:"progress_stage"` // 声明的父节点
	UnitPrice     decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	Weight        int             `json:"weight,omitempty" yaml:"weight,omitempty"` // 进度权重，0 表示未声明
}

// Template 款式工序模板
type Template struct {
	StyleNo   string `json:"style_no" yaml:"style_no"`
	Nodes     []Node `json:"nodes" yaml:"nodes"`
	UpdatedAt time.Time
}

// NewTemplate 创建模板（工厂方法）
func NewTemplate(styleNo string, nodes []Node) (*Template, error) {
	styleNo = strings.TrimSpace(styleNo)
	if styleNo == "" {
		return nil, ErrEmptyStyleNo
	}
	for _, n := range nodes {
		if strings.TrimSpace(n.Name) == "" {
			return nil, ErrEmptyNodeName
		}
	}
	return &Template{
		StyleNo:   styleNo,
		Nodes:     nodes,
		UpdatedAt: time.Now(),
	}, nil
}

// Empty 是否无工序
func (t *Template) Empty() bool {
	return t == nil || len(t.Nodes) == 0
}

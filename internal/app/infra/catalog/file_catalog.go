package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fzscan/internal/app/domains/entity/ettemplate"
)

// fileDocument 模板文件结构
type fileDocument struct {
	Default struct {
		Nodes []ettemplate.Node `yaml:"nodes"`
	} `yaml:"default"`
	Styles []ettemplate.Template `yaml:"styles"`
}

// FileCatalog 文件模板目录（只读）
type FileCatalog struct {
	fallback *ettemplate.Template
	styles   map[string]*ettemplate.Template
	order    []string
}

// ParseYAML 解析模板文件内容
func ParseYAML(data []byte) (*FileCatalog, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}

	c := &FileCatalog{styles: make(map[string]*ettemplate.Template)}
	if len(doc.Default.Nodes) > 0 {
		c.fallback = &ettemplate.Template{Nodes: doc.Default.Nodes}
	}
	for _, s := range doc.Styles {
		tpl, err := ettemplate.NewTemplate(s.StyleNo, s.Nodes)
		if err != nil {
			return nil, fmt.Errorf("catalog: style %q: %w", s.StyleNo, err)
		}
		if _, dup := c.styles[tpl.StyleNo]; dup {
			return nil, fmt.Errorf("catalog: duplicate style %q", tpl.StyleNo)
		}
		c.styles[tpl.StyleNo] = tpl
		c.order = append(c.order, tpl.StyleNo)
	}
	return c, nil
}

// LoadFile 读取模板文件
func LoadFile(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseYAML(data)
}

// Lookup 按款号取模板，未配置时返回默认模板（可能为 nil）
func (c *FileCatalog) Lookup(styleNo string) *ettemplate.Template {
	if c == nil {
		return nil
	}
	if tpl, ok := c.styles[styleNo]; ok {
		return tpl
	}
	if c.fallback == nil {
		return nil
	}
	return &ettemplate.Template{StyleNo: styleNo, Nodes: c.fallback.Nodes}
}

// Styles 文件中显式配置的款式模板（按文件顺序）
func (c *FileCatalog) Styles() []*ettemplate.Template {
	out := make([]*ettemplate.Template, 0, len(c.order))
	for _, no := range c.order {
		out = append(out, c.styles[no])
	}
	return out
}

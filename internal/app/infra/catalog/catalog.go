package catalog

import (
	"context"

	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/domains/repo/rptemplate"
)

// Catalog 款式模板目录：数据库优先，其次模板文件
type Catalog struct {
	repo rptemplate.TemplateRepository
	file *FileCatalog
}

// NewCatalog 创建模板目录，file 可为 nil
func NewCatalog(repo rptemplate.TemplateRepository, file *FileCatalog) *Catalog {
	return &Catalog{repo: repo, file: file}
}

// Template 取款式模板，均无配置时返回空模板
func (c *Catalog) Template(ctx context.Context, styleNo string) (*ettemplate.Template, error) {
	if c.repo != nil {
		tpl, err := c.repo.GetByStyleNo(ctx, styleNo)
		if err != nil {
			return nil, err
		}
		if !tpl.Empty() {
			return tpl, nil
		}
	}
	if tpl := c.file.Lookup(styleNo); tpl != nil {
		return tpl, nil
	}
	return &ettemplate.Template{StyleNo: styleNo}, nil
}

// Seed 把模板文件中的款式写入数据库
func (c *Catalog) Seed(ctx context.Context) (int, error) {
	if c.file == nil || c.repo == nil {
		return 0, nil
	}
	n := 0
	for _, tpl := range c.file.Styles() {
		if err := c.repo.Save(ctx, tpl); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/repo/rptemplate"
	"fzscan/internal/app/infra/persistence/db/dbtest"
)

const sampleYAML = `
default:
  nodes:
    - name: 裁剪
      progress_stage: 裁剪
      unit_price: "0.50"
    - name: 车缝
      progress_stage: 车缝
      unit_price: "2.00"
styles:
  - style_no: ST-01
    nodes:
      - name: 上领
        progress_stage: 车缝
        unit_price: "1.20"
        weight: 3
      - name: 包装
        progress_stage: 尾部
        unit_price: "0.40"
`

func TestParseYAML(t *testing.T) {
	fc, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	tpl := fc.Lookup("ST-01")
	require.NotNil(t, tpl)
	require.Len(t, tpl.Nodes, 2)
	assert.Equal(t, "1.2", tpl.Nodes[0].UnitPrice.String())
	assert.Equal(t, 3, tpl.Nodes[0].Weight)

	fallback := fc.Lookup("ST-99")
	require.NotNil(t, fallback)
	assert.Equal(t, "ST-99", fallback.StyleNo)
	assert.Len(t, fallback.Nodes, 2)
}

func TestParseYAMLRejectsDuplicateStyle(t *testing.T) {
	_, err := ParseYAML([]byte("styles:\n  - style_no: A\n  - style_no: A\n"))
	assert.Error(t, err)
}

func TestCatalogPrefersDatabase(t *testing.T) {
	fc, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)
	repo := rptemplate.NewTemplateRepository(dbtest.Open(t))
	c := NewCatalog(repo, fc)
	ctx := context.Background()

	// 数据库无记录时走文件
	tpl, err := c.Template(ctx, "ST-01")
	require.NoError(t, err)
	assert.Equal(t, "上领", tpl.Nodes[0].Name)

	n, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := repo.GetByStyleNo(ctx, "ST-01")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Nodes, 2)

	empty, err := NewCatalog(repo, nil).Template(ctx, "ST-404")
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

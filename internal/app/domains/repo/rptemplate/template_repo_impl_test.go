package rptemplate

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/infra/persistence/db/dbtest"
)

func TestTemplateSaveOverwrites(t *testing.T) {
	repo := NewTemplateRepository(dbtest.Open(t))
	ctx := context.Background()

	tpl, err := ettemplate.NewTemplate("ST-01", []ettemplate.Node{
		{Name: "上领", ProgressStage: "车缝", UnitPrice: decimal.RequireFromString("1.20")},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tpl))

	tpl.Nodes = append(tpl.Nodes, ettemplate.Node{Name: "整烫", ProgressStage: "尾部", UnitPrice: decimal.RequireFromString("0.80")})
	require.NoError(t, repo.Save(ctx, tpl))

	got, err := repo.GetByStyleNo(ctx, "ST-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "整烫", got.Nodes[1].Name)
	assert.True(t, decimal.RequireFromString("1.2").Equal(got.Nodes[0].UnitPrice))

	missing, err := repo.GetByStyleNo(ctx, "ST-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

package mdstage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/pkg/errorx"
)

func sampleTemplate() *ettemplate.Template {
	return &ettemplate.Template{
		StyleNo: "ST-01",
		Nodes: []ettemplate.Node{
			{Name: "采购", ProgressStage: "采购"},
			{Name: "裁剪", ProgressStage: "裁剪", UnitPrice: decimal.RequireFromString("0.50")},
			{Name: "上领", ProgressStage: "缝制", UnitPrice: decimal.RequireFromString("1.20")},
			{Name: "上袖", ProgressStage: "车缝", UnitPrice: decimal.RequireFromString("1.10")},
			{Name: "整烫", ProgressStage: "大烫", UnitPrice: decimal.RequireFromString("0.80")},
			{Name: "质检", ProgressStage: "尾部", UnitPrice: decimal.RequireFromString("0.30")},
			{Name: "包装", ProgressStage: "尾部", UnitPrice: decimal.RequireFromString("0.40")},
			{Name: "锁眼", ProgressStage: "特殊工段"},
		},
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sewing", Normalize(" ＳＥＷＩＮＧ "))
	assert.Equal(t, "上领", Normalize("上 领"))
	assert.Equal(t, "qc", Normalize("Ｑ Ｃ"))
}

func TestStagesMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"车缝", "缝制", true},
		{"车缝", "Sewing", true},
		{"入库", "成品入库", true},
		{"上领", "上 领", true},
		{"上领", "上袖", false},
		{"裁剪", "车缝", false},
		{"", "", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StagesMatch(c.a, c.b), "%s vs %s", c.a, c.b)
	}
}

func TestResolve(t *testing.T) {
	table := NewTable(sampleTemplate())

	r := table.Resolve("缝制")
	assert.Equal(t, etstage.StageSewing, r.Stage)
	assert.Equal(t, "缝制", r.Child)
	assert.True(t, r.Mapped)

	r = table.Resolve("上领")
	assert.Equal(t, etstage.StageSewing, r.Stage)
	assert.Equal(t, string(etstage.StageSewing), r.Parent)

	// 声明父节点经同义词归一
	r = table.Resolve("整烫")
	assert.Equal(t, etstage.StageTail, r.Stage)

	// 声明了非固定父节点
	r = table.Resolve("锁眼")
	assert.Equal(t, etstage.Stage(""), r.Stage)
	assert.Equal(t, "特殊工段", r.Parent)
	assert.True(t, r.Mapped)

	// 模板无此工序：自身即父节点
	r = table.Resolve("钉扣")
	assert.False(t, r.Mapped)
	assert.Equal(t, "钉扣", r.Parent)
}

func TestResolveIsDeterministic(t *testing.T) {
	a := NewTable(sampleTemplate()).Resolve("上袖")
	b := NewTable(sampleTemplate()).Resolve("上袖")
	assert.Equal(t, a, b)
}

func TestPrice(t *testing.T) {
	table := NewTable(sampleTemplate())
	assert.Equal(t, "1.2", table.Price("上领").String())
	// 同义匹配
	assert.Equal(t, "0.5", table.Price("裁床").String())
	assert.True(t, table.Price("钉扣").IsZero())
	assert.True(t, NewTable(nil).Price("上领").IsZero())
}

func TestWeights(t *testing.T) {
	equal := NewTable(sampleTemplate()).Weights()
	for _, st := range etstage.Ordered {
		assert.Equal(t, 1, equal[st])
	}

	tpl := sampleTemplate()
	tpl.Nodes[2].Weight = 30
	tpl.Nodes[3].Weight = 20
	tpl.Nodes[1].Weight = 10
	declared := NewTable(tpl).Weights()
	assert.Equal(t, 50, declared[etstage.StageSewing])
	assert.Equal(t, 10, declared[etstage.StageCutting])
	assert.Equal(t, 0, declared[etstage.StageTail])
}

func TestSewingNodes(t *testing.T) {
	nodes := NewTable(sampleTemplate()).SewingNodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "上领", nodes[0].Name)
	assert.Equal(t, "上袖", nodes[1].Name)
}

func TestNextPending(t *testing.T) {
	table := NewTable(sampleTemplate())
	done := map[string]int{"采购": 0, "裁剪": 100, "上领": 100}
	lookup := func(n ettemplate.Node) (int, error) { return done[n.Name], nil }

	node, err := table.NextPending(lookup, 100, true)
	require.NoError(t, err)
	assert.Equal(t, "上袖", node.Name)

	node, err = table.NextPending(lookup, 100, false)
	require.NoError(t, err)
	assert.Equal(t, "采购", node.Name)

	for _, n := range []string{"上袖", "整烫", "包装", "锁眼"} {
		done[n] = 100
	}
	_, err = table.NextPending(lookup, 100, true)
	assert.True(t, errors.Is(err, errorx.ErrIllegalState))

	_, err = NewTable(nil).NextPending(lookup, 100, true)
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}

type staticSource struct{ tpl *ettemplate.Template }

func (s staticSource) Template(context.Context, string) (*ettemplate.Template, error) {
	return s.tpl, nil
}

func TestStageModule(t *testing.T) {
	m := NewStageModule(staticSource{tpl: sampleTemplate()})
	ctx := context.Background()

	stages, err := m.ResolveStages(ctx, "ST-01")
	require.NoError(t, err)
	assert.Equal(t, etstage.Ordered, stages)

	pm, err := m.ResolveProcessMap(ctx, "ST-01")
	require.NoError(t, err)
	assert.Equal(t, etstage.StageSewing, pm["上领"])
	_, ok := pm["锁眼"]
	assert.False(t, ok)

	prices, err := m.ResolvePrices(ctx, "ST-01")
	require.NoError(t, err)
	assert.Equal(t, "0.4", prices["包装"].String())
}

package mdstage

import (
	"strings"

	"github.com/shopspring/decimal"

	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/pkg/errorx"
)

// Resolution 工序解析结果
type Resolution struct {
	Child  string        // 子工序名
	Parent string        // 父节点（固定节点时为节点编码）
	Stage  etstage.Stage // 命中的固定节点，未命中为空
	Mapped bool          // 是否由固定节点或模板映射得到
}

// resolvedNode 模板节点及其归属的固定节点
type resolvedNode struct {
	node  ettemplate.Node
	stage etstage.Stage
}

// Table 款式工序查找表，每个请求按款式构建一次
type Table struct {
	styleNo string
	nodes   []resolvedNode
	byName  map[string]int
}

// NewTable 由模板构建查找表，tpl 可为 nil
func NewTable(tpl *ettemplate.Template) *Table {
	t := &Table{byName: make(map[string]int)}
	if tpl == nil {
		return t
	}
	t.styleNo = tpl.StyleNo
	for _, n := range tpl.Nodes {
		rn := resolvedNode{node: n}
		if st, ok := ParentOf(n.ProgressStage); ok {
			rn.stage = st
		} else if st, ok := MatchFixed(n.Name); ok {
			rn.stage = st
		}
		key := Normalize(n.Name)
		if _, dup := t.byName[key]; !dup {
			t.byName[key] = len(t.nodes)
		}
		t.nodes = append(t.nodes, rn)
	}
	return t
}

// StyleNo 款号
func (t *Table) StyleNo() string {
	return t.styleNo
}

// Empty 模板无工序
func (t *Table) Empty() bool {
	return len(t.nodes) == 0
}

// Resolve 子工序名解析到父节点
func (t *Table) Resolve(processName string) Resolution {
	child := strings.TrimSpace(processName)
	if st, ok := MatchFixed(child); ok {
		return Resolution{Child: child, Parent: string(st), Stage: st, Mapped: true}
	}
	if i, ok := t.byName[Normalize(child)]; ok {
		rn := t.nodes[i]
		if rn.stage != "" {
			return Resolution{Child: child, Parent: string(rn.stage), Stage: rn.stage, Mapped: true}
		}
		declared := strings.TrimSpace(rn.node.ProgressStage)
		if declared != "" {
			return Resolution{Child: child, Parent: declared, Mapped: true}
		}
	}
	return Resolution{Child: child, Parent: child}
}

// Price 工序单价：模板精确匹配，其次同义匹配，否则为零
func (t *Table) Price(processName string) decimal.Decimal {
	if i, ok := t.byName[Normalize(processName)]; ok {
		return t.nodes[i].node.UnitPrice
	}
	for _, rn := range t.nodes {
		if StagesMatch(rn.node.Name, processName) {
			return rn.node.UnitPrice
		}
	}
	return decimal.Zero
}

// Prices 工序名到单价
func (t *Table) Prices() map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(t.nodes))
	for _, rn := range t.nodes {
		prices[rn.node.Name] = rn.node.UnitPrice
	}
	return prices
}

// ProcessMap 子工序名到父节点
func (t *Table) ProcessMap() map[string]etstage.Stage {
	m := make(map[string]etstage.Stage, len(t.nodes))
	for _, rn := range t.nodes {
		if rn.stage != "" {
			m[rn.node.Name] = rn.stage
		}
	}
	return m
}

// Stages 进度节点（始终为完整固定节点列表）
func (t *Table) Stages() []etstage.Stage {
	return etstage.Ordered
}

// Weights 节点权重：模板声明了权重则按节点汇总，否则等权
func (t *Table) Weights() map[etstage.Stage]int {
	weights := make(map[etstage.Stage]int, len(etstage.Ordered))
	declared := 0
	for _, rn := range t.nodes {
		if rn.stage != "" && rn.node.Weight > 0 {
			weights[rn.stage] += rn.node.Weight
			declared += rn.node.Weight
		}
	}
	if declared > 0 {
		return weights
	}
	for _, st := range etstage.Ordered {
		weights[st] = 1
	}
	return weights
}

// NodesOf 归属某固定节点的模板工序
func (t *Table) NodesOf(stage etstage.Stage) []ettemplate.Node {
	var nodes []ettemplate.Node
	for _, rn := range t.nodes {
		if rn.stage == stage {
			nodes = append(nodes, rn.node)
		}
	}
	return nodes
}

// SewingNodes 车缝子工序（质检前置条件）
func (t *Table) SewingNodes() []ettemplate.Node {
	return t.NodesOf(etstage.StageSewing)
}

// NextPending 自动识别下一道工序：按模板顺序取第一道未完成的工序
// 跳过质检、入库类工序；物料齐套时跳过采购
func (t *Table) NextPending(done func(ettemplate.Node) (int, error), target int, materialReady bool) (ettemplate.Node, error) {
	if t.Empty() {
		return ettemplate.Node{}, errorx.InvalidInput("款式未配置工序模板，无法自动识别工序")
	}
	for _, rn := range t.nodes {
		if IsQuality(rn.node.Name) || rn.stage == etstage.StageWarehousing {
			continue
		}
		if materialReady && rn.stage == etstage.StageProcurement {
			continue
		}
		qty, err := done(rn.node)
		if err != nil {
			return ettemplate.Node{}, err
		}
		if qty < target {
			return rn.node, nil
		}
	}
	return ettemplate.Node{}, errorx.IllegalState("所有工序均已完成")
}

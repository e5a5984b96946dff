package mdprogress

import (
	"time"

	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/repo/rpscan"
)

// maxUnfinishedPercent 入库未完成时进度上限
const maxUnfinishedPercent = 99

// Snapshot 进度计算输入
type Snapshot struct {
	Order      *etorder.Order
	Stages     []etstage.Stage
	Weights    map[etstage.Stage]int
	Tallies    []rpscan.StageTally
	CutTotal   int // 菲号裁剪数合计
	Warehoused int // 合格入库数合计
	ComputedAt time.Time
}

// Compute 计算订单进度（纯函数）
// 节点内按菲号取最大值再跨菲号求和，无菲号记录直接累加
func Compute(s Snapshot) *etorder.Progress {
	done := stageTotals(s.Tallies)
	orderQty := s.Order.Quantity

	done[etstage.StageCutting] = max(done[etstage.StageCutting], s.CutTotal)
	done[etstage.StageProcurement] = max(done[etstage.StageProcurement], orderQty*s.Order.MaterialArrivalRate/100)
	done[etstage.StageWarehousing] = max(done[etstage.StageWarehousing], s.Warehoused)

	p := &etorder.Progress{
		OrderID:    s.Order.ID,
		Status:     etorder.StatusPending,
		ComputedAt: s.ComputedAt,
	}
	if len(s.Tallies) > 0 || s.Warehoused > 0 {
		p.Status = etorder.StatusProduction
	}

	totalWeight := 0
	furthest := -1
	for i, st := range s.Stages {
		totalWeight += s.Weights[st]
		if done[st] > 0 {
			furthest = i
		}
		p.Stages = append(p.Stages, etorder.StageProgress{
			Stage:   st,
			Label:   st.Label(),
			Done:    done[st],
			Weight:  s.Weights[st],
			Status:  etstage.StatusFor(done[st], orderQty),
			Percent: stagePercent(done[st], orderQty),
		})
	}
	if furthest < 0 || totalWeight == 0 {
		return p
	}

	reached := 0.0
	for i := 0; i < furthest; i++ {
		reached += float64(p.Stages[i].Weight)
	}
	f := p.Stages[furthest]
	fraction := 1.0
	if orderQty > 0 && f.Done < orderQty {
		fraction = float64(f.Done) / float64(orderQty)
	}
	reached += float64(f.Weight) * fraction

	p.Percent = int(reached * 100 / float64(totalWeight))
	p.CurrentStage = f.Label

	last := p.Stages[len(p.Stages)-1]
	if last.Stage == etstage.StageWarehousing && last.Status == etstage.StatusCompleted {
		p.Percent = 100
		p.Status = etorder.StatusCompleted
	} else if p.Percent > maxUnfinishedPercent {
		p.Percent = maxUnfinishedPercent
	}
	return p
}

// stageTotals 各固定节点完成数量
func stageTotals(tallies []rpscan.StageTally) map[etstage.Stage]int {
	perBundle := make(map[etstage.Stage]map[string]int)
	totals := make(map[etstage.Stage]int)
	for _, t := range tallies {
		st, ok := stageOf(t.ProgressStage)
		if !ok {
			continue
		}
		if t.BundleID == "" {
			totals[st] += t.Quantity
			continue
		}
		if perBundle[st] == nil {
			perBundle[st] = make(map[string]int)
		}
		if t.Quantity > perBundle[st][t.BundleID] {
			perBundle[st][t.BundleID] = t.Quantity
		}
	}
	for st, bundles := range perBundle {
		for _, qty := range bundles {
			totals[st] += qty
		}
	}
	return totals
}

// stageOf 台账父节点映射到固定节点
func stageOf(progressStage string) (etstage.Stage, bool) {
	if st := etstage.Stage(progressStage); st.IsFixed() {
		return st, true
	}
	return mdstage.ParentOf(progressStage)
}

func stagePercent(done, orderQty int) int {
	if orderQty <= 0 || done <= 0 {
		return 0
	}
	if done >= orderQty {
		return 100
	}
	return done * 100 / orderQty
}

package etwarehouse

import (
	"time"

	"fzscan/internal/app/domains/entity/etoperator"
)

// QualityStatus 质检结论
type QualityStatus string

const (
	QualityQualified   QualityStatus = "qualified"
	QualityUnqualified QualityStatus = "unqualified"
)

// Outcome 质检确认结果
type Outcome string

const (
	OutcomeQualified   Outcome = "qualified"
	OutcomeUnqualified Outcome = "unqualified"
	OutcomeRepaired    Outcome = "repaired"
)

// Valid 是否合法结果
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeQualified, OutcomeUnqualified, OutcomeRepaired:
		return true
	}
	return false
}

// Disposition 次品处理方式
type Disposition string

const (
	DispositionNone   Disposition = ""
	DispositionRepair Disposition = "repair"
	DispositionScrap  Disposition = "scrap"
)

// Valid 是否合法处理方式
func (d Disposition) Valid() bool {
	return d == DispositionRepair || d == DispositionScrap
}

// Type 入库来源
type Type string

const (
	TypeQualityScan Type = "quality_scan" // 质检确认
	TypeScan        Type = "scan"         // 直接入库扫码
)

// Record 入库记录
type Record struct {
	ID             string
	WarehousingNo  string
	RequestID      string // 产生该记录的扫码请求
	OrderID        string
	OrderNo        string
	BundleID       string
	ScanCode       string
	Warehouse      string
	Type           Type
	Outcome        Outcome
	Quantity       int
	Qualified      int
	Unqualified    int
	QualityStatus  QualityStatus
	DefectCategory string
	DefectRemark   string
	Disposition    Disposition
	RepairRemark   string
	OperatorID     string
	OperatorName   string
	CreatedAt      time.Time
}

// SetOperator 写入操作人
func (r *Record) SetOperator(op etoperator.Operator) {
	r.OperatorID = op.ID
	r.OperatorName = op.Name
}

// PendingRepair 次品待返修
func (r *Record) PendingRepair() bool {
	return r.QualityStatus == QualityUnqualified && r.Disposition == DispositionRepair && r.Unqualified > 0
}

// History 同一菲号（或订单）的入库记录，按创建时间升序
type History []*Record

// QualifiedTotal 累计合格数量
func (h History) QualifiedTotal() int {
	total := 0
	for _, r := range h {
		total += r.Qualified
	}
	return total
}

// Latest 最近一条记录
func (h History) Latest() *Record {
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

// BlockedByRepair 最近一条为待返修次品
func (h History) BlockedByRepair() bool {
	latest := h.Latest()
	return latest != nil && latest.PendingRepair()
}

// HasQualifiedConfirm 已有质检合格确认（返修回补不计）
func (h History) HasQualifiedConfirm() bool {
	for _, r := range h {
		if r.Type == TypeQualityScan && r.Outcome == OutcomeQualified {
			return true
		}
	}
	return false
}

// HasUnresolvedUnqualified 存在之后没有合格或返修记录覆盖的次品确认
func (h History) HasUnresolvedUnqualified() bool {
	unresolved := false
	for _, r := range h {
		switch {
		case r.QualityStatus == QualityUnqualified:
			unresolved = true
		case r.Qualified > 0:
			unresolved = false
		}
	}
	return unresolved
}

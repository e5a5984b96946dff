package mdquality

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/domains/modules/mdledger"
	"fzscan/internal/app/domains/modules/mdlocator"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/modules/mdvalidate"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/internal/app/pkg/idgen"
	"fzscan/pkg/logger"
)

// Phase 质检阶段
type Phase string

const (
	PhaseReceive Phase = "receive"
	PhaseInspect Phase = "inspect"
	PhaseConfirm Phase = "confirm"
)

// qualityProcess 质检计价使用的模板工序名
const qualityProcess = "质检"

// phaseNames 各阶段台账中的子工序名
var phaseNames = map[Phase]string{
	PhaseReceive: "质检领取",
	PhaseInspect: "质检验货",
	PhaseConfirm: "质检确认",
}

// phaseCodes 各阶段领取键中的子工序编码
var phaseCodes = map[Phase]string{
	PhaseReceive: etscan.ProcessQualityReceive,
	PhaseInspect: etscan.ProcessQualityInspect,
	PhaseConfirm: etscan.ProcessQualityConfirm,
}

// ParsePhase 解析阶段，空值视为领取
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PhaseReceive, nil
	case PhaseReceive, PhaseInspect, PhaseConfirm:
		return p, nil
	default:
		return "", errorx.InvalidInput("未知的质检阶段：%s", s)
	}
}

// Input 质检扫码参数
type Input struct {
	Location  *mdlocator.Location
	Table     *mdstage.Table
	Operator  etoperator.Operator
	RequestID string
	ScanCode  string
	Quantity  int
	Remark    string
}

// Confirmation 质检确认结果参数
type Confirmation struct {
	Outcome        etwarehouse.Outcome
	DefectCategory string
	DefectRemark   string
	Disposition    etwarehouse.Disposition
	RepairRemark   string
}

// Result 质检扫码结果
type Result struct {
	Ledger      *mdledger.Result
	Warehousing *etwarehouse.Record
	Clamped     bool // 返修数量被截断到可返修上限
	Quantity    int  // 实际生效数量
}

// QualityModule 质检子流程：领取 → 验货 → 确认
type QualityModule struct {
	ledger    *mdledger.LedgerModule
	validator *mdvalidate.ValidateModule
	whRepo    rpwarehouse.WarehousingRepository
	numbers   *idgen.NumberGenerator
	logger    logger.Logger
	now       func() time.Time
}

// NewQualityModule 创建质检模块
func NewQualityModule(
	ledger *mdledger.LedgerModule,
	validator *mdvalidate.ValidateModule,
	whRepo rpwarehouse.WarehousingRepository,
	numbers *idgen.NumberGenerator,
	log logger.Logger,
) *QualityModule {
	return &QualityModule{
		ledger:    ledger,
		validator: validator,
		whRepo:    whRepo,
		numbers:   numbers,
		logger:    log,
		now:       time.Now,
	}
}

// Receive 质检领取：校验车缝前置工序与菲号、订单上限后写入领取记录
func (m *QualityModule) Receive(ctx context.Context, in Input) (*Result, error) {
	if err := requireBundle(in.Location); err != nil {
		return nil, err
	}
	if err := m.validator.CheckQualityPrerequisite(ctx, in.Location, in.Table); err != nil {
		return nil, err
	}
	key := in.Location.ClaimKey(etscan.ScanTypeQuality, etscan.ProcessQualityReceive)
	if err := m.validator.CheckQuantity(ctx, in.Location, key, in.Quantity); err != nil {
		return nil, err
	}
	return m.record(ctx, in, PhaseReceive, in.Quantity)
}

// Inspect 质检验货：须由领取人本人操作
func (m *QualityModule) Inspect(ctx context.Context, in Input) (*Result, error) {
	if err := requireBundle(in.Location); err != nil {
		return nil, err
	}
	if err := m.requirePhase(ctx, in, PhaseReceive); err != nil {
		return nil, err
	}
	key := in.Location.ClaimKey(etscan.ScanTypeQuality, etscan.ProcessQualityInspect)
	if err := m.validator.CheckUnitCeiling(ctx, in.Location, key, in.Quantity); err != nil {
		return nil, err
	}
	return m.record(ctx, in, PhaseInspect, in.Quantity)
}

// Confirm 质检确认：按结果写入确认记录并生成一条入库记录
func (m *QualityModule) Confirm(ctx context.Context, in Input, c Confirmation) (*Result, error) {
	if err := requireBundle(in.Location); err != nil {
		return nil, err
	}
	dup, err := m.ledger.Replay(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return &Result{Ledger: dup, Quantity: dup.Record.Quantity}, nil
	}
	if err := m.requirePhase(ctx, in, PhaseReceive); err != nil {
		return nil, err
	}
	if err := m.requirePhase(ctx, in, PhaseInspect); err != nil {
		return nil, err
	}

	history, err := m.validator.WarehousingHistory(ctx, in.Location)
	if err != nil {
		return nil, err
	}

	cut := in.Location.CutQuantity()
	qty := in.Quantity
	clamped := false
	wh := &etwarehouse.Record{Type: etwarehouse.TypeQualityScan, Outcome: c.Outcome}

	switch c.Outcome {
	case etwarehouse.OutcomeQualified:
		if history.HasQualifiedConfirm() {
			return nil, errorx.Conflict("该菲号已质检合格确认，不能重复确认").WithCode(errorx.CodeDuplicateConfirm)
		}
		if err := m.validator.CheckWarehouseCeiling(ctx, in.Location, qty); err != nil {
			return nil, err
		}
		wh.Qualified = qty
		wh.QualityStatus = etwarehouse.QualityQualified

	case etwarehouse.OutcomeUnqualified:
		if strings.TrimSpace(c.DefectCategory) == "" {
			return nil, errorx.InvalidInput("次品确认必须填写次品类别")
		}
		if !c.Disposition.Valid() {
			return nil, errorx.InvalidInput("次品处理方式必须为返修或报废")
		}
		if history.HasUnresolvedUnqualified() {
			return nil, errorx.Conflict("该菲号已有未处理的次品确认，不能重复确认").WithCode(errorx.CodeDuplicateConfirm)
		}
		if qty > cut {
			return nil, errorx.QuantityExceeded("次品数量 %d 超过菲号裁剪数 %d", qty, cut)
		}
		wh.Unqualified = qty
		wh.QualityStatus = etwarehouse.QualityUnqualified
		wh.DefectCategory = strings.TrimSpace(c.DefectCategory)
		wh.DefectRemark = c.DefectRemark
		wh.Disposition = c.Disposition

	case etwarehouse.OutcomeRepaired:
		allowance := cut - history.QualifiedTotal()
		if allowance <= 0 {
			return nil, errorx.NoRepairAllowance(cut, history.QualifiedTotal())
		}
		if qty > allowance {
			qty = allowance
			clamped = true
		}
		wh.Qualified = qty
		wh.QualityStatus = etwarehouse.QualityQualified
		wh.RepairRemark = c.RepairRemark

	default:
		return nil, errorx.InvalidInput("质检结果必须为合格、次品或返修")
	}
	if wh.Qualified > 0 {
		if err := m.validator.CheckOrderWarehouseCeiling(ctx, in.Location, wh.Qualified); err != nil {
			return nil, err
		}
	}

	res, err := m.record(ctx, in, PhaseConfirm, qty)
	if err != nil {
		return nil, err
	}
	res.Clamped = clamped
	res.Quantity = qty
	if res.Ledger.Duplicate() {
		return res, nil
	}

	wh.ID = idgen.NewID()
	wh.WarehousingNo = m.numbers.Next(idgen.PrefixQuality)
	wh.RequestID = res.Ledger.Record.RequestID
	wh.OrderID = in.Location.Order.ID
	wh.OrderNo = in.Location.Order.OrderNo
	wh.BundleID = in.Location.BundleID()
	wh.ScanCode = in.ScanCode
	wh.Quantity = qty
	wh.SetOperator(in.Operator)
	wh.CreatedAt = m.now()
	if err := m.whRepo.Create(ctx, wh); err != nil {
		m.logger.Errorf(ctx, "[Quality] create warehousing failed after ledger write: request_id=%s error=%v",
			wh.RequestID, err)
		return nil, fmt.Errorf("create quality warehousing failed: %w", err)
	}
	res.Warehousing = wh

	m.logger.Infof(ctx, "[Quality] confirmed: bundle=%s outcome=%s qty=%d clamped=%v",
		wh.BundleID, c.Outcome, qty, clamped)
	return res, nil
}

// requirePhase 前一阶段须已由本人完成
func (m *QualityModule) requirePhase(ctx context.Context, in Input, phase Phase) error {
	key := in.Location.ClaimKey(etscan.ScanTypeQuality, phaseCodes[phase])
	rec, err := m.ledger.FindByClaimKey(ctx, key)
	if err != nil {
		return err
	}
	if rec == nil {
		return errorx.OutOfOrder("请先完成%s", phaseNames[phase]).WithDetail("phase", string(phase))
	}
	if !rec.HeldBy(in.Operator) {
		return errorx.Conflict("该菲号质检已被「%s」领取", rec.OperatorName).WithCode(errorx.CodeClaimed)
	}
	return nil
}

// record 写入阶段台账记录，质检领取按模板“质检”工序计价
func (m *QualityModule) record(ctx context.Context, in Input, phase Phase, qty int) (*Result, error) {
	entry := mdledger.Entry{
		RequestID:     in.RequestID,
		ScanCode:      in.ScanCode,
		OrderID:       in.Location.Order.ID,
		OrderNo:       in.Location.Order.OrderNo,
		StyleNo:       in.Location.Order.StyleNo,
		BundleID:      in.Location.BundleID(),
		ProcessName:   phaseNames[phase],
		ProgressStage: string(etstage.StageTail),
		Quantity:      qty,
		Remark:        in.Remark,
	}
	if phase == PhaseReceive {
		entry.UnitPrice = in.Table.Price(qualityProcess)
	}

	key := in.Location.ClaimKey(etscan.ScanTypeQuality, phaseCodes[phase])
	lr, err := m.ledger.RecordScan(ctx, key, in.Operator, entry)
	if err != nil {
		return nil, err
	}
	return &Result{Ledger: lr, Quantity: lr.Record.Quantity}, nil
}

func requireBundle(loc *mdlocator.Location) error {
	if loc.Orderless() {
		return errorx.InvalidInput("质检扫码必须扫描菲号")
	}
	return nil
}

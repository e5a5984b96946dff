package svscan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fzscan/internal/app/domains/entity/etbundle"
	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/entity/ettemplate"
	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/domains/modules/mdledger"
	"fzscan/internal/app/domains/modules/mdlocator"
	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/app/domains/modules/mdquality"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/modules/mdvalidate"
	"fzscan/internal/app/domains/modules/mdwarehouse"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/internal/app/pkg/idgen"
	"fzscan/pkg/logger"
)

// scanTypeSewing 旧客户端的车缝扫码类别，等同于生产扫码 + 自动识别工序
const scanTypeSewing = "sewing"

// Command 扫码指令
type Command struct {
	RequestID         string
	ScanType          string
	ScanCode          string
	OrderNo           string
	Color             string
	Size              string
	ProcessName       string
	ProcessCode       string
	AutoProcess       bool
	Quantity          int
	Remark            string
	QualityStage      string
	QualityResult     string
	DefectCategory    string
	DefectRemark      string
	DefectDisposition string
	RepairRemark      string
	Warehouse         string
}

// Result 扫码结果
type Result struct {
	Record      *etscan.ScanRecord
	Order       *etorder.Order
	Bundle      *etbundle.Bundle
	Warehousing *etwarehouse.Record
	Outcome     mdledger.Outcome
	Clamped     bool
	Message     string
}

// Duplicate 幂等令牌命中
func (r *Result) Duplicate() bool {
	return r.Outcome == mdledger.OutcomeDuplicate
}

// ScanService 扫码服务，负责扫码业务编排
type ScanService struct {
	locator    *mdlocator.LocatorModule
	stages     *mdstage.StageModule
	validator  *mdvalidate.ValidateModule
	ledger     *mdledger.LedgerModule
	quality    *mdquality.QualityModule
	warehouse  *mdwarehouse.WarehouseModule
	dispatcher mdprogress.Dispatcher
	logger     logger.Logger
	now        func() time.Time
}

// NewScanService 创建扫码服务实例
func NewScanService(
	locator *mdlocator.LocatorModule,
	stages *mdstage.StageModule,
	validator *mdvalidate.ValidateModule,
	ledger *mdledger.LedgerModule,
	quality *mdquality.QualityModule,
	warehouse *mdwarehouse.WarehouseModule,
	dispatcher mdprogress.Dispatcher,
	log logger.Logger,
) *ScanService {
	return &ScanService{
		locator:    locator,
		stages:     stages,
		validator:  validator,
		ledger:     ledger,
		quality:    quality,
		warehouse:  warehouse,
		dispatcher: dispatcher,
		logger:     log,
		now:        time.Now,
	}
}

// Execute 执行一次扫码（完整业务流程）
// 1. 幂等令牌已存在：直接返回已落库记录
// 2. 定位菲号 / 订单
// 3. 按款式构建工序查找表
// 4. 已完成订单拒绝质检、入库扫码
// 5. 按类别分派：生产 / 质检 / 入库
// 6. 触发进度重算（尽力而为）
func (s *ScanService) Execute(ctx context.Context, op etoperator.Operator, cmd Command) (*Result, error) {
	if err := op.Validate(); err != nil {
		return nil, errorx.InvalidInput("缺少操作人信息")
	}
	scanType, auto, err := parseScanType(cmd.ScanType, cmd.AutoProcess)
	if err != nil {
		return nil, err
	}
	if cmd.Quantity < 0 {
		return nil, errorx.InvalidInput("扫码数量不能为负数")
	}

	cmd.RequestID = strings.TrimSpace(cmd.RequestID)
	if cmd.RequestID != "" {
		rec, err := s.ledger.FindByRequestID(ctx, cmd.RequestID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			s.logger.Infof(ctx, "[Scan] duplicate request ignored: request_id=%s record=%s", cmd.RequestID, rec.ID)
			return s.duplicateResult(ctx, rec)
		}
	} else {
		cmd.RequestID = idgen.NewID()
	}

	loc, err := s.locator.Locate(ctx, mdlocator.LocateInput{
		ScanCode: cmd.ScanCode,
		OrderNo:  cmd.OrderNo,
		Color:    cmd.Color,
		Size:     cmd.Size,
	})
	if err != nil {
		return nil, err
	}
	table, err := s.stages.Table(ctx, loc.Order.StyleNo)
	if err != nil {
		return nil, err
	}

	if scanType != etscan.ScanTypeProduction && loc.Order.IsCompleted() {
		return nil, errorx.IllegalState("订单 %s 已完成，不能继续质检或入库扫码", loc.Order.OrderNo).
			WithCode(errorx.CodeOrderCompleted)
	}

	if cmd.Quantity == 0 && loc.Bundle != nil {
		cmd.Quantity = loc.Bundle.Quantity
	}
	if cmd.Quantity <= 0 {
		return nil, errorx.InvalidInput("扫码数量必须大于 0")
	}
	if strings.TrimSpace(cmd.ScanCode) == "" {
		cmd.ScanCode = scanCodeOf(loc)
	}

	var res *Result
	switch scanType {
	case etscan.ScanTypeProduction:
		res, err = s.production(ctx, op, cmd, loc, table, auto)
	case etscan.ScanTypeQuality:
		res, err = s.qualityScan(ctx, op, cmd, loc, table)
	case etscan.ScanTypeWarehouse:
		res, err = s.warehouseScan(ctx, op, cmd, loc, table)
	}
	if err != nil {
		return nil, err
	}

	res.Order = loc.Order
	res.Bundle = loc.Bundle
	res.Message = message(res)
	if !res.Duplicate() {
		s.dispatcher.Dispatch(ctx, loc.Order.ID)
	}
	return res, nil
}

// production 生产扫码：解析子工序与父节点，校验数量后写台账
func (s *ScanService) production(ctx context.Context, op etoperator.Operator, cmd Command, loc *mdlocator.Location, table *mdstage.Table, auto bool) (*Result, error) {
	name := strings.TrimSpace(cmd.ProcessName)
	code := strings.TrimSpace(cmd.ProcessCode)
	if name == "" {
		name = code
	}

	if auto || name == "" {
		if !auto {
			return nil, errorx.InvalidInput("生产扫码必须指定工序")
		}
		node, err := table.NextPending(func(n ettemplate.Node) (int, error) {
			return s.validator.ProcessedQuantity(ctx, loc, mdstage.Normalize(n.Name))
		}, loc.CutQuantity(), loc.Order.MaterialReady())
		if err != nil {
			return nil, err
		}
		name, code = node.Name, ""
		s.logger.Debugf(ctx, "[Scan] auto detected process: order=%s bundle=%s process=%s",
			loc.Order.OrderNo, loc.BundleID(), name)
	}
	if code == "" {
		code = mdstage.Normalize(name)
	}

	resolution := table.Resolve(name)
	key := loc.ClaimKey(etscan.ScanTypeProduction, code)
	if err := s.validator.CheckQuantity(ctx, loc, key, cmd.Quantity); err != nil {
		return nil, err
	}

	lr, err := s.ledger.RecordScan(ctx, key, op, mdledger.Entry{
		RequestID:     cmd.RequestID,
		ScanCode:      cmd.ScanCode,
		OrderID:       loc.Order.ID,
		OrderNo:       loc.Order.OrderNo,
		StyleNo:       loc.Order.StyleNo,
		BundleID:      loc.BundleID(),
		ProcessName:   resolution.Child,
		ProgressStage: resolution.Parent,
		Quantity:      cmd.Quantity,
		UnitPrice:     table.Price(resolution.Child),
		Remark:        cmd.Remark,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Record: lr.Record, Outcome: lr.Outcome}, nil
}

// qualityScan 质检扫码：按阶段分派
func (s *ScanService) qualityScan(ctx context.Context, op etoperator.Operator, cmd Command, loc *mdlocator.Location, table *mdstage.Table) (*Result, error) {
	phase, err := mdquality.ParsePhase(cmd.QualityStage)
	if err != nil {
		return nil, err
	}
	in := mdquality.Input{
		Location:  loc,
		Table:     table,
		Operator:  op,
		RequestID: cmd.RequestID,
		ScanCode:  cmd.ScanCode,
		Quantity:  cmd.Quantity,
		Remark:    cmd.Remark,
	}

	var qr *mdquality.Result
	switch phase {
	case mdquality.PhaseReceive:
		qr, err = s.quality.Receive(ctx, in)
	case mdquality.PhaseInspect:
		qr, err = s.quality.Inspect(ctx, in)
	default:
		qr, err = s.quality.Confirm(ctx, in, mdquality.Confirmation{
			Outcome:        etwarehouse.Outcome(strings.ToLower(strings.TrimSpace(cmd.QualityResult))),
			DefectCategory: cmd.DefectCategory,
			DefectRemark:   cmd.DefectRemark,
			Disposition:    etwarehouse.Disposition(strings.ToLower(strings.TrimSpace(cmd.DefectDisposition))),
			RepairRemark:   cmd.RepairRemark,
		})
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Record:      qr.Ledger.Record,
		Outcome:     qr.Ledger.Outcome,
		Warehousing: qr.Warehousing,
		Clamped:     qr.Clamped,
	}, nil
}

// warehouseScan 入库扫码
func (s *ScanService) warehouseScan(ctx context.Context, op etoperator.Operator, cmd Command, loc *mdlocator.Location, table *mdstage.Table) (*Result, error) {
	wr, err := s.warehouse.Intake(ctx, mdwarehouse.Input{
		Location:  loc,
		Table:     table,
		Operator:  op,
		RequestID: cmd.RequestID,
		ScanCode:  cmd.ScanCode,
		Warehouse: cmd.Warehouse,
		Quantity:  cmd.Quantity,
		Remark:    cmd.Remark,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Record:      wr.Ledger.Record,
		Outcome:     wr.Ledger.Outcome,
		Warehousing: wr.Warehousing,
	}, nil
}

// duplicateResult 幂等命中时补全订单与菲号信息
func (s *ScanService) duplicateResult(ctx context.Context, rec *etscan.ScanRecord) (*Result, error) {
	order, err := s.locator.GetOrder(ctx, rec.OrderID)
	if err != nil {
		return nil, err
	}
	bundle, err := s.locator.GetBundle(ctx, rec.BundleID)
	if err != nil {
		return nil, err
	}
	res := &Result{Record: rec, Order: order, Bundle: bundle, Outcome: mdledger.OutcomeDuplicate}
	res.Message = message(res)
	return res, nil
}

func parseScanType(raw string, auto bool) (etscan.ScanType, bool, error) {
	switch t := strings.ToLower(strings.TrimSpace(raw)); t {
	case "", string(etscan.ScanTypeProduction):
		return etscan.ScanTypeProduction, auto, nil
	case scanTypeSewing:
		return etscan.ScanTypeProduction, true, nil
	case string(etscan.ScanTypeQuality), string(etscan.ScanTypeWarehouse):
		return etscan.ScanType(t), false, nil
	default:
		return "", false, errorx.InvalidInput("未知的扫码类别：%s", raw)
	}
}

func scanCodeOf(loc *mdlocator.Location) string {
	if loc.Bundle != nil && loc.Bundle.ScanCode != "" {
		return loc.Bundle.ScanCode
	}
	return loc.Order.OrderNo
}

func message(res *Result) string {
	switch {
	case res.Duplicate():
		return "已扫码忽略"
	case res.Clamped && res.Warehousing != nil:
		return fmt.Sprintf("返修数量超过可返修上限，已按 %d 件处理", res.Warehousing.Quantity)
	case res.Outcome == mdledger.OutcomeUpdated:
		return fmt.Sprintf("扫码成功，数量已更新为 %d", res.Record.Quantity)
	default:
		return "扫码成功"
	}
}

package mdwarehouse

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

// Input 入库扫码参数
type Input struct {
	Location  *mdlocator.Location
	Table     *mdstage.Table
	Operator  etoperator.Operator
	RequestID string
	ScanCode  string
	Warehouse string
	Quantity  int
	Remark    string
}

// Result 入库扫码结果
type Result struct {
	Ledger      *mdledger.Result
	Warehousing *etwarehouse.Record
}

// WarehouseModule 成品入库模块
type WarehouseModule struct {
	ledger    *mdledger.LedgerModule
	validator *mdvalidate.ValidateModule
	whRepo    rpwarehouse.WarehousingRepository
	numbers   *idgen.NumberGenerator
	logger    logger.Logger
	now       func() time.Time
}

// NewWarehouseModule 创建入库模块
func NewWarehouseModule(
	ledger *mdledger.LedgerModule,
	validator *mdvalidate.ValidateModule,
	whRepo rpwarehouse.WarehousingRepository,
	numbers *idgen.NumberGenerator,
	log logger.Logger,
) *WarehouseModule {
	return &WarehouseModule{
		ledger:    ledger,
		validator: validator,
		whRepo:    whRepo,
		numbers:   numbers,
		logger:    log,
		now:       time.Now,
	}
}

// Intake 入库扫码
// 0. 幂等令牌已登记：直接返回重复结果，不再生成入库记录
// 1. 仓库必填
// 2. 最近一条入库记录为待返修次品时拒绝
// 3. 前置工序（生产 + 包装）
// 4. 合格入库累计不超过裁剪数，订单内累计不超过订单数
// 5. 写台账并生成入库记录（合格数 = 本次数量）
func (m *WarehouseModule) Intake(ctx context.Context, in Input) (*Result, error) {
	warehouse := strings.TrimSpace(in.Warehouse)
	if warehouse == "" {
		return nil, errorx.InvalidInput("入库必须选择仓库")
	}
	if in.Quantity <= 0 {
		return nil, errorx.InvalidInput("入库数量必须大于 0")
	}
	if dup, err := m.ledger.Replay(ctx, in.RequestID); dup != nil || err != nil {
		if err != nil {
			return nil, err
		}
		return &Result{Ledger: dup}, nil
	}

	history, err := m.validator.WarehousingHistory(ctx, in.Location)
	if err != nil {
		return nil, err
	}
	if !in.Location.Orderless() && history.BlockedByRepair() {
		latest := history.Latest()
		return nil, errorx.IllegalState("该菲号有 %d 件次品待返修，返修完成前不能入库", latest.Unqualified).
			WithCode(errorx.CodePendingRepair)
	}
	if err := m.validator.CheckWarehousePrerequisite(ctx, in.Location); err != nil {
		return nil, err
	}
	if err := m.validator.CheckWarehouseCeiling(ctx, in.Location, in.Quantity); err != nil {
		return nil, err
	}
	key := in.Location.ClaimKey(etscan.ScanTypeWarehouse, etscan.ProcessWarehouse)
	if err := m.validator.CheckOrderCeiling(ctx, in.Location, key, in.Quantity); err != nil {
		return nil, err
	}
	if err := m.validator.CheckOrderWarehouseCeiling(ctx, in.Location, in.Quantity); err != nil {
		return nil, err
	}

	lr, err := m.ledger.RecordScan(ctx, key, in.Operator, mdledger.Entry{
		RequestID:     in.RequestID,
		ScanCode:      in.ScanCode,
		OrderID:       in.Location.Order.ID,
		OrderNo:       in.Location.Order.OrderNo,
		StyleNo:       in.Location.Order.StyleNo,
		BundleID:      in.Location.BundleID(),
		ProcessName:   etstage.StageWarehousing.Label(),
		ProgressStage: string(etstage.StageWarehousing),
		Quantity:      in.Quantity,
		UnitPrice:     in.Table.Price(etstage.StageWarehousing.Label()),
		Remark:        in.Remark,
	})
	if err != nil {
		return nil, err
	}
	if lr.Duplicate() {
		return &Result{Ledger: lr}, nil
	}

	wh := &etwarehouse.Record{
		ID:            idgen.NewID(),
		WarehousingNo: m.numbers.Next(idgen.PrefixWarehousing),
		RequestID:     lr.Record.RequestID,
		OrderID:       in.Location.Order.ID,
		OrderNo:       in.Location.Order.OrderNo,
		BundleID:      in.Location.BundleID(),
		ScanCode:      in.ScanCode,
		Warehouse:     warehouse,
		Type:          etwarehouse.TypeScan,
		Quantity:      in.Quantity,
		Qualified:     in.Quantity,
		QualityStatus: etwarehouse.QualityQualified,
		CreatedAt:     m.now(),
	}
	wh.SetOperator(in.Operator)
	if err := m.whRepo.Create(ctx, wh); err != nil {
		m.logger.Errorf(ctx, "[Warehouse] create warehousing failed after ledger write: request_id=%s error=%v",
			wh.RequestID, err)
		return nil, fmt.Errorf("create warehousing failed: %w", err)
	}

	m.logger.Infof(ctx, "[Warehouse] intake: order=%s bundle=%s warehouse=%s qty=%d",
		wh.OrderNo, wh.BundleID, warehouse, wh.Qualified)
	return &Result{Ledger: lr, Warehousing: wh}, nil
}

// Rollback 撤销这些扫码请求产生的入库记录
func (m *WarehouseModule) Rollback(ctx context.Context, requestIDs ...string) (int64, error) {
	n, err := m.whRepo.DeleteByRequestIDs(ctx, requestIDs)
	if err != nil {
		return 0, fmt.Errorf("rollback warehousing failed: %w", err)
	}
	if n > 0 {
		m.logger.Infof(ctx, "[Warehouse] rolled back %d warehousing record(s): request_ids=%v", n, requestIDs)
	}
	return n, nil
}

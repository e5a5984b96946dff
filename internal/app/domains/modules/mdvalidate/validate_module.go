package mdvalidate

import (
	"context"
	"fmt"

	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/entity/etstage"
	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/domains/modules/mdlocator"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/pkg/errorx"
)

// ValidateModule 扫码校验模块（只读）
type ValidateModule struct {
	scanRepo rpscan.ScanRecordRepository
	whRepo   rpwarehouse.WarehousingRepository
}

// NewValidateModule 创建校验模块
func NewValidateModule(scanRepo rpscan.ScanRecordRepository, whRepo rpwarehouse.WarehousingRepository) *ValidateModule {
	return &ValidateModule{scanRepo: scanRepo, whRepo: whRepo}
}

// CheckQuantity 菲号上限与订单上限
func (m *ValidateModule) CheckQuantity(ctx context.Context, loc *mdlocator.Location, key etscan.ClaimKey, quantity int) error {
	final, err := m.finalQuantity(ctx, key, quantity)
	if err != nil {
		return err
	}
	if err := m.checkUnitCeiling(loc, final); err != nil {
		return err
	}
	return m.checkOrderCeiling(ctx, loc, key, final)
}

// CheckUnitCeiling 同一领取键写入后的数量不超过菲号裁剪数
func (m *ValidateModule) CheckUnitCeiling(ctx context.Context, loc *mdlocator.Location, key etscan.ClaimKey, quantity int) error {
	final, err := m.finalQuantity(ctx, key, quantity)
	if err != nil {
		return err
	}
	return m.checkUnitCeiling(loc, final)
}

// CheckOrderCeiling 子工序在订单内的累计数量不超过订单数量
func (m *ValidateModule) CheckOrderCeiling(ctx context.Context, loc *mdlocator.Location, key etscan.ClaimKey, quantity int) error {
	final, err := m.finalQuantity(ctx, key, quantity)
	if err != nil {
		return err
	}
	return m.checkOrderCeiling(ctx, loc, key, final)
}

// finalQuantity 同一领取键按取大合并后的数量
func (m *ValidateModule) finalQuantity(ctx context.Context, key etscan.ClaimKey, quantity int) (int, error) {
	existing, err := m.scanRepo.FindByClaimKey(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("find scan by claim key failed: %w", err)
	}
	if existing != nil && existing.IsSuccess() && existing.Quantity > quantity {
		return existing.Quantity, nil
	}
	return quantity, nil
}

func (m *ValidateModule) checkUnitCeiling(loc *mdlocator.Location, final int) error {
	if loc.Orderless() {
		return nil
	}
	if final > loc.Bundle.Quantity {
		return errorx.QuantityExceeded("数量 %d 超过菲号裁剪数 %d", final, loc.Bundle.Quantity).
			WithDetail("bundle_quantity", fmt.Sprint(loc.Bundle.Quantity))
	}
	return nil
}

func (m *ValidateModule) checkOrderCeiling(ctx context.Context, loc *mdlocator.Location, key etscan.ClaimKey, final int) error {
	others, err := m.scanRepo.SumQuantity(ctx, rpscan.SumFilter{
		OrderID:        loc.Order.ID,
		ScanType:       key.ScanType,
		ProcessCode:    key.ProcessCode,
		ExcludeUnitKey: key.UnitKey,
	})
	if err != nil {
		return fmt.Errorf("sum order quantity failed: %w", err)
	}
	if others+final > loc.Order.Quantity {
		return errorx.QuantityExceeded("累计数量 %d 超过订单数量 %d", others+final, loc.Order.Quantity).
			WithDetail("order_quantity", fmt.Sprint(loc.Order.Quantity))
	}
	return nil
}

// ProcessedQuantity 子工序已完成数量：菲号取领取键记录，无菲号时汇总订单
func (m *ValidateModule) ProcessedQuantity(ctx context.Context, loc *mdlocator.Location, processCode string) (int, error) {
	if loc.Orderless() {
		total, err := m.scanRepo.SumQuantity(ctx, rpscan.SumFilter{
			OrderID:     loc.Order.ID,
			ScanType:    etscan.ScanTypeProduction,
			ProcessCode: processCode,
		})
		if err != nil {
			return 0, fmt.Errorf("sum processed quantity failed: %w", err)
		}
		return total, nil
	}
	rec, err := m.scanRepo.FindByClaimKey(ctx, loc.ClaimKey(etscan.ScanTypeProduction, processCode))
	if err != nil {
		return 0, fmt.Errorf("find scan by claim key failed: %w", err)
	}
	if rec == nil || !rec.IsSuccess() {
		return 0, nil
	}
	return rec.Quantity, nil
}

// CheckQualityPrerequisite 质检前置：模板中每道车缝子工序都已有带操作人的生产扫码
// 模板未配置车缝子工序时，至少有一条生产扫码
func (m *ValidateModule) CheckQualityPrerequisite(ctx context.Context, loc *mdlocator.Location, table *mdstage.Table) error {
	if loc.Orderless() {
		return nil
	}
	records, err := m.scanRepo.ListByUnit(ctx, loc.UnitKey(), etscan.ScanTypeProduction)
	if err != nil {
		return fmt.Errorf("list production scans failed: %w", err)
	}

	sewing := table.SewingNodes()
	if len(sewing) == 0 {
		if len(records) == 0 {
			return errorx.PrerequisiteNotMet("质检前需先完成生产扫码", []string{etstage.StageSewing.Label()})
		}
		return nil
	}

	var missing []string
	for _, node := range sewing {
		if !attributed(records, node.Name) {
			missing = append(missing, node.Name)
		}
	}
	if len(missing) > 0 {
		return errorx.PrerequisiteNotMet("质检前以下车缝工序尚未扫码", missing)
	}
	return nil
}

// CheckWarehousePrerequisite 入库前置：有生产扫码且包装类工序已扫码
func (m *ValidateModule) CheckWarehousePrerequisite(ctx context.Context, loc *mdlocator.Location) error {
	if loc.Orderless() {
		return nil
	}
	records, err := m.scanRepo.ListByUnit(ctx, loc.UnitKey(), etscan.ScanTypeProduction)
	if err != nil {
		return fmt.Errorf("list production scans failed: %w", err)
	}
	if len(records) == 0 {
		return errorx.PrerequisiteNotMet("入库前需先完成生产扫码", []string{etstage.StageSewing.Label(), "包装"})
	}
	for _, rec := range records {
		if mdstage.IsPackaging(rec.ProcessName) || mdstage.IsPackaging(rec.ProcessCode) {
			return nil
		}
	}
	return errorx.PrerequisiteNotMet("入库前需先完成包装扫码", []string{"包装"})
}

// CheckWarehouseCeiling 累计合格入库数量不超过裁剪数（无菲号时为订单数）
func (m *ValidateModule) CheckWarehouseCeiling(ctx context.Context, loc *mdlocator.Location, quantity int) error {
	history, err := m.WarehousingHistory(ctx, loc)
	if err != nil {
		return err
	}
	qualified := history.QualifiedTotal()
	limit := loc.CutQuantity()
	if qualified+quantity > limit {
		return errorx.QuantityExceeded("入库数量超限：已合格入库 %d，本次 %d，上限 %d", qualified, quantity, limit).
			WithDetail("remaining", fmt.Sprint(max(limit-qualified, 0)))
	}
	return nil
}

// CheckOrderWarehouseCeiling 订单累计合格入库数量不超过订单数量（菲号超裁时生效）
func (m *ValidateModule) CheckOrderWarehouseCeiling(ctx context.Context, loc *mdlocator.Location, quantity int) error {
	if loc.Orderless() {
		return nil
	}
	history, err := m.whRepo.ListByOrder(ctx, loc.Order.ID)
	if err != nil {
		return fmt.Errorf("list order warehousing failed: %w", err)
	}
	qualified := history.QualifiedTotal()
	limit := loc.Order.Quantity
	if qualified+quantity > limit {
		return errorx.QuantityExceeded("订单入库数量超限：已合格入库 %d，本次 %d，订单数量 %d", qualified, quantity, limit).
			WithDetail("order_quantity", fmt.Sprint(limit)).
			WithDetail("remaining", fmt.Sprint(max(limit-qualified, 0)))
	}
	return nil
}

// WarehousingHistory 菲号（无菲号时为订单）的入库记录
func (m *ValidateModule) WarehousingHistory(ctx context.Context, loc *mdlocator.Location) (etwarehouse.History, error) {
	var (
		history etwarehouse.History
		err     error
	)
	if loc.Orderless() {
		history, err = m.whRepo.ListByOrder(ctx, loc.Order.ID)
	} else {
		history, err = m.whRepo.ListByBundle(ctx, loc.Bundle.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list warehousing failed: %w", err)
	}
	return history, nil
}

// attributed 子工序已有带操作人的有效生产扫码
func attributed(records []*etscan.ScanRecord, process string) bool {
	key := mdstage.Normalize(process)
	for _, rec := range records {
		if rec.OperatorID == "" {
			continue
		}
		if mdstage.Normalize(rec.ProcessCode) == key || mdstage.StagesMatch(rec.ProcessName, process) {
			return true
		}
	}
	return false
}

package mdprogress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/modules/mdstage"
	"fzscan/internal/app/domains/repo/rpbundle"
	"fzscan/internal/app/domains/repo/rporder"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/domains/repo/rpwarehouse"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/pkg/logger"
)

// PubSub 进度变更通知通道
type PubSub interface {
	Publish(ctx context.Context, channel string, message string) error
	Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error)
}

// ProgressModule 订单进度聚合模块
type ProgressModule struct {
	orderRepo  rporder.OrderRepository
	bundleRepo rpbundle.BundleRepository
	scanRepo   rpscan.ScanRecordRepository
	whRepo     rpwarehouse.WarehousingRepository
	stages     *mdstage.StageModule
	pubsub     PubSub
	channel    string
	logger     logger.Logger
	now        func() time.Time
}

// NewProgressModule 创建进度模块，pubsub 可为 nil（不发通知）
func NewProgressModule(
	orderRepo rporder.OrderRepository,
	bundleRepo rpbundle.BundleRepository,
	scanRepo rpscan.ScanRecordRepository,
	whRepo rpwarehouse.WarehousingRepository,
	stages *mdstage.StageModule,
	pubsub PubSub,
	channel string,
	log logger.Logger,
) *ProgressModule {
	return &ProgressModule{
		orderRepo:  orderRepo,
		bundleRepo: bundleRepo,
		scanRepo:   scanRepo,
		whRepo:     whRepo,
		stages:     stages,
		pubsub:     pubsub,
		channel:    channel,
		logger:     log,
		now:        time.Now,
	}
}

// Recompute 重算订单进度并回写
func (m *ProgressModule) Recompute(ctx context.Context, orderID string) (*etorder.Progress, error) {
	order, err := m.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	if order == nil {
		return nil, errorx.NotFound("订单不存在：%s", orderID)
	}

	table, err := m.stages.Table(ctx, order.StyleNo)
	if err != nil {
		return nil, err
	}
	tallies, err := m.scanRepo.TallyByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("tally scans failed: %w", err)
	}
	bundles, err := m.bundleRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list bundles failed: %w", err)
	}
	history, err := m.whRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list warehousing failed: %w", err)
	}

	cutTotal := 0
	for _, b := range bundles {
		cutTotal += b.Quantity
	}

	progress := Compute(Snapshot{
		Order:      order,
		Stages:     table.Stages(),
		Weights:    table.Weights(),
		Tallies:    tallies,
		CutTotal:   cutTotal,
		Warehoused: history.QualifiedTotal(),
		ComputedAt: m.now(),
	})
	if err := m.orderRepo.UpdateProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("update order progress failed: %w", err)
	}

	m.logger.Infof(ctx, "[Progress] recomputed: order=%s percent=%d status=%s stage=%s",
		orderID, progress.Percent, progress.Status, progress.CurrentStage)
	return progress, nil
}

// Current 订单当前已回写的进度
func (m *ProgressModule) Current(ctx context.Context, orderID string) (*etorder.Progress, error) {
	order, err := m.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	if order == nil {
		return nil, errorx.NotFound("订单不存在：%s", orderID)
	}
	return &etorder.Progress{
		OrderID:      order.ID,
		Percent:      order.ProgressPercent,
		Status:       order.Status,
		CurrentStage: order.CurrentStage,
		Stages:       order.Stages,
		ComputedAt:   order.UpdatedAt,
	}, nil
}

// ListOrderIDsByStyle 款式下全部订单 ID
func (m *ProgressModule) ListOrderIDsByStyle(ctx context.Context, styleNo string) ([]string, error) {
	orders, err := m.orderRepo.ListByStyle(ctx, styleNo)
	if err != nil {
		return nil, fmt.Errorf("list orders by style failed: %w", err)
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

// Notify 发布进度变更通知（频道约定：<前缀>:<订单ID>）
func (m *ProgressModule) Notify(ctx context.Context, progress *etorder.Progress) error {
	if m.pubsub == nil {
		return nil
	}
	body, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress failed: %w", err)
	}
	return m.pubsub.Publish(ctx, Channel(m.channel, progress.OrderID), string(body))
}

// Wait 等待下一次进度变更通知（Smart Wait）
func (m *ProgressModule) Wait(ctx context.Context, orderID string, timeout time.Duration) (*etorder.Progress, error) {
	if m.pubsub == nil {
		return nil, fmt.Errorf("progress notifications disabled")
	}
	payload, err := m.pubsub.Subscribe(ctx, Channel(m.channel, orderID), timeout)
	if err != nil {
		return nil, err
	}
	var progress etorder.Progress
	if err := json.Unmarshal([]byte(payload), &progress); err != nil {
		return nil, fmt.Errorf("unmarshal progress failed: %w", err)
	}
	return &progress, nil
}

// Channel 进度通知频道名
func Channel(prefix, orderID string) string {
	return prefix + ":" + orderID
}

// Package recompute 订单进度重算任务
package recompute

import (
	"context"
	"errors"
	"time"

	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/internal/sync/framework"
	"fzscan/pkg/errorutil"
	"fzscan/pkg/logger"
)

// Recomputer 进度重算与通知
type Recomputer interface {
	Recompute(ctx context.Context, orderID string) (*etorder.Progress, error)
	Notify(ctx context.Context, progress *etorder.Progress) error
}

// Output 任务处理结果
type Output struct {
	OrderID      string    `json:"order_id"`
	Percent      int       `json:"percent"`
	Status       string    `json:"status"`
	CurrentStage string    `json:"current_stage"`
	ComputedAt   time.Time `json:"computed_at"`
}

// Handler 进度重算 Handler
type Handler struct {
	base     *framework.BaseHandler
	progress Recomputer
	logger   logger.Logger
	payload  mdprogress.RecomputePayload
	result   *etorder.Progress
}

// NewFactory 返回重算 Handler 的构造函数
func NewFactory(progress Recomputer, log logger.Logger) framework.HandlerFactory {
	return func(ctx context.Context, base *framework.BaseHandler) (framework.BusinessHandler, error) {
		h := &Handler{base: base, progress: progress, logger: log}
		if err := base.DecodePayload(&h.payload); err != nil {
			return nil, errorutil.NonRetriable("invalid recompute payload", err)
		}
		if h.payload.OrderID == "" && base.GetMeta() != nil {
			h.payload.OrderID = base.GetMeta().ID
		}
		if h.payload.OrderID == "" {
			return nil, errorutil.NonRetriable("order_id is required", nil)
		}
		return h, nil
	}
}

// Handle 重算并发布通知
func (h *Handler) Handle(ctx context.Context) ([]byte, error) {
	chain := framework.NewPreProcessor(
		framework.Step{Name: "recompute", Run: h.recompute},
		framework.Step{Name: "notify", Run: h.notify},
	)
	if err := chain.Run(ctx); err != nil {
		return nil, err
	}

	return h.base.WrapResponse(ctx, &Output{
		OrderID:      h.result.OrderID,
		Percent:      h.result.Percent,
		Status:       string(h.result.Status),
		CurrentStage: h.result.CurrentStage,
		ComputedAt:   h.result.ComputedAt,
	})
}

func (h *Handler) recompute(ctx context.Context) error {
	progress, err := h.progress.Recompute(ctx, h.payload.OrderID)
	if err != nil {
		// 订单已删除时重投无意义
		if errors.Is(err, errorx.ErrNotFound) {
			return errorutil.NonRetriable("order not found", err)
		}
		return errorutil.Retriable("recompute progress failed", err)
	}
	h.result = progress
	return nil
}

func (h *Handler) notify(ctx context.Context) error {
	if err := h.progress.Notify(ctx, h.result); err != nil {
		h.logger.Warnf(ctx, "[Recompute] notify failed: order=%s error=%v", h.payload.OrderID, err)
	}
	return nil
}

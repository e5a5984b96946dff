package svprogress

import (
	"context"
	"strings"
	"time"

	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/pkg/logger"
)

// StyleSummary 按款式重算结果
type StyleSummary struct {
	StyleNo  string
	Total    int
	Failed   []string
	Progress []*etorder.Progress
}

// ProgressService 订单进度服务
type ProgressService struct {
	module  *mdprogress.ProgressModule
	waitMax time.Duration
	logger  logger.Logger
}

// NewProgressService 创建进度服务实例，waitMax 为 Smart Wait 上限
func NewProgressService(module *mdprogress.ProgressModule, waitMax time.Duration, log logger.Logger) *ProgressService {
	return &ProgressService{module: module, waitMax: waitMax, logger: log}
}

// Get 查询订单进度
// waitSeconds > 0 时先订阅进度变更通知，超时后返回已回写的进度，fresh=false
func (s *ProgressService) Get(ctx context.Context, orderID string, waitSeconds int) (progress *etorder.Progress, fresh bool, err error) {
	current, err := s.module.Current(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if waitSeconds <= 0 {
		return current, true, nil
	}

	timeout := time.Duration(waitSeconds) * time.Second
	if timeout > s.waitMax {
		timeout = s.waitMax
	}
	latest, err := s.module.Wait(ctx, orderID, timeout)
	if err != nil {
		s.logger.Debugf(ctx, "[Progress] wait for progress failed: order=%s error=%v", orderID, err)
		return current, false, nil
	}
	return latest, true, nil
}

// Recompute 立即重算订单进度并发布通知
func (s *ProgressService) Recompute(ctx context.Context, orderID string) (*etorder.Progress, error) {
	progress, err := s.module.Recompute(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.module.Notify(ctx, progress); err != nil {
		// 通知失败只记录日志
		s.logger.Warnf(ctx, "[Progress] notify failed: order=%s error=%v", orderID, err)
	}
	return progress, nil
}

// RecomputeByStyle 重算款式下全部订单，单个订单失败不影响其他订单
func (s *ProgressService) RecomputeByStyle(ctx context.Context, styleNo string) (*StyleSummary, error) {
	styleNo = strings.TrimSpace(styleNo)
	if styleNo == "" {
		return nil, errorx.InvalidInput("款号不能为空")
	}
	ids, err := s.module.ListOrderIDsByStyle(ctx, styleNo)
	if err != nil {
		return nil, err
	}

	summary := &StyleSummary{StyleNo: styleNo, Total: len(ids)}
	for _, id := range ids {
		progress, err := s.Recompute(ctx, id)
		if err != nil {
			s.logger.Errorf(ctx, "[Progress] recompute by style failed: style=%s order=%s error=%v", styleNo, id, err)
			summary.Failed = append(summary.Failed, id)
			continue
		}
		summary.Progress = append(summary.Progress, progress)
	}
	return summary, nil
}

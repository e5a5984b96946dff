package mdprogress

import (
	"context"
	"encoding/json"
	"fmt"

	"fzscan/internal/app/pkg/idgen"
	"fzscan/internal/sync/framework"
	"fzscan/pkg/logger"
)

// ActionRecompute 进度重算任务类型
const ActionRecompute = "order_progress_recompute"

// RecomputePayload 进度重算任务数据
type RecomputePayload struct {
	OrderID string `json:"order_id"`
}

// Dispatcher 扫码成功后触发进度重算（尽力而为，不返回错误）
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string)
}

// JobPublisher 任务投递
type JobPublisher interface {
	PublishJob(queue string, data *framework.JobPayloadData) (string, error)
}

// SyncDispatcher 同步重算
type SyncDispatcher struct {
	module *ProgressModule
	logger logger.Logger
}

// NewSyncDispatcher 创建同步重算触发器
func NewSyncDispatcher(module *ProgressModule, log logger.Logger) *SyncDispatcher {
	return &SyncDispatcher{module: module, logger: log}
}

// Dispatch 重算并发布通知，失败只记录日志
func (d *SyncDispatcher) Dispatch(ctx context.Context, orderID string) {
	progress, err := d.module.Recompute(ctx, orderID)
	if err != nil {
		d.logger.Warnf(ctx, "[Progress] recompute failed: order=%s error=%v", orderID, err)
		return
	}
	if err := d.module.Notify(ctx, progress); err != nil {
		d.logger.Warnf(ctx, "[Progress] notify failed: order=%s error=%v", orderID, err)
	}
}

// QueueDispatcher 投递到队列由 worker 异步重算，投递失败时回退到同步重算
type QueueDispatcher struct {
	publisher JobPublisher
	queue     string
	fallback  Dispatcher
	logger    logger.Logger
}

// NewQueueDispatcher 创建异步重算触发器
func NewQueueDispatcher(publisher JobPublisher, queue string, fallback Dispatcher, log logger.Logger) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher, queue: queue, fallback: fallback, logger: log}
}

// Dispatch 投递重算任务
func (d *QueueDispatcher) Dispatch(ctx context.Context, orderID string) {
	jobID, err := d.publish(ctx, orderID)
	if err == nil {
		d.logger.Debugf(ctx, "[Progress] recompute job published: order=%s job_id=%s", orderID, jobID)
		return
	}

	d.logger.Warnf(ctx, "[Progress] publish recompute job failed, fallback to inline: order=%s error=%v", orderID, err)
	if d.fallback != nil {
		d.fallback.Dispatch(ctx, orderID)
	}
}

func (d *QueueDispatcher) publish(ctx context.Context, orderID string) (string, error) {
	data, err := json.Marshal(RecomputePayload{OrderID: orderID})
	if err != nil {
		return "", fmt.Errorf("marshal payload failed: %w", err)
	}
	requestID := logger.TraceID(ctx)
	if requestID == "" {
		requestID = idgen.NewID()
	}
	return d.publisher.PublishJob(d.queue, &framework.JobPayloadData{
		RequestID:  requestID,
		ActionType: ActionRecompute,
		ID:         orderID,
		Data:       data,
	})
}

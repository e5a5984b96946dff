package domains

import (
	"context"
	"time"

	"github.com/bitleak/lmstfy/client"

	"fzscan/internal/sync/framework"
	"fzscan/pkg/errorutil"
	"fzscan/pkg/lmstfyx"
	"fzscan/pkg/logger"
)

// GetProcess 返回核心处理函数（注入到 Processor）
func GetProcess(log logger.Logger, handlers map[string]framework.HandlerFactory) lmstfyx.Proc {
	return func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		startTime := time.Now()

		// 1. 解析 Job
		base := &framework.BaseHandler{}
		if err := base.ParseJob(ctx, job.Data); err != nil {
			log.Errorf(ctx, "[GetProcess] parse job failed: id=%s error=%v", job.ID, err)
			return lmstfyx.Bury([]byte(err.Error()))
		}
		meta := base.GetMeta()
		if meta.RequestID != "" {
			ctx = logger.WithTraceID(ctx, meta.RequestID)
		}

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, id=%s, job_id=%s",
			meta.ActionType, meta.ID, job.ID)

		// 2. 路由到 Handler
		factory, ok := handlers[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return lmstfyx.Bury(base.WrapErrorResponse(ctx, errorutil.NonRetriable("unknown action_type "+meta.ActionType, nil)))
		}

		handler, err := factory(ctx, base)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] handler creation failed: %v", err)
			return report(ctx, base, err, log)
		}

		// 3. 执行并按错误类型决定 ACK / 重投
		data, err := handler.Handle(ctx)
		if err != nil {
			return report(ctx, base, err, log)
		}

		log.Infof(ctx, "[GetProcess] Processing complete: id=%s, duration=%v", meta.ID, time.Since(startTime))
		return lmstfyx.Success(data)
	}
}

// report 可重试错误不 ACK 等待重投，其余丢弃
func report(ctx context.Context, base *framework.BaseHandler, err error, log logger.Logger) *lmstfyx.JobResp {
	wrapped := errorutil.Wrap(err)
	body := base.WrapErrorResponse(ctx, wrapped)
	if wrapped.Retryable {
		log.Warnf(ctx, "[GetProcess] retryable failure: %v", err)
		return lmstfyx.Release(body)
	}
	log.Errorf(ctx, "[GetProcess] non-retryable failure: %v", err)
	return lmstfyx.Bury(body)
}

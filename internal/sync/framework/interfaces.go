package framework

import (
	"context"
	"time"
)

// MessageSource 任务队列（生产环境为 lmstfy）
type MessageSource interface {
	// Consume 阻塞拉取，超时未拉到返回 nil, nil
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack 删除任务；不 ACK 的任务在 TTR 到期后重新投递
	Ack(queue string, jobID string) error
}

// ProcessorFunc 处理链中的一步
type ProcessorFunc func(ctx context.Context) error

// BusinessHandler 按 action_type 路由到的任务处理器
type BusinessHandler interface {
	Handle(ctx context.Context) ([]byte, error)
}

// HandlerFactory 为每个任务构造 Handler，返回错误时任务直接埋葬
type HandlerFactory func(ctx context.Context, baseHandler *BaseHandler) (BusinessHandler, error)

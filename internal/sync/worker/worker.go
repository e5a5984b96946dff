package worker

import (
	"context"
	"fmt"

	"fzscan/internal/sync/framework"
	"fzscan/pkg/lmstfyx"
	"fzscan/pkg/logger"
)

// Worker 接口
type Worker interface {
	Start() error
	Shutdown()
	GetName() string
}

// WorkerInstance 单队列 Worker：Subscriber 拉取，Processor 处理
type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	shutdownCh chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance 创建 Worker 实例
func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) *WorkerInstance {
	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: framework.NewSubscriber(subscriberCfg, source, log),
		processor:  framework.NewProcessor(processorCfg, proc, source, log),
		inputChan:  make(chan *framework.Message, processorCfg.BufferSize),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
}

// Start 启动 Worker，阻塞到 Shutdown 完成；启动失败立即返回
func (w *WorkerInstance) Start() error {
	// Processor 先于 Subscriber 启动，避免拉到的任务无人处理
	if err := w.processor.Start(w.ctx, w.inputChan); err != nil {
		w.logger.Errorf(w.ctx, "[Worker] %s processor start failed: %v", w.name, err)
		return fmt.Errorf("worker %s: %w", w.name, err)
	}
	if err := w.subscriber.Start(w.ctx, w.inputChan); err != nil {
		w.logger.Errorf(w.ctx, "[Worker] %s subscriber start failed: %v", w.name, err)
		return fmt.Errorf("worker %s: %w", w.name, err)
	}
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	<-w.shutdownCh
	return nil
}

// Shutdown 优雅退出：停止拉取，等待拉取协程退出，再排空缓冲区
func (w *WorkerInstance) Shutdown() {
	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	w.subscriber.Stop()
	w.subscriber.Wait()

	w.processor.SignalShutdown()
	w.processor.Wait()

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}

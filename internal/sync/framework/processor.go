package framework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"

	"fzscan/pkg/lmstfyx"
	"fzscan/pkg/logger"
)

// Processor 处理器：接收消息，调用业务处理函数，按结果 ACK
type Processor struct {
	cfg        *ProcessorConfig
	proc       lmstfyx.Proc
	source     MessageSource
	logger     logger.Logger
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, proc lmstfyx.Proc, source MessageSource, log logger.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		proc:       proc,
		source:     source,
		logger:     log,
		shutdownCh: make(chan struct{}),
	}
}

// Start 校验配置后启动处理协程
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) error {
	if err := p.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid processor config: %w", err)
	}
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		workerID := i
		p.wg.Add(1)
		go p.loop(ctx, workerID, inputChan)
	}

	return nil
}

// SignalShutdown 通知 Processor 准备退出（进入 Drain 模式）
func (p *Processor) SignalShutdown() {
	p.logger.Infof(context.Background(), "[Processor] Shutdown signal received")
	close(p.shutdownCh)
}

// Wait 等待所有处理协程退出
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()
	p.logger.Infof(ctx, "[Processor-%d] Started", workerID)

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg, workerID)

		// Drain 模式：处理完剩余消息再退出
		case <-p.shutdownCh:
			p.logger.Infof(ctx, "[Processor-%d] Entering DRAIN mode", workerID)
			count := 0
			for {
				select {
				case msg := <-inputChan:
					p.process(ctx, msg, workerID)
					count++
				default:
					p.logger.Infof(ctx, "[Processor-%d] Drained %d messages, exiting", workerID, count)
					return
				}
			}
		}
	}
}

// process 处理单个消息
func (p *Processor) process(ctx context.Context, msg *Message, workerID int) {
	if msg == nil {
		return
	}

	startTime := time.Now()

	procCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	procCtx = logger.WithWorkerID(procCtx, workerID)

	p.logger.Debugf(procCtx, "[Processor-%d] Processing message: %s", workerID, msg.ID)

	resp := p.safeProc(procCtx, &client.Job{
		ID:    msg.ID,
		Queue: msg.Queue,
		Data:  msg.Data,
	})

	p.logger.Infof(procCtx, "[Processor-%d] Message processed: %s, action: %s, duration: %v",
		workerID, msg.ID, resp.Action, time.Since(startTime))

	p.settle(procCtx, msg, resp)
}

// safeProc 调用业务处理函数，panic 视为可重试
func (p *Processor) safeProc(ctx context.Context, job *client.Job) (resp *lmstfyx.JobResp) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf(ctx, "[Processor] Panic recovered: %v", r)
			resp = lmstfyx.Release([]byte(fmt.Sprintf("panic: %v", r)))
		}
	}()

	resp = p.proc(ctx, job)
	if resp == nil {
		resp = lmstfyx.Success(nil)
	}
	return resp
}

// settle 根据处理结果执行 ACK
// Success / Bury：ACK 删除；Release：不 ACK，等待 TTR 到期重新投递
func (p *Processor) settle(ctx context.Context, msg *Message, resp *lmstfyx.JobResp) {
	switch resp.Action {
	case lmstfyx.JobRespStatusRelease:
		p.logger.Warnf(ctx, "[Processor] Message released for retry: %s", msg.ID)
		return
	case lmstfyx.JobRespStatusBury:
		p.logger.Errorf(ctx, "[Processor] Message buried: %s, detail: %s", msg.ID, string(resp.Data))
	}

	if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
		p.logger.Errorf(ctx, "[Processor] Ack failed: %s, err: %v", msg.ID, err)
	}
}

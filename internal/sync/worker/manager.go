package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"fzscan/internal/sync/domains"
	"fzscan/internal/sync/framework"
	"fzscan/pkg/config"
	"fzscan/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance 按配置管理多个 Worker
type ManagerInstance struct {
	ctx        context.Context
	cfg        *config.Config
	source     framework.MessageSource
	handlers   map[string]framework.HandlerFactory
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(
	cfg *config.Config,
	source framework.MessageSource,
	handlers map[string]framework.HandlerFactory,
	log logger.Logger,
) (*ManagerInstance, error) {
	if len(cfg.Workers) == 0 {
		return nil, fmt.Errorf("at least one worker is required")
	}
	if len(handlers) == 0 {
		return nil, fmt.Errorf("handler map is empty")
	}

	return &ManagerInstance{
		ctx:        context.Background(),
		cfg:        cfg,
		source:     source,
		handlers:   handlers,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		workers:    make([]Worker, 0, len(cfg.Workers)),
		logger:     log,
	}, nil
}

// Start 启动全部 Worker，阻塞到 Shutdown
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	m.mu.Lock()
	if m.closing.Load() {
		m.mu.Unlock()
		return fmt.Errorf("manager is closing")
	}
	if err := m.loadWorkers(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to load workers: %w", err)
	}
	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := w.Start(); err != nil {
				m.logger.Errorf(m.ctx, "[Manager] Worker exited on start: %v", err)
			}
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}
	m.mu.Unlock()

	<-m.shutdownCh
	return nil
}

// Shutdown 优雅退出，可重复调用
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, worker := range m.workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
		worker.Shutdown()
	}
	m.wg.Wait()

	close(m.shutdownCh)
	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}

func (m *ManagerInstance) loadWorkers() error {
	proc := domains.GetProcess(m.logger, m.handlers)

	for _, workerCfg := range m.cfg.Workers {
		if workerCfg.QueueName == "" {
			return fmt.Errorf("worker %s: queue_name is required", workerCfg.Name)
		}
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}
		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		m.workers = append(m.workers, NewWorkerInstance(m.ctx, workerCfg.Name, subCfg, procCfg, m.source, proc, m.logger))
	}
	return nil
}

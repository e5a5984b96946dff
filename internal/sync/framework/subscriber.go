package framework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"fzscan/pkg/logger"
)

// failureAlertThreshold 连续拉取失败达到该次数后升级为 Error 日志
const failureAlertThreshold = 5

// Subscriber 从任务队列拉取重算任务，交给 Processor
type Subscriber struct {
	cfg        *SubscriberConfig
	source     MessageSource
	logger     logger.Logger
	cancelFunc context.CancelFunc
	failures   *atomic.Int64
	wg         sync.WaitGroup
}

// NewSubscriber 创建 Subscriber
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, log logger.Logger) *Subscriber {
	return &Subscriber{
		cfg:      cfg,
		source:   source,
		logger:   log,
		failures: atomic.NewInt64(0),
	}
}

// Start 校验配置后启动拉取协程
func (s *Subscriber) Start(parentCtx context.Context, inputChan chan<- *Message) error {
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid subscriber config: %w", err)
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel

	s.logger.Infof(ctx, "[Subscriber] starting %d puller(s): queue=%s", s.cfg.Concurrency, s.cfg.QueueName)
	for i := 0; i < s.cfg.Concurrency; i++ {
		s.wg.Add(1)
		go s.loop(ctx, i, inputChan)
	}
	return nil
}

// Stop 停止拉取
func (s *Subscriber) Stop() {
	s.logger.Infof(context.Background(), "[Subscriber] stopping: queue=%s", s.cfg.QueueName)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// Wait 等待拉取协程退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] all pullers exited: queue=%s", s.cfg.QueueName)
}

// ConsecutiveFailures 当前连续拉取失败次数
func (s *Subscriber) ConsecutiveFailures() int64 {
	return s.failures.Load()
}

func (s *Subscriber) loop(ctx context.Context, id int, inputChan chan<- *Message) {
	defer s.wg.Done()

	for {
		msg, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			s.consumeFailed(ctx, id, err)
			if !s.pause(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}
		s.failures.Store(0)

		if msg == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		select {
		case inputChan <- msg:
			s.logger.Debugf(ctx, "[Subscriber-%d] job dispatched: %s", id, msg.ID)
		case <-ctx.Done():
			// 未 ACK，TTR 到期后重投
			s.logger.Warnf(ctx, "[Subscriber-%d] job left for redelivery on shutdown: %s", id, msg.ID)
			return
		}

		if !s.pause(ctx, s.cfg.Rate) {
			return
		}
	}
}

// consumeFailed 队列抖动不退出，连续失败过多时升级日志级别
func (s *Subscriber) consumeFailed(ctx context.Context, id int, err error) {
	n := s.failures.Inc()
	if n >= failureAlertThreshold {
		s.logger.Errorf(ctx, "[Subscriber-%d] consume failed %d times in a row: queue=%s error=%v",
			id, n, s.cfg.QueueName, err)
		return
	}
	s.logger.Warnf(ctx, "[Subscriber-%d] consume failed, retrying: queue=%s error=%v", id, s.cfg.QueueName, err)
}

// pause 等待 d，期间收到退出信号返回 false
func (s *Subscriber) pause(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

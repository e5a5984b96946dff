package framework

import (
	"errors"
	"time"
)

// Message 拉取到的任务
type Message struct {
	ID       string
	Queue    string
	Data     []byte // 标准 Job 结构，见 BaseHandler.ParseJob
	Attempts int
}

// SubscriberConfig 拉取配置
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int           // 拉取协程数
	Timeout      time.Duration // 单次拉取阻塞时长
	TTR          time.Duration // 任务未 ACK 时的重投间隔
	Rate         time.Duration // 两次拉取的间隔
	ErrorBackoff time.Duration // 拉取失败后的退避
}

// Validate 校验拉取配置
func (c *SubscriberConfig) Validate() error {
	if c.QueueName == "" {
		return errors.New("subscriber queue name is empty")
	}
	if c.Concurrency <= 0 {
		return errors.New("subscriber concurrency must be positive")
	}
	return nil
}

// ProcessorConfig 处理配置
type ProcessorConfig struct {
	Concurrency int           // 处理协程数
	BufferSize  int           // 拉取与处理之间的缓冲
	Timeout     time.Duration // 单个任务处理超时（重算 + 通知）
}

// Validate 校验处理配置
func (c *ProcessorConfig) Validate() error {
	if c.Concurrency <= 0 {
		return errors.New("processor concurrency must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("processor timeout must be positive")
	}
	return nil
}

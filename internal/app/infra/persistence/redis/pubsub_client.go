package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fzscan/pkg/config"
)

// PubSubClient Redis Pub/Sub 客户端封装（进度变更通知）
type PubSubClient struct {
	rdb *redis.Client
}

// NewPubSubClient 按配置创建客户端并探活
func NewPubSubClient(ctx context.Context, cfg config.RedisConfig) (*PubSubClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", cfg.Addr, err)
	}

	return &PubSubClient{rdb: rdb}, nil
}

// Subscribe 订阅 channel 并等待一条消息，超时返回 context.DeadlineExceeded
func (c *PubSubClient) Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sub := c.rdb.Subscribe(timeoutCtx, channel)
	defer sub.Close()

	// 等订阅确认后再收消息
	if _, err := sub.Receive(timeoutCtx); err != nil {
		return "", err
	}

	select {
	case msg := <-sub.Channel():
		return msg.Payload, nil
	case <-timeoutCtx.Done():
		return "", timeoutCtx.Err()
	}
}

// Publish 向 channel 发布消息
func (c *PubSubClient) Publish(ctx context.Context, channel string, message string) error {
	return c.rdb.Publish(ctx, channel, message).Err()
}

// Close 关闭连接
func (c *PubSubClient) Close() error {
	return c.rdb.Close()
}

package rporder

import (
	"context"

	"fzscan/internal/app/domains/entity/etorder"
)

// OrderRepository 生产订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *etorder.Order) error

	// GetByID 不存在返回 nil, nil
	GetByID(ctx context.Context, id string) (*etorder.Order, error)

	// GetByOrderNo 不存在返回 nil, nil
	GetByOrderNo(ctx context.Context, orderNo string) (*etorder.Order, error)

	// ListByStyle 款式下全部订单
	ListByStyle(ctx context.Context, styleNo string) ([]*etorder.Order, error)

	// UpdateProgress 回写进度（只更新进度相关字段）
	UpdateProgress(ctx context.Context, progress *etorder.Progress) error
}

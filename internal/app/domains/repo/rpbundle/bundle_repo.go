package rpbundle

import (
	"context"

	"fzscan/internal/app/domains/entity/etbundle"
)

// BundleRepository 菲号仓储接口（核心只读，Create 供初始化数据使用）
type BundleRepository interface {
	Create(ctx context.Context, b *etbundle.Bundle) error

	// GetByID 不存在返回 nil, nil
	GetByID(ctx context.Context, id string) (*etbundle.Bundle, error)

	// GetByScanCode 按二维码内容查询，不存在返回 nil, nil
	GetByScanCode(ctx context.Context, scanCode string) (*etbundle.Bundle, error)

	// GetByOrderAttrs 按 (订单号, 颜色, 尺码) 查询，多条时取菲号序号最小的一条
	GetByOrderAttrs(ctx context.Context, orderNo, color, size string) (*etbundle.Bundle, error)

	// ListByOrder 订单下全部菲号
	ListByOrder(ctx context.Context, orderID string) ([]*etbundle.Bundle, error)
}

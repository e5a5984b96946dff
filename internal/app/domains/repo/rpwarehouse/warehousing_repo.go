package rpwarehouse

import (
	"context"

	"fzscan/internal/app/domains/entity/etwarehouse"
)

// WarehousingRepository 入库记录仓储接口
type WarehousingRepository interface {
	// Create 新建入库记录
	Create(ctx context.Context, rec *etwarehouse.Record) error

	// ListByBundle 菲号的入库记录，按创建时间升序
	ListByBundle(ctx context.Context, bundleID string) (etwarehouse.History, error)

	// ListByOrder 订单的入库记录，按创建时间升序
	ListByOrder(ctx context.Context, orderID string) (etwarehouse.History, error)

	// DeleteByRequestIDs 撤销这些扫码请求产生的入库记录（软删除），返回删除条数
	DeleteByRequestIDs(ctx context.Context, requestIDs []string) (int64, error)
}

package rporder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fzscan/common/entity"
	"fzscan/internal/app/domains/entity/etorder"
)

// OrderRepositoryImpl 生产订单仓储实现
type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// Create 新建订单
func (r *OrderRepositoryImpl) Create(ctx context.Context, order *etorder.Order) error {
	po, err := r.toGormModel(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(po).Error
}

// GetByID 按主键查询
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id string) (*etorder.Order, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByOrderNo 按订单号查询
func (r *OrderRepositoryImpl) GetByOrderNo(ctx context.Context, orderNo string) (*etorder.Order, error) {
	return r.first(ctx, "order_no = ?", orderNo)
}

func (r *OrderRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*etorder.Order, error) {
	var po entity.ProductionOrder
	if err := r.db.WithContext(ctx).Where(query, args...).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainModel(&po)
}

// ListByStyle 款式下全部订单
func (r *OrderRepositoryImpl) ListByStyle(ctx context.Context, styleNo string) ([]*etorder.Order, error) {
	var pos []entity.ProductionOrder
	if err := r.db.WithContext(ctx).Where("style_no = ?", styleNo).Order("created_at ASC").Find(&pos).Error; err != nil {
		return nil, err
	}

	orders := make([]*etorder.Order, 0, len(pos))
	for i := range pos {
		o, err := r.toDomainModel(&pos[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateProgress 回写进度
func (r *OrderRepositoryImpl) UpdateProgress(ctx context.Context, progress *etorder.Progress) error {
	snapshot, err := json.Marshal(progress.Stages)
	if err != nil {
		return fmt.Errorf("marshal stage snapshot: %w", err)
	}

	res := r.db.WithContext(ctx).
		Model(&entity.ProductionOrder{}).
		Where("id = ?", progress.OrderID).
		Updates(map[string]interface{}{
			"production_progress":  progress.Percent,
			"status":               string(progress.Status),
			"current_process_name": progress.CurrentStage,
			"stage_snapshot":       datatypes.JSON(snapshot),
			"updated_at":           progress.ComputedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s not found", progress.OrderID)
	}
	return nil
}

// toGormModel 领域对象转换为 GORM 模型
func (r *OrderRepositoryImpl) toGormModel(o *etorder.Order) (*entity.ProductionOrder, error) {
	po := &entity.ProductionOrder{
		ID:                  o.ID,
		OrderNo:             o.OrderNo,
		StyleNo:             o.StyleNo,
		Quantity:            o.Quantity,
		Status:              string(o.Status),
		ProgressPercent:     o.ProgressPercent,
		MaterialArrivalRate: o.MaterialArrivalRate,
		CurrentStage:        o.CurrentStage,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if len(o.Stages) > 0 {
		snapshot, err := json.Marshal(o.Stages)
		if err != nil {
			return nil, fmt.Errorf("marshal stage snapshot: %w", err)
		}
		po.StageSnapshot = datatypes.JSON(snapshot)
	} else {
		po.StageSnapshot = datatypes.JSON("[]")
	}
	return po, nil
}

// toDomainModel GORM 模型转换为领域对象
func (r *OrderRepositoryImpl) toDomainModel(po *entity.ProductionOrder) (*etorder.Order, error) {
	o := &etorder.Order{
		ID:                  po.ID,
		OrderNo:             po.OrderNo,
		StyleNo:             po.StyleNo,
		Quantity:            po.Quantity,
		Status:              etorder.Status(po.Status),
		ProgressPercent:     po.ProgressPercent,
		MaterialArrivalRate: po.MaterialArrivalRate,
		CurrentStage:        po.CurrentStage,
		CreatedAt:           po.CreatedAt,
		UpdatedAt:           po.UpdatedAt,
	}
	if len(po.StageSnapshot) > 0 {
		if err := json.Unmarshal(po.StageSnapshot, &o.Stages); err != nil {
			return nil, fmt.Errorf("unmarshal stage snapshot: %w", err)
		}
	}
	return o, nil
}

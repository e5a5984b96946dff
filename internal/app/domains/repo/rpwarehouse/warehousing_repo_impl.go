package rpwarehouse

import (
	"context"

	"gorm.io/gorm"

	"fzscan/common/entity"
	"fzscan/internal/app/domains/entity/etwarehouse"
)

// WarehousingRepositoryImpl 入库记录仓储实现
type WarehousingRepositoryImpl struct {
	db *gorm.DB
}

// NewWarehousingRepository 创建入库记录仓储实例
func NewWarehousingRepository(db *gorm.DB) WarehousingRepository {
	return &WarehousingRepositoryImpl{db: db}
}

// Create 新建入库记录
func (r *WarehousingRepositoryImpl) Create(ctx context.Context, rec *etwarehouse.Record) error {
	po := r.toGormModel(rec)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}
	rec.CreatedAt = po.CreatedAt
	return nil
}

// ListByBundle 菲号的入库记录
func (r *WarehousingRepositoryImpl) ListByBundle(ctx context.Context, bundleID string) (etwarehouse.History, error) {
	return r.list(ctx, "cutting_bundle_id = ?", bundleID)
}

// ListByOrder 订单的入库记录
func (r *WarehousingRepositoryImpl) ListByOrder(ctx context.Context, orderID string) (etwarehouse.History, error) {
	return r.list(ctx, "order_id = ?", orderID)
}

func (r *WarehousingRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) (etwarehouse.History, error) {
	var pos []entity.ProductWarehousing
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at ASC").
		Order("warehousing_no ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	history := make(etwarehouse.History, 0, len(pos))
	for i := range pos {
		history = append(history, r.toDomainModel(&pos[i]))
	}
	return history, nil
}

// DeleteByRequestIDs 撤销这些扫码请求产生的入库记录
func (r *WarehousingRepositoryImpl) DeleteByRequestIDs(ctx context.Context, requestIDs []string) (int64, error) {
	if len(requestIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("request_id IN ?", requestIDs).Delete(&entity.ProductWarehousing{})
	return res.RowsAffected, res.Error
}

// toGormModel 领域对象转换为 GORM 模型
func (r *WarehousingRepositoryImpl) toGormModel(rec *etwarehouse.Record) *entity.ProductWarehousing {
	return &entity.ProductWarehousing{
		ID:                  rec.ID,
		WarehousingNo:       rec.WarehousingNo,
		RequestID:           rec.RequestID,
		OrderID:             rec.OrderID,
		OrderNo:             rec.OrderNo,
		BundleID:            rec.BundleID,
		ScanCode:            rec.ScanCode,
		Warehouse:           rec.Warehouse,
		WarehousingType:     string(rec.Type),
		ConfirmOutcome:      string(rec.Outcome),
		Quantity:            rec.Quantity,
		QualifiedQuantity:   rec.Qualified,
		UnqualifiedQuantity: rec.Unqualified,
		QualityStatus:       string(rec.QualityStatus),
		DefectCategory:      rec.DefectCategory,
		DefectRemark:        rec.DefectRemark,
		RepairStatus:        string(rec.Disposition),
		RepairRemark:        rec.RepairRemark,
		OperatorID:          rec.OperatorID,
		OperatorName:        rec.OperatorName,
		CreatedAt:           rec.CreatedAt,
	}
}

// toDomainModel GORM 模型转换为领域对象
func (r *WarehousingRepositoryImpl) toDomainModel(po *entity.ProductWarehousing) *etwarehouse.Record {
	return &etwarehouse.Record{
		ID:             po.ID,
		WarehousingNo:  po.WarehousingNo,
		RequestID:      po.RequestID,
		OrderID:        po.OrderID,
		OrderNo:        po.OrderNo,
		BundleID:       po.BundleID,
		ScanCode:       po.ScanCode,
		Warehouse:      po.Warehouse,
		Type:           etwarehouse.Type(po.WarehousingType),
		Outcome:        etwarehouse.Outcome(po.ConfirmOutcome),
		Quantity:       po.Quantity,
		Qualified:      po.QualifiedQuantity,
		Unqualified:    po.UnqualifiedQuantity,
		QualityStatus:  etwarehouse.QualityStatus(po.QualityStatus),
		DefectCategory: po.DefectCategory,
		DefectRemark:   po.DefectRemark,
		Disposition:    etwarehouse.Disposition(po.RepairStatus),
		RepairRemark:   po.RepairRemark,
		OperatorID:     po.OperatorID,
		OperatorName:   po.OperatorName,
		CreatedAt:      po.CreatedAt,
	}
}

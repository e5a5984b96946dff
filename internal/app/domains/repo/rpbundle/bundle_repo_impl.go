package rpbundle

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fzscan/common/entity"
	"fzscan/internal/app/domains/entity/etbundle"
)

// BundleRepositoryImpl 菲号仓储实现
type BundleRepositoryImpl struct {
	db *gorm.DB
}

// NewBundleRepository 创建菲号仓储实例
func NewBundleRepository(db *gorm.DB) BundleRepository {
	return &BundleRepositoryImpl{db: db}
}

// Create 新建菲号
func (r *BundleRepositoryImpl) Create(ctx context.Context, b *etbundle.Bundle) error {
	return r.db.WithContext(ctx).Create(r.toGormModel(b)).Error
}

// GetByID 按主键查询
func (r *BundleRepositoryImpl) GetByID(ctx context.Context, id string) (*etbundle.Bundle, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByScanCode 按二维码查询
func (r *BundleRepositoryImpl) GetByScanCode(ctx context.Context, scanCode string) (*etbundle.Bundle, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("qr_code = ?", scanCode))
}

// GetByOrderAttrs 按订单号、颜色、尺码查询
func (r *BundleRepositoryImpl) GetByOrderAttrs(ctx context.Context, orderNo, color, size string) (*etbundle.Bundle, error) {
	query := r.db.WithContext(ctx).
		Where("production_order_no = ? AND color = ? AND size = ?", orderNo, color, size).
		Order("bundle_no ASC")
	return r.first(ctx, query)
}

func (r *BundleRepositoryImpl) first(_ context.Context, query *gorm.DB) (*etbundle.Bundle, error) {
	var po entity.CuttingBundle
	if err := query.First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainModel(&po), nil
}

// ListByOrder 订单下全部菲号
func (r *BundleRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]*etbundle.Bundle, error) {
	var pos []entity.CuttingBundle
	err := r.db.WithContext(ctx).
		Where("production_order_id = ?", orderID).
		Order("bundle_no ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	bundles := make([]*etbundle.Bundle, 0, len(pos))
	for i := range pos {
		bundles = append(bundles, r.toDomainModel(&pos[i]))
	}
	return bundles, nil
}

// toGormModel 领域对象转换为 GORM 模型
func (r *BundleRepositoryImpl) toGormModel(b *etbundle.Bundle) *entity.CuttingBundle {
	return &entity.CuttingBundle{
		ID:        b.ID,
		OrderID:   b.OrderID,
		OrderNo:   b.OrderNo,
		StyleNo:   b.StyleNo,
		BundleNo:  b.BundleNo,
		Color:     b.Color,
		Size:      b.Size,
		Quantity:  b.Quantity,
		QrCode:    b.ScanCode,
		CreatedAt: b.CreatedAt,
	}
}

// toDomainModel GORM 模型转换为领域对象
func (r *BundleRepositoryImpl) toDomainModel(po *entity.CuttingBundle) *etbundle.Bundle {
	return &etbundle.Bundle{
		ID:        po.ID,
		OrderID:   po.OrderID,
		OrderNo:   po.OrderNo,
		StyleNo:   po.StyleNo,
		BundleNo:  po.BundleNo,
		Color:     po.Color,
		Size:      po.Size,
		Quantity:  po.Quantity,
		ScanCode:  po.QrCode,
		CreatedAt: po.CreatedAt,
	}
}

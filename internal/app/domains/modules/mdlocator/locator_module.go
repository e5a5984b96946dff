package mdlocator

import (
	"context"
	"fmt"
	"strings"

	"fzscan/internal/app/domains/entity/etbundle"
	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/repo/rpbundle"
	"fzscan/internal/app/domains/repo/rporder"
	"fzscan/internal/app/pkg/errorx"
)

// LocateInput 定位参数
type LocateInput struct {
	ScanCode string
	OrderNo  string
	Color    string
	Size     string
}

// Location 定位结果，Bundle 为空表示无菲号模式
type Location struct {
	Order  *etorder.Order
	Bundle *etbundle.Bundle
}

// Orderless 是否无菲号模式
func (l *Location) Orderless() bool {
	return l.Bundle == nil
}

// BundleID 菲号 ID，无菲号模式为空
func (l *Location) BundleID() string {
	if l.Bundle == nil {
		return ""
	}
	return l.Bundle.ID
}

// UnitKey 领取单元
func (l *Location) UnitKey() string {
	return etscan.UnitKeyFor(l.BundleID(), l.Order.ID)
}

// ClaimKey 领取键
func (l *Location) ClaimKey(scanType etscan.ScanType, processCode string) etscan.ClaimKey {
	return etscan.NewClaimKey(l.BundleID(), l.Order.ID, scanType, processCode)
}

// CutQuantity 数量上限：菲号裁剪数，无菲号时为订单数
func (l *Location) CutQuantity() int {
	if l.Bundle != nil {
		return l.Bundle.Quantity
	}
	return l.Order.Quantity
}

// LocatorModule 菲号/订单定位模块
type LocatorModule struct {
	orderRepo  rporder.OrderRepository
	bundleRepo rpbundle.BundleRepository
}

// NewLocatorModule 创建定位模块
func NewLocatorModule(orderRepo rporder.OrderRepository, bundleRepo rpbundle.BundleRepository) *LocatorModule {
	return &LocatorModule{orderRepo: orderRepo, bundleRepo: bundleRepo}
}

// Locate 解析扫码目标
// 1. 扫码内容命中菲号
// 2. 订单号 + 颜色 + 尺码命中菲号
// 3. 仅订单号（或扫码内容为订单号）走无菲号模式
func (m *LocatorModule) Locate(ctx context.Context, in LocateInput) (*Location, error) {
	scanCode := strings.TrimSpace(in.ScanCode)
	orderNo := strings.TrimSpace(in.OrderNo)

	if scanCode != "" {
		bundle, err := m.bundleRepo.GetByScanCode(ctx, scanCode)
		if err != nil {
			return nil, fmt.Errorf("get bundle by scan code failed: %w", err)
		}
		if bundle != nil {
			return m.withOrder(ctx, bundle)
		}
	}

	if orderNo != "" && in.Color != "" && in.Size != "" {
		bundle, err := m.bundleRepo.GetByOrderAttrs(ctx, orderNo, strings.TrimSpace(in.Color), strings.TrimSpace(in.Size))
		if err != nil {
			return nil, fmt.Errorf("get bundle by order attrs failed: %w", err)
		}
		if bundle != nil {
			return m.withOrder(ctx, bundle)
		}
	}

	if orderNo == "" {
		orderNo = scanCode
	}
	if orderNo == "" {
		return nil, errorx.InvalidInput("扫码内容和订单号不能同时为空")
	}
	order, err := m.orderRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	if order == nil {
		if scanCode != "" {
			return nil, errorx.NotFound("未找到菲号或订单：%s", scanCode)
		}
		return nil, errorx.NotFound("订单不存在：%s", orderNo)
	}
	return &Location{Order: order}, nil
}

// GetOrder 按 ID 查询订单
func (m *LocatorModule) GetOrder(ctx context.Context, orderID string) (*etorder.Order, error) {
	order, err := m.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	if order == nil {
		return nil, errorx.NotFound("订单不存在：%s", orderID)
	}
	return order, nil
}

// GetBundle 按 ID 查询菲号，bundleID 为空返回 nil
func (m *LocatorModule) GetBundle(ctx context.Context, bundleID string) (*etbundle.Bundle, error) {
	if bundleID == "" {
		return nil, nil
	}
	bundle, err := m.bundleRepo.GetByID(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("get bundle failed: %w", err)
	}
	return bundle, nil
}

// ListBundles 订单下全部菲号
func (m *LocatorModule) ListBundles(ctx context.Context, orderID string) ([]*etbundle.Bundle, error) {
	return m.bundleRepo.ListByOrder(ctx, orderID)
}

// ListOrdersByStyle 款式下全部订单
func (m *LocatorModule) ListOrdersByStyle(ctx context.Context, styleNo string) ([]*etorder.Order, error) {
	return m.orderRepo.ListByStyle(ctx, styleNo)
}

func (m *LocatorModule) withOrder(ctx context.Context, bundle *etbundle.Bundle) (*Location, error) {
	order, err := m.orderRepo.GetByID(ctx, bundle.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get bundle order failed: %w", err)
	}
	if order == nil {
		return nil, errorx.NotFound("菲号 %s 所属订单不存在", bundle.ScanCode)
	}
	return &Location{Order: order, Bundle: bundle}, nil
}

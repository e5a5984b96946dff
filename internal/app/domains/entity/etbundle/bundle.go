package etbundle

import (
	"errors"
	"time"
)

var (
	ErrInvalidBundleID = errors.New("bundle ID cannot be empty")
	ErrInvalidQuantity = errors.New("bundle quantity must be positive")
)

// Bundle 菲号（裁剪后的实物扎），裁剪数量创建后不可变
type Bundle struct {
	ID        string
	OrderID   string
	OrderNo   string
	StyleNo   string
	BundleNo  int
	Color     string
	Size      string
	Quantity  int
	ScanCode  string
	CreatedAt time.Time
}

// NewBundle 创建菲号（工厂方法）
func NewBundle(id, orderID, orderNo string, bundleNo int, color, size string, quantity int, scanCode string) (*Bundle, error) {
	if id == "" {
		return nil, ErrInvalidBundleID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Bundle{
		ID:        id,
		OrderID:   orderID,
		OrderNo:   orderNo,
		BundleNo:  bundleNo,
		Color:     color,
		Size:      size,
		Quantity:  quantity,
		ScanCode:  scanCode,
		CreatedAt: time.Now(),
	}, nil
}

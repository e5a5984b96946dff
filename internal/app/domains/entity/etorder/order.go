package etorder

import (
	"errors"
	"time"

	"fzscan/internal/app/domains/entity/etstage"
)

var (
	ErrInvalidOrderID  = errors.New("order ID cannot be empty")
	ErrInvalidOrderNo  = errors.New("order number cannot be empty")
	ErrInvalidQuantity = errors.New("order quantity must be positive")
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusProduction Status = "production"
	StatusCompleted  Status = "completed"
)

// Order 生产订单（核心只读，进度由聚合器回写）
type Order struct {
	ID                  string
	OrderNo             string
	StyleNo             string
	Quantity            int
	Status              Status
	ProgressPercent     int
	MaterialArrivalRate int // 物料到货率 0-100
	CurrentStage        string
	Stages              []StageProgress
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StageProgress 单个父节点进度
type StageProgress struct {
	Stage   etstage.Stage  `json:"stage"`
	Label   string         `json:"label"`
	Done    int            `json:"done"`
	Weight  int            `json:"weight"`
	Status  etstage.Status `json:"status"`
	Percent int            `json:"percent"`
}

// Progress 进度重算结果
type Progress struct {
	OrderID      string          `json:"order_id"`
	Percent      int             `json:"percent"`
	Status       Status          `json:"status"`
	CurrentStage string          `json:"current_stage"`
	Stages       []StageProgress `json:"stages"`
	ComputedAt   time.Time       `json:"computed_at"`
}

// NewOrder 创建订单（工厂方法）
func NewOrder(id, orderNo, styleNo string, quantity int) (*Order, error) {
	if id == "" {
		return nil, ErrInvalidOrderID
	}
	if orderNo == "" {
		return nil, ErrInvalidOrderNo
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	return &Order{
		ID:        id,
		OrderNo:   orderNo,
		StyleNo:   styleNo,
		Quantity:  quantity,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsCompleted 订单已完成
func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// MaterialReady 物料已全部到货
func (o *Order) MaterialReady() bool {
	return o.MaterialArrivalRate >= 100
}

// ApplyProgress 回写进度（领域行为）
func (o *Order) ApplyProgress(p *Progress) {
	o.ProgressPercent = p.Percent
	o.Status = p.Status
	o.CurrentStage = p.CurrentStage
	o.Stages = p.Stages
	o.UpdatedAt = p.ComputedAt
}

package rpscan

import (
	"context"
	"errors"

	"fzscan/internal/app/domains/entity/etscan"
)

// ErrAlreadyExists 领取键（或幂等令牌）已被占用，调用方应转入更新分支
var ErrAlreadyExists = errors.New("scan record already exists")

// ScanRecordRepository 扫码台账仓储接口
type ScanRecordRepository interface {
	// Create 新建记录并登记幂等令牌，唯一键冲突返回 ErrAlreadyExists
	Create(ctx context.Context, rec *etscan.ScanRecord) error

	// FindByClaimKey 按领取键查询（含已撤销记录），不存在返回 nil, nil
	FindByClaimKey(ctx context.Context, key etscan.ClaimKey) (*etscan.ScanRecord, error)

	// FindByRequestID 按请求日志查询令牌写入的记录（含早先续扫的令牌），不存在返回 nil, nil
	FindByRequestID(ctx context.Context, requestID string) (*etscan.ScanRecord, error)

	// ListRequestIDs 写入过该记录的全部幂等令牌，按登记时间升序
	ListRequestIDs(ctx context.Context, recordID string) ([]string, error)

	// FindByID 按主键查询，不存在返回 nil, nil
	FindByID(ctx context.Context, id string) (*etscan.ScanRecord, error)

	// UpdateClaim 同一操作人续扫：仅当记录仍有效、仍归该操作人、且库中数量不大于新数量时更新
	// 返回 false 表示条件不满足（被并发修改），调用方需重读
	// 更新成功时同一事务内登记幂等令牌，令牌已登记返回 ErrAlreadyExists
	UpdateClaim(ctx context.Context, rec *etscan.ScanRecord) (bool, error)

	// Revive 重新领取已撤销的记录，仅当记录仍为撤销状态时更新，同样登记幂等令牌
	Revive(ctx context.Context, rec *etscan.ScanRecord) (bool, error)

	// MarkFailure 撤销记录
	MarkFailure(ctx context.Context, id string, remark string) error

	// ListByUnit 查询领取单元下某类别的有效记录
	ListByUnit(ctx context.Context, unitKey string, scanType etscan.ScanType) ([]*etscan.ScanRecord, error)

	// SumQuantity 按条件汇总有效记录数量
	SumQuantity(ctx context.Context, filter SumFilter) (int, error)

	// ListByOrder 分页查询订单扫码记录
	ListByOrder(ctx context.Context, orderID string, page, limit int) ([]*etscan.ScanRecord, int64, error)

	// TallyByOrder 订单有效记录的进度明细（聚合器使用）
	TallyByOrder(ctx context.Context, orderID string) ([]StageTally, error)
}

// SumFilter 数量汇总条件
type SumFilter struct {
	OrderID        string
	UnitKey        string
	ScanType       etscan.ScanType
	ProcessCode    string
	ExcludeUnitKey string
}

// StageTally 进度明细行
type StageTally struct {
	ProgressStage string `db:"progress_stage"`
	BundleID      string `db:"bundle_id"`
	ScanType      string `db:"scan_type"`
	ProcessCode   string `db:"process_code"`
	Quantity      int    `db:"quantity"`
}

package svscan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/pkg/errorx"
)

// rescanWindow 重扫允许的时间窗口
const rescanWindow = time.Hour

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// HistoryPage 扫码记录分页
type HistoryPage struct {
	Records []*etscan.ScanRecord
	Total   int64
	Page    int
	Limit   int
}

// Undo 按幂等令牌撤销扫码（任一写入过该领取键的令牌均可），入库类记录同时回滚入库数量
func (s *ScanService) Undo(ctx context.Context, op etoperator.Operator, requestID string) (*etscan.ScanRecord, error) {
	if err := op.Validate(); err != nil {
		return nil, errorx.InvalidInput("缺少操作人信息")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, errorx.InvalidInput("撤销必须指定扫码请求号")
	}

	rec, err := s.ledger.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errorx.NotFound("未找到扫码记录：%s", requestID)
	}
	if err := s.void(ctx, op, rec, "撤销扫码"); err != nil {
		return nil, err
	}
	return rec, nil
}

// Rescan 作废本人 1 小时内的扫码记录，以便重新扫码
func (s *ScanService) Rescan(ctx context.Context, op etoperator.Operator, recordID string) (*etscan.ScanRecord, error) {
	if err := op.Validate(); err != nil {
		return nil, errorx.InvalidInput("缺少操作人信息")
	}
	rec, err := s.ledger.FindByID(ctx, strings.TrimSpace(recordID))
	if err != nil {
		return nil, err
	}
	if rec.IsSuccess() && rec.HeldBy(op) && s.now().Sub(rec.ScanTime) > rescanWindow {
		return nil, errorx.IllegalState("扫码已超过 1 小时，不能重扫")
	}
	if err := s.void(ctx, op, rec, "重扫作废"); err != nil {
		return nil, err
	}
	return rec, nil
}

// History 订单扫码记录（按扫码时间倒序）
func (s *ScanService) History(ctx context.Context, orderID string, page, limit int) (*HistoryPage, error) {
	if _, err := s.locator.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	records, total, err := s.ledger.ListByOrder(ctx, orderID, page, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Records: records, Total: total, Page: page, Limit: limit}, nil
}

// void 作废台账记录，回滚关联入库记录后重算进度
func (s *ScanService) void(ctx context.Context, op etoperator.Operator, rec *etscan.ScanRecord, reason string) error {
	if err := s.ledger.Void(ctx, rec, op, reason); err != nil {
		return err
	}
	if producesWarehousing(rec) {
		requestIDs, err := s.ledger.RequestIDs(ctx, rec.ID)
		if err != nil {
			return err
		}
		if _, err := s.warehouse.Rollback(ctx, requestIDs...); err != nil {
			s.logger.Errorf(ctx, "[Scan] rollback warehousing failed after void: record=%s error=%v", rec.ID, err)
			return fmt.Errorf("rollback warehousing failed: %w", err)
		}
	}
	s.dispatcher.Dispatch(ctx, rec.OrderID)
	return nil
}

func producesWarehousing(rec *etscan.ScanRecord) bool {
	return rec.ScanType == etscan.ScanTypeWarehouse ||
		(rec.ScanType == etscan.ScanTypeQuality && rec.ProcessCode == etscan.ProcessQualityConfirm)
}

package rpscan

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"fzscan/common/entity"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/infra/persistence/db"
)

const tallyQuery = `
SELECT progress_stage, cutting_bundle_id AS bundle_id, scan_type, process_code, quantity
FROM t_scan_record
WHERE order_id = ? AND scan_result = 'success'`

// ScanRecordRepositoryImpl 扫码台账仓储实现
type ScanRecordRepositoryImpl struct {
	db  *gorm.DB
	xdb *sqlx.DB
}

// NewScanRecordRepository 创建扫码台账仓储实例
func NewScanRecordRepository(gdb *gorm.DB, xdb *sqlx.DB) ScanRecordRepository {
	return &ScanRecordRepositoryImpl{db: gdb, xdb: xdb}
}

// Create 新建记录，同一事务内登记幂等令牌
func (r *ScanRecordRepositoryImpl) Create(ctx context.Context, rec *etscan.ScanRecord) error {
	po := r.toGormModel(rec)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return err
		}
		return logRequest(tx, rec.RequestID, rec.ID)
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return err
	}
	rec.CreatedAt = po.CreatedAt
	rec.UpdatedAt = po.UpdatedAt
	return nil
}

// FindByClaimKey 按领取键查询
func (r *ScanRecordRepositoryImpl) FindByClaimKey(ctx context.Context, key etscan.ClaimKey) (*etscan.ScanRecord, error) {
	return r.first(ctx, "unit_key = ? AND scan_type = ? AND process_code = ?",
		key.UnitKey, string(key.ScanType), key.ProcessCode)
}

// FindByRequestID 按请求日志查询令牌写入的记录
func (r *ScanRecordRepositoryImpl) FindByRequestID(ctx context.Context, requestID string) (*etscan.ScanRecord, error) {
	if requestID == "" {
		return nil, nil
	}
	var req entity.ScanRequest
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.FindByID(ctx, req.ScanRecordID)
}

// ListRequestIDs 写入过该记录的全部幂等令牌
func (r *ScanRecordRepositoryImpl) ListRequestIDs(ctx context.Context, recordID string) ([]string, error) {
	ids := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&entity.ScanRequest{}).
		Where("scan_record_id = ?", recordID).
		Order("created_at ASC").
		Pluck("request_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindByID 按主键查询
func (r *ScanRecordRepositoryImpl) FindByID(ctx context.Context, id string) (*etscan.ScanRecord, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ScanRecordRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*etscan.ScanRecord, error) {
	var po entity.ScanRecord
	err := r.db.WithContext(ctx).Where(query, args...).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainModel(&po), nil
}

// UpdateClaim 同一操作人续扫（条件更新）
func (r *ScanRecordRepositoryImpl) UpdateClaim(ctx context.Context, rec *etscan.ScanRecord) (bool, error) {
	now := time.Now()
	cond := []interface{}{
		"id = ? AND operator_id = ? AND scan_result = ? AND quantity <= ?",
		rec.ID, rec.OperatorID, entity.ScanResultSuccess, rec.Quantity,
	}
	ok, err := r.updateAndLog(ctx, rec, cond, map[string]interface{}{
		"request_id":     rec.RequestID,
		"scan_code":      rec.ScanCode,
		"process_name":   rec.ProcessName,
		"progress_stage": rec.ProgressStage,
		"quantity":       rec.Quantity,
		"unit_price":     rec.UnitPrice,
		"total_amount":   rec.TotalAmount,
		"operator_name":  rec.OperatorName,
		"remark":         rec.Remark,
		"scan_time":      rec.ScanTime,
		"updated_at":     now,
	})
	if ok {
		rec.UpdatedAt = now
	}
	return ok, err
}

// Revive 重新领取已撤销记录（条件更新）
func (r *ScanRecordRepositoryImpl) Revive(ctx context.Context, rec *etscan.ScanRecord) (bool, error) {
	now := time.Now()
	cond := []interface{}{"id = ? AND scan_result = ?", rec.ID, entity.ScanResultFailure}
	ok, err := r.updateAndLog(ctx, rec, cond, map[string]interface{}{
		"request_id":        rec.RequestID,
		"scan_code":         rec.ScanCode,
		"cutting_bundle_id": rec.BundleID,
		"process_name":      rec.ProcessName,
		"progress_stage":    rec.ProgressStage,
		"quantity":          rec.Quantity,
		"unit_price":        rec.UnitPrice,
		"total_amount":      rec.TotalAmount,
		"operator_id":       rec.OperatorID,
		"operator_name":     rec.OperatorName,
		"scan_result":       entity.ScanResultSuccess,
		"remark":            rec.Remark,
		"scan_time":         rec.ScanTime,
		"updated_at":        now,
	})
	if ok {
		rec.UpdatedAt = now
	}
	return ok, err
}

// updateAndLog 条件更新命中后在同一事务内登记幂等令牌
func (r *ScanRecordRepositoryImpl) updateAndLog(ctx context.Context, rec *etscan.ScanRecord, cond []interface{}, fields map[string]interface{}) (bool, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.ScanRecord{}).Where(cond[0], cond[1:]...).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return logRequest(tx, rec.RequestID, rec.ID)
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return false, ErrAlreadyExists
		}
		return false, err
	}
	return affected > 0, nil
}

// logRequest 登记幂等令牌，令牌已存在时返回唯一键冲突
func logRequest(tx *gorm.DB, requestID, recordID string) error {
	if requestID == "" {
		return nil
	}
	return tx.Create(&entity.ScanRequest{
		RequestID:    requestID,
		ScanRecordID: recordID,
		CreatedAt:    time.Now(),
	}).Error
}

// MarkFailure 撤销记录
func (r *ScanRecordRepositoryImpl) MarkFailure(ctx context.Context, id string, remark string) error {
	return r.db.WithContext(ctx).
		Model(&entity.ScanRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"scan_result": entity.ScanResultFailure,
			"remark":      remark,
			"updated_at":  time.Now(),
		}).Error
}

// ListByUnit 查询领取单元下某类别的有效记录
func (r *ScanRecordRepositoryImpl) ListByUnit(ctx context.Context, unitKey string, scanType etscan.ScanType) ([]*etscan.ScanRecord, error) {
	var pos []entity.ScanRecord
	err := r.db.WithContext(ctx).
		Where("unit_key = ? AND scan_type = ? AND scan_result = ?", unitKey, string(scanType), entity.ScanResultSuccess).
		Order("scan_time ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainModels(pos), nil
}

// SumQuantity 按条件汇总有效记录数量
func (r *ScanRecordRepositoryImpl) SumQuantity(ctx context.Context, filter SumFilter) (int, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.ScanRecord{}).
		Where("scan_result = ?", entity.ScanResultSuccess)
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.UnitKey != "" {
		query = query.Where("unit_key = ?", filter.UnitKey)
	}
	if filter.ScanType != "" {
		query = query.Where("scan_type = ?", string(filter.ScanType))
	}
	if filter.ProcessCode != "" {
		query = query.Where("process_code = ?", filter.ProcessCode)
	}
	if filter.ExcludeUnitKey != "" {
		query = query.Where("unit_key <> ?", filter.ExcludeUnitKey)
	}

	var total int64
	if err := query.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

// ListByOrder 分页查询订单扫码记录（按扫码时间倒序）
func (r *ScanRecordRepositoryImpl) ListByOrder(ctx context.Context, orderID string, page, limit int) ([]*etscan.ScanRecord, int64, error) {
	var total int64
	var pos []entity.ScanRecord

	query := r.db.WithContext(ctx).Model(&entity.ScanRecord{}).Where("order_id = ?", orderID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("scan_time DESC").Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	return r.toDomainModels(pos), total, nil
}

// TallyByOrder 订单进度明细（sqlx 直查）
func (r *ScanRecordRepositoryImpl) TallyByOrder(ctx context.Context, orderID string) ([]StageTally, error) {
	rows := make([]StageTally, 0)
	if err := r.xdb.SelectContext(ctx, &rows, r.xdb.Rebind(tallyQuery), orderID); err != nil {
		return nil, err
	}
	return rows, nil
}

// toGormModel 领域对象转换为 GORM 模型
func (r *ScanRecordRepositoryImpl) toGormModel(rec *etscan.ScanRecord) *entity.ScanRecord {
	return &entity.ScanRecord{
		ID:            rec.ID,
		RequestID:     rec.RequestID,
		ScanCode:      rec.ScanCode,
		OrderID:       rec.OrderID,
		OrderNo:       rec.OrderNo,
		StyleNo:       rec.StyleNo,
		BundleID:      rec.BundleID,
		UnitKey:       rec.UnitKey,
		ScanType:      string(rec.ScanType),
		ProcessCode:   rec.ProcessCode,
		ProcessName:   rec.ProcessName,
		ProgressStage: rec.ProgressStage,
		Quantity:      rec.Quantity,
		UnitPrice:     rec.UnitPrice,
		TotalAmount:   rec.TotalAmount,
		OperatorID:    rec.OperatorID,
		OperatorName:  rec.OperatorName,
		ScanResult:    string(rec.Result),
		Remark:        rec.Remark,
		ScanTime:      rec.ScanTime,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// toDomainModel GORM 模型转换为领域对象
func (r *ScanRecordRepositoryImpl) toDomainModel(po *entity.ScanRecord) *etscan.ScanRecord {
	return &etscan.ScanRecord{
		ID:            po.ID,
		RequestID:     po.RequestID,
		ScanCode:      po.ScanCode,
		OrderID:       po.OrderID,
		OrderNo:       po.OrderNo,
		StyleNo:       po.StyleNo,
		BundleID:      po.BundleID,
		UnitKey:       po.UnitKey,
		ScanType:      etscan.ScanType(po.ScanType),
		ProcessCode:   po.ProcessCode,
		ProcessName:   po.ProcessName,
		ProgressStage: po.ProgressStage,
		Quantity:      po.Quantity,
		UnitPrice:     po.UnitPrice,
		TotalAmount:   po.TotalAmount,
		OperatorID:    po.OperatorID,
		OperatorName:  po.OperatorName,
		Result:        etscan.Result(po.ScanResult),
		Remark:        po.Remark,
		ScanTime:      po.ScanTime,
		CreatedAt:     po.CreatedAt,
		UpdatedAt:     po.UpdatedAt,
	}
}

func (r *ScanRecordRepositoryImpl) toDomainModels(pos []entity.ScanRecord) []*etscan.ScanRecord {
	recs := make([]*etscan.ScanRecord, 0, len(pos))
	for i := range pos {
		recs = append(recs, r.toDomainModel(&pos[i]))
	}
	return recs
}

package mdledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/repo/rpscan"
	"fzscan/internal/app/pkg/errorx"
	"fzscan/internal/app/pkg/idgen"
	"fzscan/pkg/logger"
)

// maxAttempts 领取键竞争时的重读次数
const maxAttempts = 3

// Outcome 台账写入结果
type Outcome int

const (
	OutcomeCreated   Outcome = iota // 新领取
	OutcomeUpdated                  // 同一操作人续扫
	OutcomeDuplicate                // 幂等令牌重复，未写入
)

// String 日志用
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "duplicate"
	}
}

// Entry 本次扫码写入台账的内容
type Entry struct {
	RequestID     string
	ScanCode      string
	OrderID       string
	OrderNo       string
	StyleNo       string
	BundleID      string
	ProcessName   string
	ProgressStage string
	Quantity      int
	UnitPrice     decimal.Decimal
	Remark        string
}

// Result 台账写入结果
type Result struct {
	Record  *etscan.ScanRecord
	Outcome Outcome
}

// Duplicate 是否幂等命中
func (r *Result) Duplicate() bool {
	return r.Outcome == OutcomeDuplicate
}

// LedgerModule 扫码台账模块：领取锁 + 幂等写入
type LedgerModule struct {
	repo   rpscan.ScanRecordRepository
	logger logger.Logger
	now    func() time.Time
}

// NewLedgerModule 创建台账模块
func NewLedgerModule(repo rpscan.ScanRecordRepository, log logger.Logger) *LedgerModule {
	return &LedgerModule{repo: repo, logger: log, now: time.Now}
}

// FindByRequestID 按幂等令牌查询已落库记录
func (m *LedgerModule) FindByRequestID(ctx context.Context, requestID string) (*etscan.ScanRecord, error) {
	rec, err := m.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find scan by request id failed: %w", err)
	}
	return rec, nil
}

// RequestIDs 写入过该记录的全部幂等令牌
func (m *LedgerModule) RequestIDs(ctx context.Context, recordID string) ([]string, error) {
	ids, err := m.repo.ListRequestIDs(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("list request ids failed: %w", err)
	}
	return ids, nil
}

// FindByID 按主键查询，不存在返回 NotFound
func (m *LedgerModule) FindByID(ctx context.Context, id string) (*etscan.ScanRecord, error) {
	rec, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find scan by id failed: %w", err)
	}
	if rec == nil {
		return nil, errorx.NotFound("扫码记录不存在：%s", id)
	}
	return rec, nil
}

// ListByOrder 分页查询订单扫码记录
func (m *LedgerModule) ListByOrder(ctx context.Context, orderID string, page, limit int) ([]*etscan.ScanRecord, int64, error) {
	records, total, err := m.repo.ListByOrder(ctx, orderID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list scans by order failed: %w", err)
	}
	return records, total, nil
}

// FindByClaimKey 查询领取键下的有效记录
func (m *LedgerModule) FindByClaimKey(ctx context.Context, key etscan.ClaimKey) (*etscan.ScanRecord, error) {
	rec, err := m.repo.FindByClaimKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find scan by claim key failed: %w", err)
	}
	if rec == nil || !rec.IsSuccess() {
		return nil, nil
	}
	return rec, nil
}

// RecordScan 按领取键写入台账
// 1. 幂等令牌已登记（含早先续扫的令牌）：直接返回已落库记录
// 2. 领取键无记录：新建，唯一键冲突后重读
// 3. 记录已撤销：重新领取
// 4. 他人已领取：Conflict
// 5. 本人续扫：数量取大，刷新单价、金额、时间
func (m *LedgerModule) RecordScan(ctx context.Context, key etscan.ClaimKey, op etoperator.Operator, entry Entry) (*Result, error) {
	if err := op.Validate(); err != nil {
		return nil, errorx.InvalidInput("缺少操作人信息")
	}
	if err := key.Validate(); err != nil {
		return nil, errorx.InvalidInput("领取键不完整：%v", err)
	}
	if entry.Quantity <= 0 {
		return nil, errorx.InvalidInput("扫码数量必须大于 0")
	}
	if entry.RequestID == "" {
		entry.RequestID = idgen.NewID()
	}

	if dup, err := m.duplicate(ctx, entry.RequestID); dup != nil || err != nil {
		return dup, err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		existing, err := m.repo.FindByClaimKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("find scan by claim key failed: %w", err)
		}

		var (
			res  *Result
			done bool
		)
		switch {
		case existing == nil:
			res, done, err = m.create(ctx, key, op, entry)
		case !existing.IsSuccess():
			res, done, err = m.revive(ctx, existing, op, entry)
		case !existing.HeldBy(op):
			return nil, claimedError(existing, entry)
		default:
			res, done, err = m.update(ctx, existing, op, entry)
		}
		if err != nil {
			return nil, err
		}
		if done {
			m.logger.Infof(ctx, "[Ledger] scan %s: key=%s operator=%s qty=%d",
				res.Outcome, key, op.ID, res.Record.Quantity)
			return res, nil
		}
		m.logger.Debugf(ctx, "[Ledger] claim contended, reloading: key=%s attempt=%d", key, attempt+1)
	}
	return nil, errorx.Conflict("扫码繁忙，请稍后重试")
}

// Replay 幂等令牌已登记时返回重复结果，未登记返回 nil
func (m *LedgerModule) Replay(ctx context.Context, requestID string) (*Result, error) {
	return m.duplicate(ctx, requestID)
}

// duplicate 幂等令牌命中时返回已落库记录
func (m *LedgerModule) duplicate(ctx context.Context, requestID string) (*Result, error) {
	rec, err := m.FindByRequestID(ctx, requestID)
	if err != nil || rec == nil {
		return nil, err
	}
	return &Result{Record: rec, Outcome: OutcomeDuplicate}, nil
}

// conflictOutcome 唯一键冲突：幂等令牌重复则视为重复请求，否则需重读领取键
func (m *LedgerModule) conflictOutcome(ctx context.Context, requestID string) (*Result, bool, error) {
	dup, err := m.duplicate(ctx, requestID)
	if err != nil {
		return nil, false, err
	}
	return dup, dup != nil, nil
}

func (m *LedgerModule) create(ctx context.Context, key etscan.ClaimKey, op etoperator.Operator, entry Entry) (*Result, bool, error) {
	now := m.now()
	rec := &etscan.ScanRecord{
		ID:        idgen.NewID(),
		UnitKey:   key.UnitKey,
		ScanType:  key.ScanType,
		Result:    etscan.ResultSuccess,
		CreatedAt: now,
	}
	rec.ProcessCode = key.ProcessCode
	m.apply(rec, op, entry, entry.Quantity, now)
	if err := rec.Validate(); err != nil {
		return nil, false, errorx.InvalidInput("扫码记录不合法：%v", err)
	}

	err := m.repo.Create(ctx, rec)
	if err == nil {
		return &Result{Record: rec, Outcome: OutcomeCreated}, true, nil
	}
	if errors.Is(err, rpscan.ErrAlreadyExists) {
		return m.conflictOutcome(ctx, entry.RequestID)
	}
	return nil, false, fmt.Errorf("create scan record failed: %w", err)
}

func (m *LedgerModule) revive(ctx context.Context, existing *etscan.ScanRecord, op etoperator.Operator, entry Entry) (*Result, bool, error) {
	rec := *existing
	rec.Result = etscan.ResultSuccess
	rec.Remark = ""
	m.apply(&rec, op, entry, entry.Quantity, m.now())
	if err := rec.Validate(); err != nil {
		return nil, false, errorx.InvalidInput("扫码记录不合法：%v", err)
	}

	ok, err := m.repo.Revive(ctx, &rec)
	if errors.Is(err, rpscan.ErrAlreadyExists) {
		return m.conflictOutcome(ctx, entry.RequestID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("revive scan record failed: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Result{Record: &rec, Outcome: OutcomeCreated}, true, nil
}

func (m *LedgerModule) update(ctx context.Context, existing *etscan.ScanRecord, op etoperator.Operator, entry Entry) (*Result, bool, error) {
	qty := existing.Quantity
	if entry.Quantity > qty {
		qty = entry.Quantity
	}

	rec := *existing
	if entry.Remark == "" {
		entry.Remark = existing.Remark
	}
	m.apply(&rec, op, entry, qty, m.now())
	if err := rec.Validate(); err != nil {
		return nil, false, errorx.InvalidInput("扫码记录不合法：%v", err)
	}

	ok, err := m.repo.UpdateClaim(ctx, &rec)
	if errors.Is(err, rpscan.ErrAlreadyExists) {
		return m.conflictOutcome(ctx, entry.RequestID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("update scan record failed: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Result{Record: &rec, Outcome: OutcomeUpdated}, true, nil
}

// apply 写入本次扫码字段（操作人、单价、数量、金额、时间）
func (m *LedgerModule) apply(rec *etscan.ScanRecord, op etoperator.Operator, entry Entry, qty int, now time.Time) {
	rec.RequestID = entry.RequestID
	rec.ScanCode = entry.ScanCode
	rec.OrderID = entry.OrderID
	rec.OrderNo = entry.OrderNo
	rec.StyleNo = entry.StyleNo
	rec.BundleID = entry.BundleID
	rec.ProcessName = entry.ProcessName
	rec.ProgressStage = entry.ProgressStage
	rec.Remark = entry.Remark
	rec.ScanTime = now
	rec.UpdatedAt = now
	rec.SetOperator(op)
	rec.SetPricing(entry.UnitPrice, qty)
}

// claimedError 他人已领取
func claimedError(holder *etscan.ScanRecord, entry Entry) error {
	name := strings.TrimSpace(entry.ProcessName)
	if name == "" {
		name = holder.ProcessCode
	}
	return errorx.Conflict("「%s」已被「%s」领取", name, holder.OperatorName).
		WithCode(errorx.CodeClaimed).
		WithDetail("operator", holder.OperatorName)
}

// Void 撤销记录（仅记录所有人）
func (m *LedgerModule) Void(ctx context.Context, rec *etscan.ScanRecord, op etoperator.Operator, reason string) error {
	if !rec.HeldBy(op) {
		return errorx.Conflict("只能撤销本人的扫码记录，该记录属于「%s」", rec.OperatorName).WithCode(errorx.CodeClaimed)
	}
	if !rec.IsSuccess() {
		return errorx.IllegalState("扫码记录已撤销")
	}
	if err := m.repo.MarkFailure(ctx, rec.ID, reason); err != nil {
		return fmt.Errorf("mark scan failure failed: %w", err)
	}
	rec.Result = etscan.ResultFailure
	rec.Remark = reason
	m.logger.Infof(ctx, "[Ledger] scan voided: id=%s key=%s operator=%s", rec.ID, rec.Key(), op.ID)
	return nil
}

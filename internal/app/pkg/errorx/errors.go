package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind 业务错误分类
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindQuantityExceeded
	KindPrerequisiteNotMet
	KindOutOfOrder
	KindIllegalState
	KindInvalidInput
)

// String 分类名
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindQuantityExceeded:
		return "QUANTITY_EXCEEDED"
	case KindPrerequisiteNotMet:
		return "PREREQUISITE_NOT_MET"
	case KindOutOfOrder:
		return "OUT_OF_ORDER"
	case KindIllegalState:
		return "ILLEGAL_STATE"
	case KindInvalidInput:
		return "INVALID_INPUT"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus 分类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindQuantityExceeded, KindPrerequisiteNotMet, KindOutOfOrder, KindIllegalState:
		return http.StatusUnprocessableEntity
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// 错误码（同一分类下的细分原因）
const (
	CodeNoRepairAllowance = "NO_REPAIR_ALLOWANCE"
	CodeClaimed           = "CLAIMED_BY_OTHER"
	CodeDuplicateConfirm  = "DUPLICATE_CONFIRM"
	CodePendingRepair     = "PENDING_REPAIR"
	CodeOrderCompleted    = "ORDER_COMPLETED"
)

// 分类哨兵，配合 errors.Is 使用
var (
	ErrNotFound           = &BusinessError{Kind: KindNotFound}
	ErrConflict           = &BusinessError{Kind: KindConflict}
	ErrQuantityExceeded   = &BusinessError{Kind: KindQuantityExceeded}
	ErrPrerequisiteNotMet = &BusinessError{Kind: KindPrerequisiteNotMet}
	ErrOutOfOrder         = &BusinessError{Kind: KindOutOfOrder}
	ErrIllegalState       = &BusinessError{Kind: KindIllegalState}
	ErrInvalidInput       = &BusinessError{Kind: KindInvalidInput}
)

// BusinessError 业务错误结构
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Details []ErrorDetail
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string
	Info string
}

// Error 实现 error 接口
func (e *BusinessError) Error() string {
	if e.Message == "" {
		return strings.ToLower(e.Kind.String())
	}
	return e.Message
}

// Is 同分类即匹配；哨兵不带 Code，带 Code 的目标还需 Code 相同
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithCode 设置细分错误码
func (e *BusinessError) WithCode(code string) *BusinessError {
	e.Code = code
	return e
}

// WithDetail 追加错误详情
func (e *BusinessError) WithDetail(path, info string) *BusinessError {
	e.Details = append(e.Details, ErrorDetail{Path: path, Info: info})
	return e
}

// NewBusinessError 创建业务错误
func NewBusinessError(kind Kind, format string, args ...interface{}) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func NotFound(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(KindConflict, format, args...)
}

func QuantityExceeded(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(KindQuantityExceeded, format, args...)
}

func OutOfOrder(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(KindOutOfOrder, format, args...)
}

func IllegalState(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(KindIllegalState, format, args...)
}

func InvalidInput(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(KindInvalidInput, format, args...)
}

// PrerequisiteNotMet 前置工序未完成，missing 为缺失的工序名
func PrerequisiteNotMet(message string, missing []string) *BusinessError {
	e := NewBusinessError(KindPrerequisiteNotMet, "%s", message)
	if len(missing) > 0 {
		e.Message = fmt.Sprintf("%s：%s", message, strings.Join(missing, "、"))
	}
	for _, name := range missing {
		e.WithDetail("process", name)
	}
	return e
}

// NoRepairAllowance 无可返修数量
func NoRepairAllowance(cutQuantity, qualified int) *BusinessError {
	return QuantityExceeded("无可返修数量：裁剪数 %d，已合格入库 %d", cutQuantity, qualified).
		WithCode(CodeNoRepairAllowance)
}

// KindOf 取错误分类，非业务错误视为内部错误
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// As 取业务错误
func As(err error) (*BusinessError, bool) {
	var be *BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

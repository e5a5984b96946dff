package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanResponse 扫码响应
type ScanResponse struct {
	Success     bool                 `json:"success" example:"true"`
	Message     string               `json:"message" example:"扫码成功"`
	Duplicate   bool                 `json:"duplicate"`
	Clamped     bool                 `json:"clamped"`
	ScanRecord  *ScanRecordResponse  `json:"scan_record"`
	OrderInfo   *OrderInfo           `json:"order_info,omitempty"`
	Bundle      *BundleResponse      `json:"bundle,omitempty"`
	Warehousing *WarehousingResponse `json:"warehousing,omitempty"`
}

// ScanRecordResponse 扫码记录
type ScanRecordResponse struct {
	ID            string          `json:"id"`
	RequestID     string          `json:"request_id"`
	ScanCode      string          `json:"scan_code"`
	OrderNo       string          `json:"order_no"`
	BundleID      string          `json:"bundle_id,omitempty"`
	ScanType      string          `json:"scan_type" example:"production"`
	ProcessCode   string          `json:"process_code"`
	ProcessName   string          `json:"process_name" example:"上领"`
	ProgressStage string          `json:"progress_stage" example:"sewing"`
	Quantity      int             `json:"quantity" example:"50"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string" example:"1.2"`
	TotalAmount   decimal.Decimal `json:"total_amount" swaggertype:"string" example:"60"`
	OperatorID    string          `json:"operator_id"`
	OperatorName  string          `json:"operator_name"`
	ScanResult    string          `json:"scan_result" example:"success"`
	Remark        string          `json:"remark,omitempty"`
	ScanTime      time.Time       `json:"scan_time"`
}

// OrderInfo 订单摘要
type OrderInfo struct {
	ID      string `json:"id"`
	OrderNo string `json:"order_no"`
	StyleNo string `json:"style_no"`
	Status  string `json:"status"`
}

// BundleResponse 菲号信息
type BundleResponse struct {
	ID       string `json:"id"`
	BundleNo int    `json:"bundle_no"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
	ScanCode string `json:"scan_code"`
}

// WarehousingResponse 入库记录
type WarehousingResponse struct {
	ID             string    `json:"id"`
	WarehousingNo  string    `json:"warehousing_no"`
	Warehouse      string    `json:"warehouse,omitempty"`
	Type           string    `json:"warehousing_type"`
	Quantity       int       `json:"quantity"`
	Qualified      int       `json:"qualified_quantity"`
	Unqualified    int       `json:"unqualified_quantity"`
	QualityStatus  string    `json:"quality_status"`
	DefectCategory string    `json:"defect_category,omitempty"`
	Disposition    string    `json:"defect_disposition,omitempty"`
	RepairRemark   string    `json:"repair_remark,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ScanHistoryResponse 扫码记录分页
type ScanHistoryResponse struct {
	Items []*ScanRecordResponse `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ProgressResponse 订单进度
type ProgressResponse struct {
	OrderID      string           `json:"order_id"`
	Percent      int              `json:"percent" example:"66"`
	Status       string           `json:"status" example:"production"`
	CurrentStage string           `json:"current_stage" example:"车缝"`
	Stages       []*StageResponse `json:"stages"`
	ComputedAt   time.Time        `json:"computed_at"`
}

// StageResponse 父节点进度
type StageResponse struct {
	Stage   string `json:"stage" example:"sewing"`
	Label   string `json:"label" example:"车缝"`
	Done    int    `json:"done"`
	Weight  int    `json:"weight"`
	Status  string `json:"status" example:"in_progress"`
	Percent int    `json:"percent"`
}

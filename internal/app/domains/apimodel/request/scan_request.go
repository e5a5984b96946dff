package request

// ScanRequest 扫码请求（DTO），操作人由请求头传入
type ScanRequest struct {
	RequestID         string `json:"request_id" binding:"max=64" example:"9f1c2d3e-4b5a-6789-abcd-ef0123456789"`
	ScanType          string `json:"scan_type" binding:"omitempty,oneof=production quality warehouse sewing" example:"production"`
	ScanCode          string `json:"scan_code" binding:"max=200" example:"PO20240101-001-3"`
	OrderNo           string `json:"order_no" binding:"max=64" example:"PO20240101-001"`
	Color             string `json:"color" binding:"max=32" example:"黑"`
	Size              string `json:"size" binding:"max=32" example:"L"`
	ProcessName       string `json:"process_name" binding:"max=100" example:"上领"`
	ProcessCode       string `json:"process_code" binding:"max=100"`
	AutoProcess       bool   `json:"auto_process"`
	Quantity          int    `json:"quantity" binding:"gte=0" example:"50"`
	Remark            string `json:"remark" binding:"max=255"`
	QualityStage      string `json:"quality_stage" binding:"omitempty,oneof=receive inspect confirm" example:"receive"`
	QualityResult     string `json:"quality_result" binding:"omitempty,oneof=qualified unqualified repaired" example:"qualified"`
	DefectCategory    string `json:"defect_category" binding:"max=64" example:"跳线"`
	DefectRemark      string `json:"defect_remark" binding:"max=255"`
	DefectDisposition string `json:"defect_disposition" binding:"omitempty,oneof=repair scrap" example:"repair"`
	RepairRemark      string `json:"repair_remark" binding:"max=255"`
	Warehouse         string `json:"warehouse" binding:"max=64" example:"成品一仓"`
}

// UndoScanRequest 撤销扫码请求
type UndoScanRequest struct {
	RequestID string `json:"request_id" binding:"required,max=64"`
}

package response

import (
	"fzscan/internal/app/domains/entity/etbundle"
	"fzscan/internal/app/domains/entity/etorder"
	"fzscan/internal/app/domains/entity/etscan"
	"fzscan/internal/app/domains/entity/etwarehouse"
	"fzscan/internal/app/domains/services/svscan"
)

// FromScanResult 从扫码结果转换为响应 DTO
func FromScanResult(res *svscan.Result) *ScanResponse {
	resp := &ScanResponse{
		Success:     true,
		Message:     res.Message,
		Duplicate:   res.Duplicate(),
		Clamped:     res.Clamped,
		ScanRecord:  FromScanRecord(res.Record),
		Bundle:      fromBundleEntity(res.Bundle),
		Warehousing: fromWarehousingEntity(res.Warehousing),
	}
	if res.Order != nil {
		resp.OrderInfo = &OrderInfo{
			ID:      res.Order.ID,
			OrderNo: res.Order.OrderNo,
			StyleNo: res.Order.StyleNo,
			Status:  string(res.Order.Status),
		}
	}
	return resp
}

// FromScanRecord 从领域对象转换为响应 DTO
func FromScanRecord(rec *etscan.ScanRecord) *ScanRecordResponse {
	if rec == nil {
		return nil
	}
	return &ScanRecordResponse{
		ID:            rec.ID,
		RequestID:     rec.RequestID,
		ScanCode:      rec.ScanCode,
		OrderNo:       rec.OrderNo,
		BundleID:      rec.BundleID,
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
	}
}

// FromHistoryPage 扫码记录分页
func FromHistoryPage(page *svscan.HistoryPage) *ScanHistoryResponse {
	items := make([]*ScanRecordResponse, 0, len(page.Records))
	for _, rec := range page.Records {
		items = append(items, FromScanRecord(rec))
	}
	return &ScanHistoryResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	}
}

// FromProgress 从进度结果转换为响应 DTO
func FromProgress(p *etorder.Progress) *ProgressResponse {
	stages := make([]*StageResponse, 0, len(p.Stages))
	for _, sp := range p.Stages {
		stages = append(stages, &StageResponse{
			Stage:   string(sp.Stage),
			Label:   sp.Label,
			Done:    sp.Done,
			Weight:  sp.Weight,
			Status:  string(sp.Status),
			Percent: sp.Percent,
		})
	}
	return &ProgressResponse{
		OrderID:      p.OrderID,
		Percent:      p.Percent,
		Status:       string(p.Status),
		CurrentStage: p.CurrentStage,
		Stages:       stages,
		ComputedAt:   p.ComputedAt,
	}
}

func fromBundleEntity(b *etbundle.Bundle) *BundleResponse {
	if b == nil {
		return nil
	}
	return &BundleResponse{
		ID:       b.ID,
		BundleNo: b.BundleNo,
		Color:    b.Color,
		Size:     b.Size,
		Quantity: b.Quantity,
		ScanCode: b.ScanCode,
	}
}

func fromWarehousingEntity(w *etwarehouse.Record) *WarehousingResponse {
	if w == nil {
		return nil
	}
	return &WarehousingResponse{
		ID:             w.ID,
		WarehousingNo:  w.WarehousingNo,
		Warehouse:      w.Warehouse,
		Type:           string(w.Type),
		Quantity:       w.Quantity,
		Qualified:      w.Qualified,
		Unqualified:    w.Unqualified,
		QualityStatus:  string(w.QualityStatus),
		DefectCategory: w.DefectCategory,
		Disposition:    string(w.Disposition),
		RepairRemark:   w.RepairRemark,
		CreatedAt:      w.CreatedAt,
	}
}

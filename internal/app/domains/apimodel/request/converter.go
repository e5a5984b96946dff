package request

import "fzscan/internal/app/domains/services/svscan"

// ToCommand 将 Request DTO 转换为扫码指令
func (r *ScanRequest) ToCommand() svscan.Command {
	return svscan.Command{
		RequestID:         r.RequestID,
		ScanType:          r.ScanType,
		ScanCode:          r.ScanCode,
		OrderNo:           r.OrderNo,
		Color:             r.Color,
		Size:              r.Size,
		ProcessName:       r.ProcessName,
		ProcessCode:       r.ProcessCode,
		AutoProcess:       r.AutoProcess,
		Quantity:          r.Quantity,
		Remark:            r.Remark,
		QualityStage:      r.QualityStage,
		QualityResult:     r.QualityResult,
		DefectCategory:    r.DefectCategory,
		DefectRemark:      r.DefectRemark,
		DefectDisposition: r.DefectDisposition,
		RepairRemark:      r.RepairRemark,
		Warehouse:         r.Warehouse,
	}
}

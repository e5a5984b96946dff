package scan

import "fzscan/internal/app/domains/services/svscan"

// ScanHandler 扫码 HTTP 处理器
type ScanHandler struct {
	scanService *svscan.ScanService
}

// NewScanHandler 创建扫码处理器实例
func NewScanHandler(scanService *svscan.ScanService) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
	}
}

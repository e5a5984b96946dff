package progress

import "fzscan/internal/app/domains/services/svprogress"

// ProgressHandler 订单进度 HTTP 处理器
type ProgressHandler struct {
	progressService *svprogress.ProgressService
}

// NewProgressHandler 创建进度处理器实例
func NewProgressHandler(progressService *svprogress.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

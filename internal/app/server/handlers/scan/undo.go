package scan

import (
	"github.com/gin-gonic/gin"

	"fzscan/internal/app/domains/apimodel/request"
	"fzscan/internal/app/domains/apimodel/response"
	"fzscan/internal/app/pkg/ginx"
	"fzscan/internal/app/server/middlewares"
)

// Undo godoc
// @Summary      撤销扫码
// @Description  按 request_id 撤销本人的扫码记录，入库类记录同时回滚入库数量
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        request body request.UndoScanRequest true "撤销请求"
// @Success      200 {object} ginx.Response{data=response.ScanRecordResponse} "撤销成功"
// @Failure      404 {object} ginx.Response "记录不存在"
// @Failure      409 {object} ginx.Response "非本人记录"
// @Router       /scans/undo [post]
func (h *ScanHandler) Undo(c *gin.Context) {
	var req request.UndoScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	rec, err := h.scanService.Undo(c.Request.Context(), middlewares.OperatorFrom(c), req.RequestID)
	if err != nil {
		ginx.FailWithError(c, err)
		return
	}

	ginx.SuccessWithMessage(c, "撤销成功", response.FromScanRecord(rec))
}

// Rescan godoc
// @Summary      重扫
// @Description  作废本人 1 小时内的扫码记录，之后可重新扫码
// @Tags         scans
// @Produce      json
// @Param        id path string true "扫码记录 ID"
// @Success      200 {object} ginx.Response{data=response.ScanRecordResponse} "已作废"
// @Failure      404 {object} ginx.Response "记录不存在"
// @Failure      422 {object} ginx.Response "超过重扫时限"
// @Router       /scans/{id}/rescan [post]
func (h *ScanHandler) Rescan(c *gin.Context) {
	recordID := c.Param("id")
	if recordID == "" {
		ginx.BadRequest(c, "id required")
		return
	}

	rec, err := h.scanService.Rescan(c.Request.Context(), middlewares.OperatorFrom(c), recordID)
	if err != nil {
		ginx.FailWithError(c, err)
		return
	}

	ginx.SuccessWithMessage(c, "已作废，请重新扫码", response.FromScanRecord(rec))
}

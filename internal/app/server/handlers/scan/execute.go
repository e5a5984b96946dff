package scan

import (
	"github.com/gin-gonic/gin"

	"fzscan/internal/app/domains/apimodel/request"
	"fzscan/internal/app/domains/apimodel/response"
	"fzscan/internal/app/pkg/ginx"
	"fzscan/internal/app/server/middlewares"
)

// Execute godoc
// @Summary      扫码
// @Description  生产 / 质检 / 入库扫码。同一 request_id 重复提交返回已落库记录（duplicate=true）
// @Description
// @Description  质检扫码按 quality_stage 分阶段：receive → inspect → confirm
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        X-Operator-Id   header string true "操作人 ID"
// @Param        X-Operator-Name header string true "操作人姓名（可 URL 编码）"
// @Param        request body request.ScanRequest true "扫码请求"
// @Success      200 {object} ginx.Response{data=response.ScanResponse} "扫码成功"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      404 {object} ginx.Response "菲号或订单不存在"
// @Failure      409 {object} ginx.Response "已被他人领取"
// @Failure      422 {object} ginx.Response "数量超限 / 前置工序未完成 / 顺序错误"
// @Router       /scans [post]
func (h *ScanHandler) Execute(c *gin.Context) {
	var req request.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.scanService.Execute(c.Request.Context(), middlewares.OperatorFrom(c), req.ToCommand())
	if err != nil {
		ginx.FailWithError(c, err)
		return
	}

	ginx.SuccessWithMessage(c, res.Message, response.FromScanResult(res))
}

package scan

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"fzscan/internal/app/domains/apimodel/response"
	"fzscan/internal/app/pkg/ginx"
)

// History godoc
// @Summary      订单扫码记录
// @Tags         orders
// @Produce      json
// @Param        id    path  string true  "订单 ID"
// @Param        page  query int    false "页码，默认 1"
// @Param        limit query int    false "每页条数，默认 20，最大 100"
// @Success      200 {object} ginx.Response{data=response.ScanHistoryResponse} "查询成功"
// @Failure      404 {object} ginx.Response "订单不存在"
// @Router       /orders/{id}/scans [get]
func (h *ScanHandler) History(c *gin.Context) {
	orderID := c.Param("id")
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.scanService.History(c.Request.Context(), orderID, page, limit)
	if err != nil {
		ginx.FailWithError(c, err)
		return
	}

	ginx.Success(c, response.FromHistoryPage(result))
}

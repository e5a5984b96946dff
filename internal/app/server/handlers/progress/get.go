package progress

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"fzscan/internal/app/domains/apimodel/response"
	"fzscan/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      订单进度
// @Description  返回订单进度快照。带 wait 参数时先等待进度变更通知（最多 wait 秒）
// @Description
// @Description  使用场景：
// @Description  - 扫码后查询最新进度（异步重算模式下配合 wait 使用）
// @Description  - 超时返回 code=3001 与当前快照，客户端按 poll_url 轮询
// @Tags         orders
// @Produce      json
// @Param        id   path  string true  "订单 ID"
// @Param        wait query int    false "Smart Wait 秒数"
// @Success      200 {object} ginx.Response{data=response.ProgressResponse} "查询成功"
// @Failure      404 {object} ginx.Response "订单不存在"
// @Router       /orders/{id}/progress [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	orderID := c.Param("id")
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	progress, fresh, err := h.progressService.Get(c.Request.Context(), orderID, waitSeconds)
	if err != nil {
		ginx.FailWithError(c, err)
		return
	}

	if !fresh {
		pollURL := fmt.Sprintf("/api/v1/orders/%s/progress", orderID)
		ginx.Processing(c, response.FromProgress(progress), pollURL)
		return
	}
	ginx.Success(c, response.FromProgress(progress))
}

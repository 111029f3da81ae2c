package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatistics 获取面板统计
// 每次读取实时计算，数据量小无需缓存
func (a *API) GetStatistics(c *gin.Context) {
	ctx, cancel := a.requestContext(c)
	defer cancel()

	stats, err := a.stats.Stats(ctx)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}
	c.JSON(http.StatusOK, stats)
}

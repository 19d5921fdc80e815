package controller

import (
	"context"
	"net/http"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Store *repository.Store
}

func NewHealthController(store *repository.Store) *HealthController {
	return &HealthController{Store: store}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response "存储不可用"
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查存储连接
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := c.Store.Ping(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
		},
	})
}

package controller

import (
	"achievements_tracker_backend/internal/util"
	"achievements_tracker_backend/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{Store: store}
}

// @Summary 存活检查
// @Tags 系统
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}

// @Summary 就绪检查
// @Description 检查文档存储连接
// @Tags 系统
// @Produce json
// @Success 200 {object} object
// @Failure 503 {object} util.ErrorResponse
// @Router /ready [get]
func (c *HealthController) ReadinessCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// 检查存储连接
	if err := c.Store.Ping(pingCtx); err != nil {
		logger.Log.Warn("Document store unavailable", zap.Error(err))
		util.Error(ctx, http.StatusServiceUnavailable, "Document store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"store": "up",
		},
	})
}

package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"dust-keeper/internal/config"
	"dust-keeper/internal/env"
	"dust-keeper/internal/middleware"
	"dust-keeper/internal/models"
	"dust-keeper/services"
)

type APIController struct {
	startTime time.Time
}

func NewAPIController() *APIController {
	return &APIController{startTime: time.Now()}
}

/**
 * Register general API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", a.Healthz)
	r.POST("/dust/api/v1/reload", a.ReloadConfig)
}

// @Summary 业务就绪探针
// @Description 返回服务版本、启动时间和请求统计
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	status := services.GetVpnManager().GetStatus()
	c.JSON(200, models.HealthResponse{
		Status:        "ok",
		Version:       env.Version,
		StartTime:     a.startTime,
		UptimeSeconds: int64(time.Since(a.startTime).Seconds()),
		TotalRequests: middleware.GetTotalRequests(),
		ErrorRequests: middleware.GetErrorRequests(),
		VpnConnected:  status.Connected,
	})
}

// @Summary 重新加载配置
// @Description 重新加载应用配置文件
// @Tags Config
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /dust/api/v1/reload [post]
func (a *APIController) ReloadConfig(c *gin.Context) {
	if err := config.ReloadConfig(); err != nil {
		c.JSON(500, models.ErrorResponse{
			Code:  "config.reload_failed",
			Error: "Failed to reload configuration: " + err.Error(),
		})
		return
	}
	c.JSON(200, gin.H{
		"status":  "success",
		"message": "Configuration reloaded successfully",
	})
}

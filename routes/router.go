package routes

import (
	"context"
	"time"

	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// Controllers 路由注册所需的全部控制器
type Controllers struct {
	Auth         *controllers.AuthController
	Deal         *controllers.DealController
	Pipeline     *controllers.PipelineController
	Lead         *controllers.LeadController
	Webhook      *controllers.WebhookController
	Task         *controllers.TaskController
	Notification *controllers.NotificationController
	ActivityLog  *controllers.ActivityLogController
	Attendance   *controllers.AttendanceController
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, ctl *Controllers, dbStatus func(ctx context.Context) (map[string]interface{}, error)) {
	// 注册认证路由
	RegisterAuthRoutes(router, ctl.Auth)

	// 注册webhook路由（无需认证）
	RegisterWebhookRoutes(router, ctl.Webhook)

	// 注册业务路由
	RegisterDealRoutes(router, ctl.Deal)
	RegisterPipelineRoutes(router, ctl.Pipeline)
	RegisterLeadRoutes(router, ctl.Lead)
	RegisterTaskRoutes(router, ctl.Task)
	RegisterNotificationRoutes(router, ctl.Notification)
	RegisterActivityLogRoutes(router, ctl.ActivityLog)
	RegisterAttendanceRoutes(router, ctl.Attendance)

	// 健康检查路由
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 数据库状态检查路由
	router.GET("/api/db-status", func(c *gin.Context) {
		if dbStatus == nil {
			c.JSON(200, gin.H{"status": "unavailable"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		status, err := dbStatus(ctx)
		if err != nil {
			utils.ErrorResponse(c, "获取数据库状态失败: "+err.Error(), 500)
			return
		}
		c.JSON(200, status)
	})
}

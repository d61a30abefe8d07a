package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterActivityLogRoutes 注册活动日志查询路由
func RegisterActivityLogRoutes(router *gin.Engine, ctl *controllers.ActivityLogController) {
	logRoutes := router.Group("/api/activity-logs")
	logRoutes.Use(middleware.AuthMiddleware())

	// 查询活动日志
	logRoutes.GET("", ctl.ListActivityLogs)
}

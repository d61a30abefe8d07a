package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes 注册通知相关路由
func RegisterNotificationRoutes(router *gin.Engine, ctl *controllers.NotificationController) {
	notificationRoutes := router.Group("/api/notifications")
	notificationRoutes.Use(middleware.AuthMiddleware())

	// 获取通知列表，支持unread=true筛选
	notificationRoutes.GET("", ctl.ListNotifications)

	// 单条标记已读
	notificationRoutes.PUT("/:id/read", ctl.MarkRead)

	// 全部标记已读
	notificationRoutes.PUT("/read-all", ctl.MarkAllRead)
}

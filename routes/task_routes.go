package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterTaskRoutes 注册任务相关路由
func RegisterTaskRoutes(router *gin.Engine, ctl *controllers.TaskController) {
	taskRoutes := router.Group("/api/tasks")
	taskRoutes.Use(middleware.AuthMiddleware())

	// 获取当前用户的任务列表
	taskRoutes.GET("", ctl.ListTasks)

	// 创建任务
	taskRoutes.POST("", ctl.CreateTask)

	// 获取单个任务
	taskRoutes.GET("/:id", ctl.GetTask)

	// 完成任务
	taskRoutes.PUT("/:id/complete", ctl.CompleteTask)
}

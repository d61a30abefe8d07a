package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterPipelineRoutes 注册管道看板与分析路由
func RegisterPipelineRoutes(router *gin.Engine, ctl *controllers.PipelineController) {
	pipelineRoutes := router.Group("/api/pipeline")
	pipelineRoutes.Use(middleware.AuthMiddleware())

	// 管道看板（交易按阶段分组）
	pipelineRoutes.GET("", ctl.GetPipeline)

	// 管道分析指标
	pipelineRoutes.GET("/analytics", ctl.GetAnalytics)

	// 阶段配置列表
	pipelineRoutes.GET("/stages", ctl.GetStages)
}

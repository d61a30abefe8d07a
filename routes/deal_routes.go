package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterDealRoutes 注册交易相关路由
func RegisterDealRoutes(router *gin.Engine, ctl *controllers.DealController) {
	dealRoutes := router.Group("/api/deals")
	dealRoutes.Use(middleware.AuthMiddleware())

	// 获取交易列表
	dealRoutes.GET("", ctl.ListDeals)

	// 创建交易
	dealRoutes.POST("", ctl.CreateDeal)

	// 获取单个交易
	dealRoutes.GET("/:id", ctl.GetDeal)

	// 交易阶段变更
	dealRoutes.PUT("/:id/stage", ctl.TransitionStage)
}

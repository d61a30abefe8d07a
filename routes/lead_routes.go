package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterLeadRoutes 注册线索相关路由
func RegisterLeadRoutes(router *gin.Engine, ctl *controllers.LeadController) {
	leadRoutes := router.Group("/api/leads")
	leadRoutes.Use(middleware.AuthMiddleware())

	// 获取线索列表
	leadRoutes.GET("", ctl.ListLeads)

	// 手动创建线索
	leadRoutes.POST("", ctl.CreateLead)

	// 获取单个线索
	leadRoutes.GET("/:id", ctl.GetLead)

	// 更新线索
	leadRoutes.PUT("/:id", ctl.UpdateLead)
}

package routes

import (
	"github.com/sailcrm/crm_server/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterWebhookRoutes 注册webhook接入路由，外部系统调用，不走认证
func RegisterWebhookRoutes(router *gin.Engine, ctl *controllers.WebhookController) {
	webhookRoutes := router.Group("/api/webhooks")

	// 线索接入
	webhookRoutes.POST("/leads", ctl.IngestLead)
}

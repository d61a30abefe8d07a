package routes

import (
	"github.com/sailcrm/crm_server/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
func RegisterAuthRoutes(router *gin.Engine, ctl *controllers.AuthController) {
	authRoutes := router.Group("/api/auth")

	// 用户登录
	authRoutes.POST("/login", ctl.Login)

	// 用户注册
	authRoutes.POST("/register", ctl.Register)
}

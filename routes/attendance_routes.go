package routes

import (
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAttendanceRoutes 注册考勤相关路由
func RegisterAttendanceRoutes(router *gin.Engine, ctl *controllers.AttendanceController) {
	attendanceRoutes := router.Group("/api/attendance")
	attendanceRoutes.Use(middleware.AuthMiddleware())

	// 上班打卡
	attendanceRoutes.POST("/check-in", ctl.CheckIn)

	// 下班打卡
	attendanceRoutes.POST("/check-out", ctl.CheckOut)

	// 查询自己的考勤记录
	attendanceRoutes.GET("", ctl.ListAttendance)
}

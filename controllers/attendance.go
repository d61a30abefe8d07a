package controllers

import (
	"net/http"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceController 考勤相关接口
type AttendanceController struct {
	store *repository.Store
}

// NewAttendanceController 创建考勤控制器
func NewAttendanceController(store *repository.Store) *AttendanceController {
	return &AttendanceController{store: store}
}

// CheckIn 上班打卡，每天重复打卡返回已有记录
func (ctl *AttendanceController) CheckIn(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	today := now.Format("2006-01-02")

	if existing, err := ctl.store.Attendance.FindByUserDate(ctx, user.ID, today); err == nil {
		c.JSON(http.StatusOK, gin.H{
			"record":    existing,
			"duplicate": true,
		})
		return
	} else if err != repository.ErrNotFound {
		utils.HandleError(c, err)
		return
	}

	record := &models.Attendance{
		UserID:    user.ID,
		UserName:  user.Username,
		Date:      today,
		CheckInAt: now,
	}

	if err := ctl.store.Attendance.Insert(ctx, record); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record, "duplicate": false})
}

// CheckOut 下班打卡，更新当天记录的签退时间
func (ctl *AttendanceController) CheckOut(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	today := now.Format("2006-01-02")

	record, err := ctl.store.Attendance.FindByUserDate(ctx, user.ID, today)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateValidationError("今天还没有打卡记录"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	if err := ctl.store.Attendance.SetCheckOut(ctx, record.ID, now); err != nil {
		utils.HandleError(c, err)
		return
	}

	record.CheckOutAt = &now
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// ListAttendance 查询自己的考勤记录，可按日期范围筛选
func (ctl *AttendanceController) ListAttendance(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	records, err := ctl.store.Attendance.ListByUser(
		c.Request.Context(), user.ID, c.Query("from"), c.Query("to"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

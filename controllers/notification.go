package controllers

import (
	"net/http"

	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// NotificationController 通知相关接口
type NotificationController struct {
	store *repository.Store
}

// NewNotificationController 创建通知控制器
func NewNotificationController(store *repository.Store) *NotificationController {
	return &NotificationController{store: store}
}

// ListNotifications 获取当前用户的通知列表
func (ctl *NotificationController) ListNotifications(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	unreadOnly := c.Query("unread") == "true"

	notifications, err := ctl.store.Notifications.List(c.Request.Context(), user.ID, unreadOnly)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead 将单条通知标记为已读
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	err = ctl.store.Notifications.MarkRead(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateNotFoundError("通知"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, "已标记为已读")
}

// MarkAllRead 将当前用户所有通知标记为已读
func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	count, err := ctl.store.Notifications.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"updated": count}, "全部标记为已读")
}

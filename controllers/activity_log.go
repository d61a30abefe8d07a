package controllers

import (
	"net/http"
	"strconv"

	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// ActivityLogController 活动日志查询接口，日志本身只读
type ActivityLogController struct {
	store *repository.Store
}

// NewActivityLogController 创建活动日志控制器
func NewActivityLogController(store *repository.Store) *ActivityLogController {
	return &ActivityLogController{store: store}
}

// ListActivityLogs 查询活动日志，可按目标实体筛选
func (ctl *ActivityLogController) ListActivityLogs(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)

	filter := repository.ActivityFilter{
		TargetType: c.Query("targetType"),
		TargetID:   c.Query("targetId"),
		Limit:      limit,
	}

	entries, err := ctl.store.Activities.List(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

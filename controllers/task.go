package controllers

import (
	"net/http"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/service"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// TaskController 任务/跟进相关接口
type TaskController struct {
	store      *repository.Store
	dispatcher *service.Dispatcher
}

// NewTaskController 创建任务控制器
func NewTaskController(store *repository.Store, dispatcher *service.Dispatcher) *TaskController {
	return &TaskController{store: store, dispatcher: dispatcher}
}

// ListTasks 获取当前用户的任务列表
func (ctl *TaskController) ListTasks(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	tasks, err := ctl.store.Tasks.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask 获取单个任务
func (ctl *TaskController) GetTask(c *gin.Context) {
	task, err := ctl.store.Tasks.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateNotFoundError("任务"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask 创建任务
func (ctl *TaskController) CreateTask(c *gin.Context) {
	var req models.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求数据: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 关联实体必须存在
	if req.LeadID != "" {
		if _, err := ctl.store.Leads.FindByID(ctx, req.LeadID); err != nil {
			if err == repository.ErrNotFound {
				utils.HandleError(c, utils.CreateValidationError("关联线索不存在"))
				return
			}
			utils.HandleError(c, err)
			return
		}
	}
	if req.DealID != "" {
		if _, err := ctl.store.Deals.FindByID(ctx, req.DealID); err != nil {
			if err == repository.ErrNotFound {
				utils.HandleError(c, utils.CreateValidationError("关联交易不存在"))
				return
			}
			utils.HandleError(c, err)
			return
		}
	}

	now := time.Now()
	task := &models.Task{
		Title:              req.Title,
		DueDate:            req.DueDate,
		Priority:           req.Priority,
		LeadID:             req.LeadID,
		DealID:             req.DealID,
		OwnerID:            user.ID,
		OwnerName:          user.Username,
		AISuggestedMessage: req.AISuggestedMessage,
		AIBestContactTime:  req.AIBestContactTime,
		AIActionType:       req.AIActionType,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := ctl.store.Tasks.Insert(ctx, task); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"taskId": task.ID.Hex(),
		"title":  task.Title,
	}, "创建任务成功")

	c.JSON(http.StatusCreated, task)
}

// CompleteTask 完成任务，重复调用幂等
func (ctl *TaskController) CompleteTask(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	taskID := c.Param("id")

	// 读取当前状态以便判断是否首次完成
	before, err := ctl.store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateNotFoundError("任务"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	now := time.Now()
	task, err := ctl.store.Tasks.Complete(ctx, taskID, now)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	// 重复完成不再触发副作用
	if !before.Completed {
		ctl.dispatcher.EnqueueAndDispatch(ctx, models.DomainEvent{
			Type:      models.EventTaskCompleted,
			ActorID:   user.ID,
			ActorName: user.Username,
			TargetID:  task.ID.Hex(),
			Payload: map[string]string{
				"title":   task.Title,
				"ownerId": task.OwnerID,
			},
			At: now,
		})
	}

	c.JSON(http.StatusOK, task)
}

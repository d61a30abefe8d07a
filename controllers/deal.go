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

// DealController 交易相关接口
type DealController struct {
	store    *repository.Store
	pipeline *service.PipelineService
}

// NewDealController 创建交易控制器
func NewDealController(store *repository.Store, pipeline *service.PipelineService) *DealController {
	return &DealController{store: store, pipeline: pipeline}
}

// ListDeals 获取交易列表
func (ctl *DealController) ListDeals(c *gin.Context) {
	deals, err := ctl.store.Deals.ListAll(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

// GetDeal 获取单个交易
func (ctl *DealController) GetDeal(c *gin.Context) {
	deal, err := ctl.store.Deals.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateNotFoundError("交易"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

// CreateDeal 创建交易
func (ctl *DealController) CreateDeal(c *gin.Context) {
	var req models.DealCreateRequest
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

	// 未指定阶段时落在配置的第一个阶段
	stageLabel := req.Stage
	if stageLabel == "" {
		stages, err := ctl.store.Stages.ListOrdered(ctx)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		if len(stages) == 0 {
			utils.HandleError(c, utils.CreateValidationError("管道阶段未配置"))
			return
		}
		stageLabel = stages[0].Label
	}

	stage, err := ctl.store.Stages.FindByLabel(ctx, stageLabel)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateValidationError("无效的管道阶段: "+stageLabel))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 关联线索必须存在
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

	now := time.Now()
	deal := &models.Deal{
		Name:            req.Name,
		Value:           req.Value,
		Probability:     stage.Probability,
		Stage:           stage.Label,
		OwnerID:         user.ID,
		OwnerName:       user.Username,
		LeadID:          req.LeadID,
		ExpectedCloseAt: req.ExpectedCloseAt,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := ctl.store.Deals.Insert(ctx, deal); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"dealId": deal.ID.Hex(),
		"name":   deal.Name,
		"stage":  deal.Stage,
	}, "创建交易成功")

	c.JSON(http.StatusCreated, deal)
}

// TransitionStage 交易阶段变更
func (ctl *DealController) TransitionStage(c *gin.Context) {
	var req models.StageTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求数据: 缺少stage字段", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	deal, err := ctl.pipeline.Transition(c.Request.Context(), c.Param("id"), req.Stage, user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

package controllers

import (
	"net/http"

	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/service"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// PipelineController 管道看板与分析接口
type PipelineController struct {
	store     *repository.Store
	pipeline  *service.PipelineService
	analytics *service.AnalyticsService
}

// NewPipelineController 创建管道控制器
func NewPipelineController(store *repository.Store, pipeline *service.PipelineService, analytics *service.AnalyticsService) *PipelineController {
	return &PipelineController{store: store, pipeline: pipeline, analytics: analytics}
}

// GetPipeline 获取管道看板（交易按阶段分组）
func (ctl *PipelineController) GetPipeline(c *gin.Context) {
	board, err := ctl.pipeline.Board(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pipeline": board.Pipeline,
		"stages":   board.Stages,
		"stats":    board.Stats,
	})
}

// GetAnalytics 获取管道分析指标
func (ctl *PipelineController) GetAnalytics(c *gin.Context) {
	result, err := ctl.analytics.Compute(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStages 获取阶段配置列表
func (ctl *PipelineController) GetStages(c *gin.Context) {
	stages, err := ctl.store.Stages.ListOrdered(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

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

// WebhookController 外部线索接入接口
type WebhookController struct {
	store      *repository.Store
	dispatcher *service.Dispatcher
}

// NewWebhookController 创建webhook控制器
func NewWebhookController(store *repository.Store, dispatcher *service.Dispatcher) *WebhookController {
	return &WebhookController{store: store, dispatcher: dispatcher}
}

// IngestLead 接收外部系统推送的线索，按邮箱去重
func (ctl *WebhookController) IngestLead(c *gin.Context) {
	var req models.WebhookLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求数据", http.StatusBadRequest)
		return
	}

	// name和email为必填字段
	if req.Name == "" || req.Email == "" {
		utils.ErrorResponse(c, "缺少必要字段: name和email", http.StatusBadRequest)
		return
	}
	if !utils.IsValidEmail(req.Email) {
		utils.ErrorResponse(c, "无效的邮箱格式", http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()

	// 按邮箱去重，重复提交返回已有线索
	if existing, err := ctl.store.Leads.FindByEmail(ctx, req.Email); err == nil {
		utils.LogInfo(map[string]interface{}{
			"email":  req.Email,
			"leadId": existing.ID.Hex(),
		}, "webhook线索重复，返回已有记录")

		c.JSON(http.StatusOK, gin.H{
			"id":        existing.ID.Hex(),
			"duplicate": true,
		})
		return
	} else if err != repository.ErrNotFound {
		utils.HandleError(c, err)
		return
	}

	source := req.Source
	if source == "" {
		source = "webhook"
	}

	now := time.Now()
	lead := &models.Lead{
		Name:      req.Name,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    source,
		Status:    models.LeadStatusNew,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctl.store.Leads.Insert(ctx, lead); err != nil {
		utils.HandleError(c, err)
		return
	}

	ctl.dispatcher.EnqueueAndDispatch(ctx, models.DomainEvent{
		Type:      models.EventLeadCreated,
		ActorID:   "system",
		ActorName: "webhook",
		TargetID:  lead.ID.Hex(),
		Payload: map[string]string{
			"leadName": lead.Name,
			"source":   lead.Source,
		},
		At: now,
	})

	utils.LogInfo(map[string]interface{}{
		"leadId": lead.ID.Hex(),
		"email":  lead.Email,
		"source": lead.Source,
	}, "webhook线索接入成功")

	c.JSON(http.StatusCreated, gin.H{
		"id":        lead.ID.Hex(),
		"duplicate": false,
	})
}

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

// LeadController 线索相关接口
type LeadController struct {
	store      *repository.Store
	dispatcher *service.Dispatcher
}

// NewLeadController 创建线索控制器
func NewLeadController(store *repository.Store, dispatcher *service.Dispatcher) *LeadController {
	return &LeadController{store: store, dispatcher: dispatcher}
}

// ListLeads 获取线索列表
func (ctl *LeadController) ListLeads(c *gin.Context) {
	leads, err := ctl.store.Leads.List(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// GetLead 获取单个线索
func (ctl *LeadController) GetLead(c *gin.Context) {
	lead, err := ctl.store.Leads.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateNotFoundError("线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// CreateLead 手动创建线索
func (ctl *LeadController) CreateLead(c *gin.Context) {
	var req models.LeadCreateRequest
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

	// 邮箱去重
	if existing, err := ctl.store.Leads.FindByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusOK, gin.H{
			"id":        existing.ID.Hex(),
			"duplicate": true,
			"message":   "该邮箱的线索已存在",
		})
		return
	} else if err != repository.ErrNotFound {
		utils.HandleError(c, err)
		return
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	now := time.Now()
	lead := &models.Lead{
		Name:        req.Name,
		Company:     req.Company,
		Email:       req.Email,
		Phone:       req.Phone,
		Source:      source,
		Status:      models.LeadStatusNew,
		Temperature: req.Temperature,
		Notes:       req.Notes,
		OwnerID:     user.ID,
		OwnerName:   user.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ctl.store.Leads.Insert(ctx, lead); err != nil {
		utils.HandleError(c, err)
		return
	}

	ctl.dispatcher.EnqueueAndDispatch(ctx, models.DomainEvent{
		Type:      models.EventLeadCreated,
		ActorID:   user.ID,
		ActorName: user.Username,
		TargetID:  lead.ID.Hex(),
		Payload: map[string]string{
			"leadName": lead.Name,
			"source":   lead.Source,
		},
		At: now,
	})

	c.JSON(http.StatusCreated, lead)
}

// UpdateLead 更新线索
func (ctl *LeadController) UpdateLead(c *gin.Context) {
	var req models.LeadUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求数据: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()

	lead, err := ctl.store.Leads.FindByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(c, utils.CreateNotFoundError("线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Company != "" {
		lead.Company = req.Company
	}
	if req.Phone != "" {
		lead.Phone = req.Phone
	}
	if req.Status != "" {
		lead.Status = req.Status
	}
	if req.Temperature != "" {
		lead.Temperature = req.Temperature
	}
	if req.Score != nil {
		lead.Score = *req.Score
	}
	if req.Notes != "" {
		lead.Notes = req.Notes
	}
	lead.UpdatedAt = time.Now()

	if err := ctl.store.Leads.Update(ctx, lead); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

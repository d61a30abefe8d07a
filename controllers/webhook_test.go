package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookRouter() (*gin.Engine, *repository.Store) {
	store := repository.NewInMemoryStore()
	ctl := NewWebhookController(store, service.NewDispatcher(store))
	router := gin.New()
	router.POST("/api/webhooks/leads", ctl.IngestLead)
	return router, store
}

func TestIngestLeadValidation(t *testing.T) {
	router, _ := newWebhookRouter()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"缺少name", map[string]string{"email": "a@b.com"}},
		{"缺少email", map[string]string{"name": "某客户"}},
		{"邮箱格式错误", map[string]string{"name": "某客户", "email": "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, router, http.MethodPost, "/api/webhooks/leads", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestIngestLeadDedupeByEmail(t *testing.T) {
	router, store := newWebhookRouter()

	body := map[string]string{
		"name":    "某制造企业采购部",
		"email":   "procurement@example.com",
		"company": "某制造企业",
		"source":  "官网表单",
	}

	// 首次提交创建线索
	w := performJSON(t, router, http.MethodPost, "/api/webhooks/leads", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var first struct {
		ID        string `json:"id"`
		Duplicate bool   `json:"duplicate"`
	}
	decodeJSON(t, w, &first)
	assert.False(t, first.Duplicate)
	assert.NotEmpty(t, first.ID)

	// 同邮箱重复提交返回已有线索，不新建
	w = performJSON(t, router, http.MethodPost, "/api/webhooks/leads", body)
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		ID        string `json:"id"`
		Duplicate bool   `json:"duplicate"`
	}
	decodeJSON(t, w, &second)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ID, second.ID)

	leads, err := store.Leads.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

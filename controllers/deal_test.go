package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newDealRouter(t *testing.T) (*gin.Engine, *repository.Store) {
	t.Helper()
	store := repository.NewInMemoryStore()
	require.NoError(t, store.Stages.InsertMany(context.Background(), models.DefaultPipelineStages))

	dispatcher := service.NewDispatcher(store)
	pipeline := service.NewPipelineService(store, dispatcher, 3)
	ctl := NewDealController(store, pipeline)

	router := gin.New()
	group := router.Group("/api/deals")
	group.Use(authAs("user-1", string(models.UserRoleSALES), "李娜"))
	group.POST("", ctl.CreateDeal)
	group.GET("/:id", ctl.GetDeal)
	group.PUT("/:id/stage", ctl.TransitionStage)
	return router, store
}

func TestCreateDealDefaultsToFirstStage(t *testing.T) {
	router, _ := newDealRouter(t)

	w := performJSON(t, router, http.MethodPost, "/api/deals", map[string]interface{}{
		"name":  "西南区年度框架协议",
		"value": 200000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var deal models.Deal
	decodeJSON(t, w, &deal)
	assert.Equal(t, "Prospecting", deal.Stage)
	assert.Equal(t, 10, deal.Probability)
	assert.Equal(t, int64(1), deal.Version)
	assert.Equal(t, "user-1", deal.OwnerID)
}

func TestTransitionStageEndpoint(t *testing.T) {
	router, store := newDealRouter(t)

	w := performJSON(t, router, http.MethodPost, "/api/deals", map[string]interface{}{
		"name":  "西南区年度框架协议",
		"value": 200000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var deal models.Deal
	decodeJSON(t, w, &deal)

	// 有效变更：概率跟随目标阶段配置
	w = performJSON(t, router, http.MethodPut, "/api/deals/"+deal.ID.Hex()+"/stage", map[string]string{
		"stage": "Qualification",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Deal
	decodeJSON(t, w, &updated)
	assert.Equal(t, "Qualification", updated.Stage)
	assert.Equal(t, 25, updated.Probability)
	assert.Equal(t, int64(2), updated.Version)

	// 无效阶段：400且交易保持原状
	w = performJSON(t, router, http.MethodPut, "/api/deals/"+deal.ID.Hex()+"/stage", map[string]string{
		"stage": "Daydreaming",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	current, err := store.Deals.FindByID(context.Background(), deal.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Qualification", current.Stage)

	// 缺少stage字段
	w = performJSON(t, router, http.MethodPut, "/api/deals/"+deal.ID.Hex()+"/stage", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不存在的交易
	w = performJSON(t, router, http.MethodPut, "/api/deals/"+primitive.NewObjectID().Hex()+"/stage", map[string]string{
		"stage": "Qualification",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDealRejectsUnknownLead(t *testing.T) {
	router, _ := newDealRouter(t)

	w := performJSON(t, router, http.MethodPost, "/api/deals", map[string]interface{}{
		"name":   "无线索交易",
		"value":  1000,
		"leadId": primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

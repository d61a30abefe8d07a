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
)

func newTaskRouter(t *testing.T) (*gin.Engine, *repository.Store) {
	t.Helper()
	store := repository.NewInMemoryStore()
	ctl := NewTaskController(store, service.NewDispatcher(store))

	router := gin.New()
	group := router.Group("/api/tasks")
	group.Use(authAs("user-1", string(models.UserRoleSALES), "李娜"))
	group.GET("", ctl.ListTasks)
	group.POST("", ctl.CreateTask)
	group.PUT("/:id/complete", ctl.CompleteTask)
	return router, store
}

func TestCompleteTaskIdempotent(t *testing.T) {
	router, store := newTaskRouter(t)

	w := performJSON(t, router, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":    "发送报价单",
		"priority": 80,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var task models.Task
	decodeJSON(t, w, &task)
	assert.False(t, task.Completed)

	// 首次完成
	w = performJSON(t, router, http.MethodPut, "/api/tasks/"+task.ID.Hex()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var completed models.Task
	decodeJSON(t, w, &completed)
	assert.True(t, completed.Completed)
	require.NotNil(t, completed.CompletedAt)
	firstCompletedAt := *completed.CompletedAt

	// 重复完成：幂等，完成时间不变，不再产生副作用
	w = performJSON(t, router, http.MethodPut, "/api/tasks/"+task.ID.Hex()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var again models.Task
	decodeJSON(t, w, &again)
	assert.True(t, again.Completed)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, again.CompletedAt.Equal(firstCompletedAt))

	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{
		TargetType: models.ActivityTargetTask,
	})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestCompleteUnknownTask(t *testing.T) {
	router, _ := newTaskRouter(t)

	w := performJSON(t, router, http.MethodPut, "/api/tasks/0123456789abcdef01234567/complete", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTasksScopedToOwner(t *testing.T) {
	router, store := newTaskRouter(t)

	mine := &models.Task{Title: "我的任务", OwnerID: "user-1"}
	others := &models.Task{Title: "别人的任务", OwnerID: "user-2"}
	require.NoError(t, store.Tasks.Insert(context.Background(), mine))
	require.NoError(t, store.Tasks.Insert(context.Background(), others))

	w := performJSON(t, router, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tasks []models.Task `json:"tasks"`
	}
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "我的任务", resp.Tasks[0].Title)
}

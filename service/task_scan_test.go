package service

import (
	"context"
	"testing"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTask(t *testing.T, store *repository.Store, title string, due *time.Time, completed bool) *models.Task {
	t.Helper()
	now := time.Now()
	task := &models.Task{
		Title:     title,
		DueDate:   due,
		Completed: completed,
		OwnerID:   "owner-1",
		OwnerName: "张伟",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Tasks.Insert(context.Background(), task))
	return task
}

func TestScanOverdueNotifiesOwner(t *testing.T) {
	store := repository.NewInMemoryStore()

	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)
	seedTask(t, store, "回访未签约客户", &yesterday, false)
	seedTask(t, store, "已完成的逾期任务", &yesterday, true)
	seedTask(t, store, "未到期任务", &tomorrow, false)
	seedTask(t, store, "无截止时间任务", nil, false)

	NewTaskScanner(store).ScanOverdue(context.Background())

	// 只有逾期且未完成的任务产生提醒
	notifications, err := store.Notifications.List(context.Background(), "owner-1", false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeTaskOverdue, notifications[0].Type)
	assert.Contains(t, notifications[0].Title, "回访未签约客户")
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageChangedEvent() models.DomainEvent {
	return models.DomainEvent{
		Type:      models.EventDealStageChanged,
		ActorID:   "actor-1",
		ActorName: "李娜",
		TargetID:  "deal-1",
		Payload: map[string]string{
			"dealName": "华东数据中心扩容",
			"from":     "Prospecting",
			"to":       "Qualification",
			"ownerId":  "owner-1",
		},
		At: time.Now(),
	}
}

func TestEnqueueAndDispatchSuccess(t *testing.T) {
	store := repository.NewInMemoryStore()
	dispatcher := NewDispatcher(store)

	dispatcher.EnqueueAndDispatch(context.Background(), stageChangedEvent())

	// 投递成功后发件箱无待处理条目
	pending, err := store.Outbox.ListPending(context.Background(), 10, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)

	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityActionStageChanged, logs[0].Action)

	notifications, err := store.Notifications.List(context.Background(), "owner-1", true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
}

// flakyActivityRepo 可切换失败的活动日志仓储
type flakyActivityRepo struct {
	repository.ActivityLogRepository
	fail bool
}

func (r *flakyActivityRepo) Insert(ctx context.Context, entry *models.ActivityLog) error {
	if r.fail {
		return errors.New("数据库连接中断")
	}
	return r.ActivityLogRepository.Insert(ctx, entry)
}

func TestFailedDispatchDrainedByWorker(t *testing.T) {
	store := repository.NewInMemoryStore()
	flaky := &flakyActivityRepo{ActivityLogRepository: store.Activities, fail: true}
	store.Activities = flaky
	dispatcher := NewDispatcher(store)

	dispatcher.EnqueueAndDispatch(context.Background(), stageChangedEvent())

	// 投递失败的条目留在发件箱中等待重试
	pending, err := store.Outbox.ListPending(context.Background(), 10, 100)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.OutboxStatusFailed, pending[0].Status)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.NotEmpty(t, pending[0].LastError)

	// 故障恢复后由后台任务补投
	flaky.fail = false
	NewOutboxWorker(store, dispatcher, 10).Drain(context.Background())

	pending, err = store.Outbox.ListPending(context.Background(), 10, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)

	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	notifications, err := store.Notifications.List(context.Background(), "owner-1", false)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestOutboxEntrySkippedAfterMaxAttempts(t *testing.T) {
	store := repository.NewInMemoryStore()
	flaky := &flakyActivityRepo{ActivityLogRepository: store.Activities, fail: true}
	store.Activities = flaky
	dispatcher := NewDispatcher(store)

	dispatcher.EnqueueAndDispatch(context.Background(), stageChangedEvent())

	// 连续投递失败累计到上限后不再重试
	worker := NewOutboxWorker(store, dispatcher, 3)
	for i := 0; i < 5; i++ {
		worker.Drain(context.Background())
	}

	pending, err := store.Outbox.ListPending(context.Background(), 3, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestLeadCreatedNotifiesManagers(t *testing.T) {
	store := repository.NewInMemoryStore()
	dispatcher := NewDispatcher(store)

	manager1 := &models.User{Username: "王芳", Role: models.UserRoleMANAGER}
	manager2 := &models.User{Username: "刘洋", Role: models.UserRoleMANAGER}
	sales := &models.User{Username: "陈晨", Role: models.UserRoleSALES}
	require.NoError(t, store.Users.Insert(context.Background(), manager1))
	require.NoError(t, store.Users.Insert(context.Background(), manager2))
	require.NoError(t, store.Users.Insert(context.Background(), sales))

	err := dispatcher.Dispatch(context.Background(), models.DomainEvent{
		Type:      models.EventLeadCreated,
		ActorID:   "system",
		ActorName: "webhook",
		TargetID:  "lead-1",
		Payload:   map[string]string{"leadName": "某制造企业", "source": "官网表单"},
		At:        time.Now(),
	})
	require.NoError(t, err)

	for _, manager := range []*models.User{manager1, manager2} {
		notifications, err := store.Notifications.List(context.Background(), manager.ID.Hex(), false)
		require.NoError(t, err)
		assert.Len(t, notifications, 1)
	}
	notifications, err := store.Notifications.List(context.Background(), sales.ID.Hex(), false)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestTaskCompletedSkipsSelfNotification(t *testing.T) {
	store := repository.NewInMemoryStore()
	dispatcher := NewDispatcher(store)

	err := dispatcher.Dispatch(context.Background(), models.DomainEvent{
		Type:      models.EventTaskCompleted,
		ActorID:   "owner-1",
		ActorName: "张伟",
		TargetID:  "task-1",
		Payload:   map[string]string{"title": "回访客户", "ownerId": "owner-1"},
		At:        time.Now(),
	})
	require.NoError(t, err)

	// 自己完成自己的任务不通知自己
	notifications, err := store.Notifications.List(context.Background(), "owner-1", false)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{TargetType: models.ActivityTargetTask})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestUnknownEventTypeRejected(t *testing.T) {
	store := repository.NewInMemoryStore()
	dispatcher := NewDispatcher(store)

	err := dispatcher.Dispatch(context.Background(), models.DomainEvent{Type: "deal.deleted"})
	assert.Error(t, err)
}

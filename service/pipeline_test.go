package service

import (
	"context"
	"testing"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	m.Run()
}

// newPipelineFixture 构建带默认阶段配置的内存Store和管道服务
func newPipelineFixture(t *testing.T) (*repository.Store, *PipelineService) {
	t.Helper()
	store := repository.NewInMemoryStore()
	require.NoError(t, store.Stages.InsertMany(context.Background(), models.DefaultPipelineStages))
	return store, NewPipelineService(store, NewDispatcher(store), 3)
}

func seedDeal(t *testing.T, store *repository.Store, stage string, probability int, value float64) *models.Deal {
	t.Helper()
	now := time.Now()
	deal := &models.Deal{
		Name:        "华东数据中心扩容",
		Value:       value,
		Probability: probability,
		Stage:       stage,
		OwnerID:     "owner-1",
		OwnerName:   "张伟",
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.Deals.Insert(context.Background(), deal))
	return deal
}

func testActor() *utils.LoginUser {
	return &utils.LoginUser{ID: "actor-1", Role: string(models.UserRoleSALES), Username: "李娜"}
}

func TestTransitionDerivesProbabilityFromStage(t *testing.T) {
	store, svc := newPipelineFixture(t)
	deal := seedDeal(t, store, "Prospecting", 10, 50000)

	updated, err := svc.Transition(context.Background(), deal.ID.Hex(), "Qualification", testActor())
	require.NoError(t, err)

	assert.Equal(t, "Qualification", updated.Stage)
	assert.Equal(t, 25, updated.Probability)
	assert.Equal(t, int64(2), updated.Version)
	assert.Nil(t, updated.ClosedAt)

	// 副作用：活动日志 + 负责人通知
	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{
		TargetType: models.ActivityTargetDeal,
		TargetID:   deal.ID.Hex(),
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityActionStageChanged, logs[0].Action)

	notifications, err := store.Notifications.List(context.Background(), "owner-1", false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeStageChanged, notifications[0].Type)
}

func TestTransitionInvalidStage(t *testing.T) {
	store, svc := newPipelineFixture(t)
	deal := seedDeal(t, store, "Prospecting", 10, 50000)

	_, err := svc.Transition(context.Background(), deal.ID.Hex(), "Imagination", testActor())
	require.Error(t, err)

	apiErr, ok := err.(*utils.ApiError)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.ErrorCode)

	// 交易保持原状
	current, err := store.Deals.FindByID(context.Background(), deal.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Prospecting", current.Stage)
	assert.Equal(t, 10, current.Probability)
	assert.Equal(t, int64(1), current.Version)
}

func TestTransitionUnknownDeal(t *testing.T) {
	_, svc := newPipelineFixture(t)

	_, err := svc.Transition(context.Background(), primitive.NewObjectID().Hex(), "Qualification", testActor())
	require.Error(t, err)

	apiErr, ok := err.(*utils.ApiError)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "RESOURCE_NOT_FOUND", apiErr.ErrorCode)
}

func TestTransitionSameStageIdempotent(t *testing.T) {
	store, svc := newPipelineFixture(t)
	deal := seedDeal(t, store, "Proposal", 50, 80000)

	updated, err := svc.Transition(context.Background(), deal.ID.Hex(), "Proposal", testActor())
	require.NoError(t, err)
	assert.Equal(t, "Proposal", updated.Stage)
	assert.Equal(t, 50, updated.Probability)

	// 同阶段重复调用不产生副作用
	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	notifications, err := store.Notifications.List(context.Background(), "owner-1", false)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestTransitionWonStageSetsClosedAt(t *testing.T) {
	store, svc := newPipelineFixture(t)
	deal := seedDeal(t, store, "Negotiation", 75, 120000)

	updated, err := svc.Transition(context.Background(), deal.ID.Hex(), "Closed - Won", testActor())
	require.NoError(t, err)

	assert.Equal(t, 100, updated.Probability)
	require.NotNil(t, updated.ClosedAt)
	assert.WithinDuration(t, time.Now(), *updated.ClosedAt, 5*time.Second)
}

// conflictDealRepo 模拟始终CAS失败的交易仓储
type conflictDealRepo struct {
	repository.DealRepository
	attempts int
}

func (r *conflictDealRepo) UpdateStageCAS(context.Context, string, int64, string, int, *time.Time) (*models.Deal, error) {
	r.attempts++
	return nil, repository.ErrVersionConflict
}

func TestTransitionConflictAfterRetries(t *testing.T) {
	store, _ := newPipelineFixture(t)
	deal := seedDeal(t, store, "Prospecting", 10, 50000)

	conflicting := &conflictDealRepo{DealRepository: store.Deals}
	store.Deals = conflicting
	svc := NewPipelineService(store, NewDispatcher(store), 3)

	_, err := svc.Transition(context.Background(), deal.ID.Hex(), "Qualification", testActor())
	require.Error(t, err)

	apiErr, ok := err.(*utils.ApiError)
	require.True(t, ok)
	assert.Equal(t, 409, apiErr.StatusCode)
	assert.Equal(t, "VERSION_CONFLICT", apiErr.ErrorCode)
	assert.Equal(t, 3, conflicting.attempts)

	// 冲突失败不触发副作用
	logs, err := store.Activities.List(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestBoardIncludesEmptyStages(t *testing.T) {
	store, svc := newPipelineFixture(t)
	seedDeal(t, store, "Prospecting", 10, 50000)
	seedDeal(t, store, "Closed - Won", 100, 90000)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)

	// 所有配置阶段都出现在看板中，没有交易的阶段为空数组
	require.Len(t, board.Stages, len(models.DefaultPipelineStages))
	for _, stage := range board.Stages {
		group, ok := board.Pipeline[stage.Label]
		require.True(t, ok, "阶段 %s 缺失", stage.Label)
		assert.NotNil(t, group)
	}
	assert.Len(t, board.Pipeline["Prospecting"], 1)
	assert.Empty(t, board.Pipeline["Qualification"])

	assert.Equal(t, 2, board.Stats.TotalCount)
	assert.Equal(t, float64(140000), board.Stats.TotalValue)
	assert.Equal(t, 1, board.Stats.OpenCount)
	assert.Equal(t, float64(50000), board.Stats.OpenValue)
}

package service

import (
	"context"
	"testing"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyticsFixture(t *testing.T) (*repository.Store, *AnalyticsService) {
	t.Helper()
	store := repository.NewInMemoryStore()
	require.NoError(t, store.Stages.InsertMany(context.Background(), models.DefaultPipelineStages))
	return store, NewAnalyticsService(store)
}

func TestComputeEmptyPipeline(t *testing.T) {
	_, svc := newAnalyticsFixture(t)

	result, err := svc.Compute(context.Background())
	require.NoError(t, err)

	// 没有交易时所有指标为0，不出现除零错误
	assert.Zero(t, result.WinRate)
	assert.Zero(t, result.AvgDealValue)
	assert.Zero(t, result.Forecast)
	assert.Zero(t, result.TotalPipelineValue)

	require.Len(t, result.ByStage, len(models.DefaultPipelineStages))
	for _, summary := range result.ByStage {
		assert.Zero(t, summary.Count)
		assert.Zero(t, summary.Value)
	}
}

func TestComputeWinRateWithoutClosedDeals(t *testing.T) {
	store, svc := newAnalyticsFixture(t)
	seedDeal(t, store, "Prospecting", 10, 1000)
	seedDeal(t, store, "Proposal", 50, 2000)

	result, err := svc.Compute(context.Background())
	require.NoError(t, err)

	// 没有已关闭交易时赢单率为0
	assert.Zero(t, result.WinRate)
	assert.InDelta(t, 1500, result.AvgDealValue, 0.001)
}

func TestComputeMixedPipeline(t *testing.T) {
	store, svc := newAnalyticsFixture(t)
	seedDeal(t, store, "Prospecting", 10, 1000)
	seedDeal(t, store, "Proposal", 50, 2000)
	seedDeal(t, store, "Closed - Won", 100, 3000)
	seedDeal(t, store, "Closed - Lost", 0, 500)

	result, err := svc.Compute(context.Background())
	require.NoError(t, err)

	// 1赢1输 → 赢单率50%
	assert.InDelta(t, 0.5, result.WinRate, 0.001)
	// (1000+2000+3000+500)/4
	assert.InDelta(t, 1625, result.AvgDealValue, 0.001)
	// 加权预测只计开放交易: 1000×10% + 2000×50%
	assert.InDelta(t, 1100, result.Forecast, 0.001)
	// 开放交易总值
	assert.InDelta(t, 3000, result.TotalPipelineValue, 0.001)

	byStage := make(map[string]models.StageSummary, len(result.ByStage))
	for _, summary := range result.ByStage {
		byStage[summary.Stage] = summary
	}
	assert.Equal(t, 1, byStage["Prospecting"].Count)
	assert.InDelta(t, 2000, byStage["Proposal"].Value, 0.001)
	assert.Equal(t, 1, byStage["Closed - Won"].Count)
	assert.Zero(t, byStage["Negotiation"].Count)
}

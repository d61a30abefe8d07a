package service

import (
	"context"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
)

// AnalyticsService 管道分析：每次请求对当前交易全量重算，不做缓存
type AnalyticsService struct {
	store *repository.Store
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Compute 计算管道分析指标。
// 没有已关闭交易时赢单率为0，不产生除零错误。
func (s *AnalyticsService) Compute(ctx context.Context) (*models.PipelineAnalytics, error) {
	stages, err := s.store.Stages.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	deals, err := s.store.Deals.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	wonStages := make(map[string]bool)
	lostStages := make(map[string]bool)
	byStage := make(map[string]*models.StageSummary, len(stages))
	for _, stage := range stages {
		if stage.IsWon {
			wonStages[stage.Label] = true
		}
		if stage.IsLost {
			lostStages[stage.Label] = true
		}
		byStage[stage.Label] = &models.StageSummary{Stage: stage.Label}
	}

	result := &models.PipelineAnalytics{ByStage: []models.StageSummary{}}

	var wonCount, lostCount int
	var totalValue float64

	for _, deal := range deals {
		totalValue += deal.Value

		if summary, ok := byStage[deal.Stage]; ok {
			summary.Count++
			summary.Value += deal.Value
		}

		switch {
		case wonStages[deal.Stage]:
			wonCount++
		case lostStages[deal.Stage]:
			lostCount++
		default:
			// 开放交易计入管道总值和加权预测
			result.TotalPipelineValue += deal.Value
			result.Forecast += deal.Value * float64(deal.Probability) / 100
		}
	}

	if closedCount := wonCount + lostCount; closedCount > 0 {
		result.WinRate = float64(wonCount) / float64(closedCount)
	}
	if len(deals) > 0 {
		result.AvgDealValue = totalValue / float64(len(deals))
	}

	// 按配置顺序输出阶段汇总
	for _, stage := range stages {
		result.ByStage = append(result.ByStage, *byStage[stage.Label])
	}

	return result, nil
}

package service

import (
	"context"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"
)

// PipelineService 管道阶段变更服务
type PipelineService struct {
	store      *repository.Store
	dispatcher *Dispatcher
	maxRetry   int
}

// NewPipelineService 创建管道服务
func NewPipelineService(store *repository.Store, dispatcher *Dispatcher, maxRetry int) *PipelineService {
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &PipelineService{
		store:      store,
		dispatcher: dispatcher,
		maxRetry:   maxRetry,
	}
}

// Transition 将交易从当前阶段移动到目标阶段。
// 概率由目标阶段配置派生；更新以版本号做CAS，冲突时重新加载并重试。
func (s *PipelineService) Transition(ctx context.Context, dealID string, targetStage string, actor *utils.LoginUser) (*models.Deal, error) {
	// 校验目标阶段
	stage, err := s.store.Stages.FindByLabel(ctx, targetStage)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, utils.CreateValidationError("无效的管道阶段: " + targetStage)
		}
		return nil, err
	}

	var closedAt *time.Time
	if stage.IsWon || stage.IsLost {
		now := time.Now()
		closedAt = &now
	}

	var fromStage string
	var updated *models.Deal

	for attempt := 0; attempt < s.maxRetry; attempt++ {
		deal, err := s.store.Deals.FindByID(ctx, dealID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, utils.CreateNotFoundError("交易")
			}
			return nil, err
		}
		fromStage = deal.Stage

		updated, err = s.store.Deals.UpdateStageCAS(ctx, dealID, deal.Version, stage.Label, stage.Probability, closedAt)
		if err == repository.ErrVersionConflict {
			utils.Logger.Warn().
				Str("dealId", dealID).
				Int("attempt", attempt+1).
				Msg("阶段变更版本冲突，重新加载后重试")
			continue
		}
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, utils.CreateNotFoundError("交易")
			}
			return nil, err
		}
		break
	}

	if updated == nil {
		return nil, utils.CreateConflictError("交易")
	}

	utils.LogInfo(map[string]interface{}{
		"dealId":      dealID,
		"from":        fromStage,
		"to":          stage.Label,
		"probability": stage.Probability,
	}, "交易阶段变更成功")

	// 同阶段的重复调用不产生副作用
	if fromStage != stage.Label {
		s.dispatcher.EnqueueAndDispatch(ctx, models.DomainEvent{
			Type:      models.EventDealStageChanged,
			ActorID:   actor.ID,
			ActorName: actor.Username,
			TargetID:  updated.ID.Hex(),
			Payload: map[string]string{
				"dealName": updated.Name,
				"from":     fromStage,
				"to":       stage.Label,
				"ownerId":  updated.OwnerID,
			},
			At: time.Now(),
		})
	}

	return updated, nil
}

// PipelineBoard 看板视图：交易按阶段分组，所有配置阶段都出现在结果中
type PipelineBoard struct {
	Stages   []models.PipelineStage   `json:"stages"`
	Pipeline map[string][]models.Deal `json:"pipeline"`
	Stats    models.PipelineStats     `json:"stats"`
}

// Board 构建管道看板视图
func (s *PipelineService) Board(ctx context.Context) (*PipelineBoard, error) {
	stages, err := s.store.Stages.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	deals, err := s.store.Deals.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	board := &PipelineBoard{
		Stages:   stages,
		Pipeline: make(map[string][]models.Deal, len(stages)),
	}

	closed := make(map[string]bool, len(stages))
	for _, stage := range stages {
		board.Pipeline[stage.Label] = []models.Deal{}
		if stage.IsWon || stage.IsLost {
			closed[stage.Label] = true
		}
	}

	for _, deal := range deals {
		// 阶段配置中不存在的历史数据不丢弃，单独成组
		board.Pipeline[deal.Stage] = append(board.Pipeline[deal.Stage], deal)

		board.Stats.TotalCount++
		board.Stats.TotalValue += deal.Value
		if !closed[deal.Stage] {
			board.Stats.OpenCount++
			board.Stats.OpenValue += deal.Value
		}
	}

	return board, nil
}

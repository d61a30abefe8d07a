package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/google/uuid"
)

// Dispatcher 副作用分发器：把已完成的领域事件映射为活动日志和通知
type Dispatcher struct {
	store *repository.Store
}

// NewDispatcher 创建副作用分发器
func NewDispatcher(store *repository.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// EnqueueAndDispatch 先写入发件箱再尝试立即投递。
// 投递失败只记录在发件箱条目上，由后台任务重试，不向调用方传播。
func (d *Dispatcher) EnqueueAndDispatch(ctx context.Context, event models.DomainEvent) {
	entry := &models.OutboxEntry{
		EventID:   uuid.NewString(),
		Event:     event,
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now(),
	}

	if err := d.store.Outbox.Insert(ctx, entry); err != nil {
		// 发件箱写入失败时直接投递，尽力而为
		utils.LogError2("写入发件箱失败，尝试直接投递", err, map[string]interface{}{
			"eventType": event.Type,
			"targetId":  event.TargetID,
		})
		if dispatchErr := d.Dispatch(ctx, event); dispatchErr != nil {
			utils.LogError2("事件投递失败", dispatchErr, map[string]interface{}{
				"eventType": event.Type,
				"targetId":  event.TargetID,
			})
		}
		return
	}

	if err := d.Dispatch(ctx, event); err != nil {
		utils.LogError2("事件投递失败，等待后台重试", err, map[string]interface{}{
			"eventId":   entry.EventID,
			"eventType": event.Type,
		})
		if markErr := d.store.Outbox.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			utils.LogError2("标记发件箱条目失败", markErr, map[string]interface{}{"eventId": entry.EventID})
		}
		return
	}

	if err := d.store.Outbox.MarkDispatched(ctx, entry.ID, time.Now()); err != nil {
		utils.LogError2("标记发件箱条目已投递失败", err, map[string]interface{}{"eventId": entry.EventID})
	}
}

// Dispatch 将单个事件映射为活动日志和通知写入
func (d *Dispatcher) Dispatch(ctx context.Context, event models.DomainEvent) error {
	switch event.Type {
	case models.EventDealStageChanged:
		return d.dispatchStageChanged(ctx, event)
	case models.EventLeadCreated:
		return d.dispatchLeadCreated(ctx, event)
	case models.EventTaskCompleted:
		return d.dispatchTaskCompleted(ctx, event)
	default:
		return fmt.Errorf("未知的事件类型: %s", event.Type)
	}
}

func (d *Dispatcher) dispatchStageChanged(ctx context.Context, event models.DomainEvent) error {
	dealName := event.Payload["dealName"]
	from := event.Payload["from"]
	to := event.Payload["to"]

	entry := &models.ActivityLog{
		ActorID:    event.ActorID,
		ActorName:  event.ActorName,
		Action:     models.ActivityActionStageChanged,
		TargetType: models.ActivityTargetDeal,
		TargetID:   event.TargetID,
		Detail:     fmt.Sprintf("交易 %s 阶段从 %s 变更为 %s", dealName, from, to),
		CreatedAt:  event.At,
	}
	if err := d.store.Activities.Insert(ctx, entry); err != nil {
		return fmt.Errorf("写入活动日志失败: %w", err)
	}

	// 通知交易负责人
	recipientID := event.Payload["ownerId"]
	if recipientID == "" {
		return nil
	}
	notification := &models.Notification{
		Type:        models.NotificationTypeStageChanged,
		Title:       fmt.Sprintf("交易阶段变更: %s", dealName),
		Description: fmt.Sprintf("%s 将阶段从 %s 调整为 %s", event.ActorName, from, to),
		RecipientID: recipientID,
		CreatedAt:   event.At,
	}
	if err := d.store.Notifications.Insert(ctx, notification); err != nil {
		return fmt.Errorf("写入通知失败: %w", err)
	}
	return nil
}

func (d *Dispatcher) dispatchLeadCreated(ctx context.Context, event models.DomainEvent) error {
	leadName := event.Payload["leadName"]
	source := event.Payload["source"]

	entry := &models.ActivityLog{
		ActorID:    event.ActorID,
		ActorName:  event.ActorName,
		Action:     models.ActivityActionLeadCreated,
		TargetType: models.ActivityTargetLead,
		TargetID:   event.TargetID,
		Detail:     fmt.Sprintf("新线索 %s (来源: %s)", leadName, source),
		CreatedAt:  event.At,
	}
	if err := d.store.Activities.Insert(ctx, entry); err != nil {
		return fmt.Errorf("写入活动日志失败: %w", err)
	}

	// 新线索通知所有销售主管
	managers, err := d.store.Users.ListByRole(ctx, models.UserRoleMANAGER)
	if err != nil {
		return fmt.Errorf("查询销售主管失败: %w", err)
	}
	for _, manager := range managers {
		notification := &models.Notification{
			Type:        models.NotificationTypeLeadCreated,
			Title:       fmt.Sprintf("新线索: %s", leadName),
			Description: fmt.Sprintf("来源: %s", source),
			RecipientID: manager.ID.Hex(),
			CreatedAt:   event.At,
		}
		if err := d.store.Notifications.Insert(ctx, notification); err != nil {
			return fmt.Errorf("写入通知失败: %w", err)
		}
	}
	return nil
}

func (d *Dispatcher) dispatchTaskCompleted(ctx context.Context, event models.DomainEvent) error {
	title := event.Payload["title"]

	entry := &models.ActivityLog{
		ActorID:    event.ActorID,
		ActorName:  event.ActorName,
		Action:     models.ActivityActionTaskCompleted,
		TargetType: models.ActivityTargetTask,
		TargetID:   event.TargetID,
		Detail:     fmt.Sprintf("任务 %s 已完成", title),
		CreatedAt:  event.At,
	}
	if err := d.store.Activities.Insert(ctx, entry); err != nil {
		return fmt.Errorf("写入活动日志失败: %w", err)
	}

	recipientID := event.Payload["ownerId"]
	if recipientID == "" || recipientID == event.ActorID {
		return nil
	}
	notification := &models.Notification{
		Type:        models.NotificationTypeTaskDone,
		Title:       fmt.Sprintf("任务已完成: %s", title),
		Description: fmt.Sprintf("由 %s 完成", event.ActorName),
		RecipientID: recipientID,
		CreatedAt:   event.At,
	}
	if err := d.store.Notifications.Insert(ctx, notification); err != nil {
		return fmt.Errorf("写入通知失败: %w", err)
	}
	return nil
}

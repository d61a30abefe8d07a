package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"
)

// TaskScanner 每日逾期任务扫描，给任务负责人生成提醒通知
type TaskScanner struct {
	store *repository.Store
}

// NewTaskScanner 创建逾期任务扫描器
func NewTaskScanner(store *repository.Store) *TaskScanner {
	return &TaskScanner{store: store}
}

// ScanOverdue 扫描逾期未完成的任务并逐条生成通知
func (s *TaskScanner) ScanOverdue(ctx context.Context) {
	now := time.Now()
	utils.LogInfo(map[string]interface{}{"time": now}, "开始执行逾期任务检查")

	tasks, err := s.store.Tasks.ListOverdue(ctx, now)
	if err != nil {
		utils.LogError2("查询逾期任务失败", err, nil)
		return
	}

	var notified int
	for _, task := range tasks {
		notification := &models.Notification{
			Type:        models.NotificationTypeTaskOverdue,
			Title:       fmt.Sprintf("任务已逾期: %s", task.Title),
			Description: fmt.Sprintf("截止时间 %s，任务ID %s", task.DueDate.Format("2006-01-02 15:04"), task.ID.Hex()),
			RecipientID: task.OwnerID,
			CreatedAt:   now,
		}
		if err := s.store.Notifications.Insert(ctx, notification); err != nil {
			utils.LogError2("写入逾期任务通知失败", err, map[string]interface{}{
				"taskId": task.ID.Hex(),
			})
			continue
		}
		notified++
	}

	utils.LogInfo(map[string]interface{}{
		"overdue":  len(tasks),
		"notified": notified,
	}, "逾期任务检查完成")
}

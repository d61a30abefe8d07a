package service

import (
	"context"
	"time"

	"github.com/sailcrm/crm_server/config"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/robfig/cron/v3"
)

// OutboxWorker 发件箱投递任务，对未投递的事件做至少一次重试
type OutboxWorker struct {
	store      *repository.Store
	dispatcher *Dispatcher
	maxRetry   int
	batchSize  int64
}

// NewOutboxWorker 创建发件箱投递任务
func NewOutboxWorker(store *repository.Store, dispatcher *Dispatcher, maxRetry int) *OutboxWorker {
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return &OutboxWorker{
		store:      store,
		dispatcher: dispatcher,
		maxRetry:   maxRetry,
		batchSize:  100,
	}
}

// Drain 取出待投递条目逐个投递
func (w *OutboxWorker) Drain(ctx context.Context) {
	entries, err := w.store.Outbox.ListPending(ctx, w.maxRetry, w.batchSize)
	if err != nil {
		utils.LogError2("读取发件箱失败", err, nil)
		return
	}

	if len(entries) == 0 {
		return
	}

	var delivered, failed int
	for _, entry := range entries {
		if err := w.dispatcher.Dispatch(ctx, entry.Event); err != nil {
			failed++
			if markErr := w.store.Outbox.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
				utils.LogError2("标记发件箱条目失败", markErr, map[string]interface{}{"eventId": entry.EventID})
			}
			continue
		}

		delivered++
		if err := w.store.Outbox.MarkDispatched(ctx, entry.ID, time.Now()); err != nil {
			utils.LogError2("标记发件箱条目已投递失败", err, map[string]interface{}{"eventId": entry.EventID})
		}
	}

	utils.LogInfo(map[string]interface{}{
		"total":     len(entries),
		"delivered": delivered,
		"failed":    failed,
	}, "发件箱投递完成")
}

// StartWorkers 注册并启动后台定时任务
func StartWorkers(cfg *config.Config, store *repository.Store, dispatcher *Dispatcher) (*cron.Cron, error) {
	c := cron.New()

	outbox := NewOutboxWorker(store, dispatcher, cfg.OutboxMaxRetry)
	if _, err := c.AddFunc(cfg.OutboxSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		outbox.Drain(ctx)
	}); err != nil {
		return nil, err
	}

	scanner := NewTaskScanner(store)
	if _, err := c.AddFunc(cfg.TaskScanSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		scanner.ScanOverdue(ctx)
	}); err != nil {
		return nil, err
	}

	c.Start()
	utils.Logger.Info().
		Str("outbox", cfg.OutboxSpec).
		Str("taskScan", cfg.TaskScanSpec).
		Msg("后台定时任务已启动")
	return c, nil
}

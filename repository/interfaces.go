package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 仓储层通用错误
var (
	ErrNotFound        = errors.New("记录不存在")
	ErrVersionConflict = errors.New("版本冲突")
)

// Store 持久化句柄，显式注入各控制器和服务，不使用包级全局状态
type Store struct {
	Deals         DealRepository
	Leads         LeadRepository
	Stages        StageRepository
	Activities    ActivityLogRepository
	Notifications NotificationRepository
	Tasks         TaskRepository
	Outbox        OutboxRepository
	Users         UserRepository
	Attendance    AttendanceRepository
	OperationLogs OperationLogRepository
}

// DealRepository 交易仓储
type DealRepository interface {
	Insert(ctx context.Context, deal *models.Deal) error
	FindByID(ctx context.Context, id string) (*models.Deal, error)
	ListAll(ctx context.Context) ([]models.Deal, error)
	// UpdateStageCAS 按 {_id, version} 条件更新阶段并递增版本号，
	// 版本不匹配时返回 ErrVersionConflict
	UpdateStageCAS(ctx context.Context, id string, version int64, stage string, probability int, closedAt *time.Time) (*models.Deal, error)
}

// LeadRepository 线索仓储
type LeadRepository interface {
	Insert(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	FindByEmail(ctx context.Context, email string) (*models.Lead, error)
	List(ctx context.Context) ([]models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
}

// StageRepository 管道阶段仓储
type StageRepository interface {
	ListOrdered(ctx context.Context) ([]models.PipelineStage, error)
	FindByLabel(ctx context.Context, label string) (*models.PipelineStage, error)
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, stages []models.PipelineStage) error
}

// ActivityFilter 活动日志查询条件
type ActivityFilter struct {
	TargetType string
	TargetID   string
	Limit      int64
}

// ActivityLogRepository 活动日志仓储，只追加
type ActivityLogRepository interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter) ([]models.ActivityLog, error)
}

// NotificationRepository 通知仓储
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// TaskRepository 任务仓储
type TaskRepository interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)
	// Complete 将任务标记为完成；已完成的任务原样返回，不报错
	Complete(ctx context.Context, id string, at time.Time) (*models.Task, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.Task, error)
}

// OutboxRepository 发件箱仓储
type OutboxRepository interface {
	Insert(ctx context.Context, entry *models.OutboxEntry) error
	ListPending(ctx context.Context, maxAttempts int, limit int64) ([]models.OutboxEntry, error)
	MarkDispatched(ctx context.Context, id primitive.ObjectID, at time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error
}

// UserRepository 用户仓储
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// AttendanceRepository 考勤仓储
type AttendanceRepository interface {
	Insert(ctx context.Context, record *models.Attendance) error
	FindByUserDate(ctx context.Context, userID string, date string) (*models.Attendance, error)
	SetCheckOut(ctx context.Context, id primitive.ObjectID, at time.Time) error
	ListByUser(ctx context.Context, userID string, from string, to string) ([]models.Attendance, error)
}

// OperationLogRepository API操作日志仓储
type OperationLogRepository interface {
	Insert(ctx context.Context, log *models.OperationLog) error
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewInMemoryStore 构建内存版Store，用于测试和无MongoDB的本地开发
func NewInMemoryStore() *Store {
	return &Store{
		Deals:         &inmemDealRepo{deals: map[string]models.Deal{}},
		Leads:         &inmemLeadRepo{leads: map[string]models.Lead{}},
		Stages:        &inmemStageRepo{},
		Activities:    &inmemActivityRepo{},
		Notifications: &inmemNotificationRepo{},
		Tasks:         &inmemTaskRepo{tasks: map[string]models.Task{}},
		Outbox:        &inmemOutboxRepo{},
		Users:         &inmemUserRepo{users: map[string]models.User{}},
		Attendance:    &inmemAttendanceRepo{},
		OperationLogs: &inmemOperationLogRepo{},
	}
}

type inmemDealRepo struct {
	mu    sync.RWMutex
	deals map[string]models.Deal
}

func (r *inmemDealRepo) Insert(_ context.Context, deal *models.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deal.ID.IsZero() {
		deal.ID = primitive.NewObjectID()
	}
	r.deals[deal.ID.Hex()] = *deal
	return nil
}

func (r *inmemDealRepo) FindByID(_ context.Context, id string) (*models.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deal, ok := r.deals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &deal, nil
}

func (r *inmemDealRepo) ListAll(_ context.Context) ([]models.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deals := make([]models.Deal, 0, len(r.deals))
	for _, deal := range r.deals {
		deals = append(deals, deal)
	}
	sort.Slice(deals, func(i, j int) bool {
		return deals[i].CreatedAt.After(deals[j].CreatedAt)
	})
	return deals, nil
}

func (r *inmemDealRepo) UpdateStageCAS(_ context.Context, id string, version int64, stage string, probability int, closedAt *time.Time) (*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deal, ok := r.deals[id]
	if !ok {
		return nil, ErrNotFound
	}
	if deal.Version != version {
		return nil, ErrVersionConflict
	}
	deal.Stage = stage
	deal.Probability = probability
	deal.Version++
	deal.UpdatedAt = time.Now()
	if closedAt != nil {
		t := *closedAt
		deal.ClosedAt = &t
	}
	r.deals[id] = deal
	return &deal, nil
}

type inmemLeadRepo struct {
	mu    sync.RWMutex
	leads map[string]models.Lead
}

func (r *inmemLeadRepo) Insert(_ context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lead.ID.IsZero() {
		lead.ID = primitive.NewObjectID()
	}
	r.leads[lead.ID.Hex()] = *lead
	return nil
}

func (r *inmemLeadRepo) FindByID(_ context.Context, id string) (*models.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &lead, nil
}

func (r *inmemLeadRepo) FindByEmail(_ context.Context, email string) (*models.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lead := range r.leads {
		if lead.Email == email {
			found := lead
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *inmemLeadRepo) List(_ context.Context) ([]models.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	leads := make([]models.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		leads = append(leads, lead)
	}
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
	return leads, nil
}

func (r *inmemLeadRepo) Update(_ context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[lead.ID.Hex()]; !ok {
		return ErrNotFound
	}
	r.leads[lead.ID.Hex()] = *lead
	return nil
}

type inmemStageRepo struct {
	mu     sync.RWMutex
	stages []models.PipelineStage
}

func (r *inmemStageRepo) ListOrdered(_ context.Context) ([]models.PipelineStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stages := make([]models.PipelineStage, len(r.stages))
	copy(stages, r.stages)
	sort.Slice(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })
	return stages, nil
}

func (r *inmemStageRepo) FindByLabel(_ context.Context, label string) (*models.PipelineStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stage := range r.stages {
		if stage.Label == label {
			found := stage
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *inmemStageRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.stages)), nil
}

func (r *inmemStageRepo) InsertMany(_ context.Context, stages []models.PipelineStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stage := range stages {
		if stage.ID.IsZero() {
			stage.ID = primitive.NewObjectID()
		}
		r.stages = append(r.stages, stage)
	}
	return nil
}

type inmemActivityRepo struct {
	mu      sync.RWMutex
	entries []models.ActivityLog
}

func (r *inmemActivityRepo) Insert(_ context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inmemActivityRepo) List(_ context.Context, filter ActivityFilter) ([]models.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []models.ActivityLog
	for _, entry := range r.entries {
		if filter.TargetType != "" && entry.TargetType != filter.TargetType {
			continue
		}
		if filter.TargetID != "" && entry.TargetID != filter.TargetID {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if filter.Limit > 0 && int64(len(entries)) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

type inmemNotificationRepo struct {
	mu            sync.RWMutex
	notifications []models.Notification
}

func (r *inmemNotificationRepo) Insert(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *inmemNotificationRepo) List(_ context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (r *inmemNotificationRepo) MarkRead(_ context.Context, id string, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *inmemNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for i, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			r.notifications[i].Read = true
			count++
		}
	}
	return count, nil
}

type inmemTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

func (r *inmemTaskRepo) Insert(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	r.tasks[task.ID.Hex()] = *task
	return nil
}

func (r *inmemTaskRepo) FindByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &task, nil
}

func (r *inmemTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []models.Task
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Completed != tasks[j].Completed {
			return !tasks[i].Completed
		}
		return tasks[i].Priority > tasks[j].Priority
	})
	return tasks, nil
}

func (r *inmemTaskRepo) Complete(_ context.Context, id string, at time.Time) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if task.Completed {
		return &task, nil
	}
	task.Completed = true
	task.CompletedAt = &at
	task.UpdatedAt = at
	r.tasks[id] = task
	return &task, nil
}

func (r *inmemTaskRepo) ListOverdue(_ context.Context, now time.Time) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []models.Task
	for _, task := range r.tasks {
		if !task.Completed && task.DueDate != nil && task.DueDate.Before(now) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

type inmemOutboxRepo struct {
	mu      sync.RWMutex
	entries []models.OutboxEntry
}

func (r *inmemOutboxRepo) Insert(_ context.Context, entry *models.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inmemOutboxRepo) ListPending(_ context.Context, maxAttempts int, limit int64) ([]models.OutboxEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.OutboxEntry
	for _, entry := range r.entries {
		if entry.Status == models.OutboxStatusDispatched {
			continue
		}
		if entry.Attempts >= maxAttempts {
			continue
		}
		result = append(result, entry)
		if limit > 0 && int64(len(result)) >= limit {
			break
		}
	}
	return result, nil
}

func (r *inmemOutboxRepo) MarkDispatched(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.ID == id {
			t := at
			r.entries[i].Status = models.OutboxStatusDispatched
			r.entries[i].DispatchedAt = &t
			return nil
		}
	}
	return ErrNotFound
}

func (r *inmemOutboxRepo) MarkFailed(_ context.Context, id primitive.ObjectID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.ID == id {
			r.entries[i].Status = models.OutboxStatusFailed
			r.entries[i].LastError = errMsg
			r.entries[i].Attempts++
			return nil
		}
	}
	return ErrNotFound
}

type inmemUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func (r *inmemUserRepo) Insert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID.Hex()] = *user
	return nil
}

func (r *inmemUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *inmemUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *inmemUserRepo) CountByRole(_ context.Context, role models.UserRole) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *inmemUserRepo) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []models.User
	for _, user := range r.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

type inmemAttendanceRepo struct {
	mu      sync.RWMutex
	records []models.Attendance
}

func (r *inmemAttendanceRepo) Insert(_ context.Context, record *models.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *inmemAttendanceRepo) FindByUserDate(_ context.Context, userID string, date string) (*models.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.UserID == userID && record.Date == date {
			found := record
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *inmemAttendanceRepo) SetCheckOut(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, record := range r.records {
		if record.ID == id {
			t := at
			r.records[i].CheckOutAt = &t
			return nil
		}
	}
	return ErrNotFound
}

func (r *inmemAttendanceRepo) ListByUser(_ context.Context, userID string, from string, to string) ([]models.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var records []models.Attendance
	for _, record := range r.records {
		if record.UserID != userID {
			continue
		}
		if from != "" && record.Date < from {
			continue
		}
		if to != "" && record.Date > to {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return records, nil
}

type inmemOperationLogRepo struct {
	mu   sync.Mutex
	logs []models.OperationLog
}

func (r *inmemOperationLogRepo) Insert(_ context.Context, log *models.OperationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

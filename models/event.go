package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 领域事件类型常量
const (
	EventDealStageChanged = "deal.stage_changed"
	EventLeadCreated      = "lead.created"
	EventTaskCompleted    = "task.completed"
)

// DomainEvent 已完成的领域事件，由副作用分发器消费
type DomainEvent struct {
	Type      string            `bson:"type" json:"type"`
	ActorID   string            `bson:"actorId" json:"actorId"`
	ActorName string            `bson:"actorName" json:"actorName"`
	TargetID  string            `bson:"targetId" json:"targetId"`
	Payload   map[string]string `bson:"payload" json:"payload"`
	At        time.Time         `bson:"at" json:"at"`
}

// 发件箱条目状态常量
const (
	OutboxStatusPending    = "pending"
	OutboxStatusDispatched = "dispatched"
	OutboxStatusFailed     = "failed"
)

// OutboxEntry 发件箱条目，保证副作用至少投递一次
type OutboxEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	EventID      string             `bson:"eventId" json:"eventId"`
	Event        DomainEvent        `bson:"event" json:"event"`
	Status       string             `bson:"status" json:"status"`
	Attempts     int                `bson:"attempts" json:"attempts"`
	LastError    string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	DispatchedAt *time.Time         `bson:"dispatchedAt,omitempty" json:"dispatchedAt,omitempty"`
}

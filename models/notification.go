package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification 站内通知，只允许翻转已读标记
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	RecipientID string             `bson:"recipientId" json:"recipientId"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// 通知类型常量
const (
	NotificationTypeStageChanged = "deal_stage_changed"
	NotificationTypeLeadCreated  = "lead_created"
	NotificationTypeTaskDone     = "task_completed"
	NotificationTypeTaskOverdue  = "task_overdue"
)

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog 活动日志，仅追加，正常业务流程中不更新不删除
type ActivityLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ActorID    string             `bson:"actorId" json:"actorId"`
	ActorName  string             `bson:"actorName" json:"actorName"`
	Action     string             `bson:"action" json:"action"`
	TargetType string             `bson:"targetType" json:"targetType"`
	TargetID   string             `bson:"targetId" json:"targetId"`
	Detail     string             `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// 活动目标类型常量
const (
	ActivityTargetDeal = "deal"
	ActivityTargetLead = "lead"
	ActivityTargetTask = "task"
)

// 活动动作常量
const (
	ActivityActionStageChanged  = "deal.stage_changed"
	ActivityActionLeadCreated   = "lead.created"
	ActivityActionTaskCompleted = "task.completed"
)

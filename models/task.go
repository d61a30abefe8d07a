package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task 待办任务/跟进
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	DueDate     *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Priority    int                `bson:"priority" json:"priority"`
	LeadID      string             `bson:"leadId,omitempty" json:"leadId,omitempty"`
	DealID      string             `bson:"dealId,omitempty" json:"dealId,omitempty"`
	OwnerID     string             `bson:"ownerId" json:"ownerId"`
	OwnerName   string             `bson:"ownerName" json:"ownerName"`

	// AI建议字段，由外部生成后透传存储
	AISuggestedMessage string `bson:"aiSuggestedMessage,omitempty" json:"aiSuggestedMessage,omitempty"`
	AIBestContactTime  string `bson:"aiBestContactTime,omitempty" json:"aiBestContactTime,omitempty"`
	AIActionType       string `bson:"aiActionType,omitempty" json:"aiActionType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TaskCreateRequest 创建任务请求
type TaskCreateRequest struct {
	Title              string     `json:"title" binding:"required"`
	DueDate            *time.Time `json:"dueDate"`
	Priority           int        `json:"priority" binding:"omitempty,gte=0,lte=100"`
	LeadID             string     `json:"leadId"`
	DealID             string     `json:"dealId"`
	AISuggestedMessage string     `json:"aiSuggestedMessage"`
	AIBestContactTime  string     `json:"aiBestContactTime"`
	AIActionType       string     `json:"aiActionType"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 线索状态常量
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// 线索意向度常量
const (
	LeadTemperatureHot  = "hot"
	LeadTemperatureWarm = "warm"
	LeadTemperatureCold = "cold"
)

// Lead 销售线索
type Lead struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Company     string             `bson:"company,omitempty" json:"company,omitempty"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Source      string             `bson:"source,omitempty" json:"source,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Temperature string             `bson:"temperature,omitempty" json:"temperature,omitempty"`
	Score       int                `bson:"score" json:"score"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OwnerID     string             `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	OwnerName   string             `bson:"ownerName,omitempty" json:"ownerName,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LeadCreateRequest 手动创建线索请求
type LeadCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Company     string `json:"company"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Source      string `json:"source"`
	Temperature string `json:"temperature" binding:"omitempty,oneof=hot warm cold"`
	Notes       string `json:"notes"`
}

// LeadUpdateRequest 更新线索请求
type LeadUpdateRequest struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	Phone       string `json:"phone"`
	Status      string `json:"status" binding:"omitempty,oneof=new contacted qualified converted lost"`
	Temperature string `json:"temperature" binding:"omitempty,oneof=hot warm cold"`
	Score       *int   `json:"score"`
	Notes       string `json:"notes"`
}

// WebhookLeadRequest webhook接入的线索载荷
type WebhookLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

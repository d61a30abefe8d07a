package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PipelineStage 销售管道阶段配置
type PipelineStage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Label       string             `bson:"label" json:"label"`
	Order       int                `bson:"order" json:"order"`
	Color       string             `bson:"color" json:"color"`
	Probability int                `bson:"probability" json:"probability"` // 阶段对应的赢单概率(0-100)
	IsWon       bool               `bson:"isWon" json:"isWon"`
	IsLost      bool               `bson:"isLost" json:"isLost"`
}

// DefaultPipelineStages 默认管道阶段，首次启动时写入pipeline_stages集合
var DefaultPipelineStages = []PipelineStage{
	{Label: "Prospecting", Order: 1, Color: "#8c8c8c", Probability: 10},
	{Label: "Qualification", Order: 2, Color: "#1890ff", Probability: 25},
	{Label: "Proposal", Order: 3, Color: "#722ed1", Probability: 50},
	{Label: "Negotiation", Order: 4, Color: "#fa8c16", Probability: 75},
	{Label: "Closed - Won", Order: 5, Color: "#52c41a", Probability: 100, IsWon: true},
	{Label: "Closed - Lost", Order: 6, Color: "#f5222d", Probability: 0, IsLost: true},
}

// Deal 交易（销售机会）
type Deal struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Value           float64            `bson:"value" json:"value"`
	Probability     int                `bson:"probability" json:"probability"`
	Stage           string             `bson:"stage" json:"stage"`
	OwnerID         string             `bson:"ownerId" json:"ownerId"`
	OwnerName       string             `bson:"ownerName" json:"ownerName"`
	LeadID          string             `bson:"leadId,omitempty" json:"leadId,omitempty"`
	ExpectedCloseAt *time.Time         `bson:"expectedCloseAt,omitempty" json:"expectedCloseAt,omitempty"`
	ClosedAt        *time.Time         `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
	Version         int64              `bson:"version" json:"version"` // 乐观锁版本号，每次阶段变更递增
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DealCreateRequest 创建交易请求
type DealCreateRequest struct {
	Name            string     `json:"name" binding:"required"`
	Value           float64    `json:"value" binding:"required,gte=0"`
	Stage           string     `json:"stage"`
	LeadID          string     `json:"leadId"`
	ExpectedCloseAt *time.Time `json:"expectedCloseAt"`
}

// StageTransitionRequest 阶段变更请求
type StageTransitionRequest struct {
	Stage string `json:"stage" binding:"required"`
}

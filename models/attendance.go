package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance 考勤记录，每人每天一条
type Attendance struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID     string             `bson:"userId" json:"userId"`
	UserName   string             `bson:"userName" json:"userName"`
	Date       string             `bson:"date" json:"date"` // 格式 2006-01-02
	CheckInAt  time.Time          `bson:"checkInAt" json:"checkInAt"`
	CheckOutAt *time.Time         `bson:"checkOutAt,omitempty" json:"checkOutAt,omitempty"`
}

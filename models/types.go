package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleADMIN   UserRole = "ADMIN"   // 管理员
	UserRoleMANAGER UserRole = "MANAGER" // 销售主管
	UserRoleSALES   UserRole = "SALES"   // 销售
)

// User 用户类型
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"` // 不返回密码
	Email     string             `bson:"email" json:"email"`
	Role      UserRole           `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// 各种请求和响应结构
type (
	// LoginRequest 登录请求
	LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	// LoginResponse 登录响应
	LoginResponse struct {
		Token string      `json:"token"`
		User  interface{} `json:"user"`
	}

	// RegisterRequest 注册请求
	RegisterRequest struct {
		Username string   `json:"username" binding:"required,min=2"`
		Password string   `json:"password" binding:"required,min=6"`
		Email    string   `json:"email" binding:"required,email"`
		Role     UserRole `json:"role" binding:"omitempty,oneof=ADMIN MANAGER SALES"`
	}
)

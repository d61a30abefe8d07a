package controllers

import (
	"net/http"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

// AuthController 认证相关接口
type AuthController struct {
	store *repository.Store
}

// NewAuthController 创建认证控制器
func NewAuthController(store *repository.Store) *AuthController {
	return &AuthController{store: store}
}

// Login 用户登录
func (ctl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.Logger.Info().Str("username", req.Username).Msg("登录尝试")

	user, err := ctl.store.Users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.ErrorResponse(c, "用户名不存在，请检查用户名或注册新账号", http.StatusUnauthorized)
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 验证密码
	if !utils.VerifyPassword(req.Password, user.Password) {
		utils.Logger.Info().Str("username", req.Username).Msg("登录失败: 密码错误")
		utils.ErrorResponse(c, "用户名或密码错误", http.StatusUnauthorized)
		return
	}

	// 生成JWT令牌
	token, err := utils.GenerateToken(*user)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("生成token失败")
		utils.ErrorResponse(c, "生成登录令牌失败，请重试", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token: token,
		User:  user,
	})
}

// Register 用户注册
func (ctl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()

	// 检查用户名是否已存在
	if _, err := ctl.store.Users.FindByUsername(ctx, req.Username); err == nil {
		utils.ErrorResponse(c, "用户名已存在", http.StatusBadRequest)
		return
	} else if err != repository.ErrNotFound {
		utils.HandleError(c, err)
		return
	}

	role := req.Role
	if role == "" {
		role = models.UserRoleSALES
	}

	now := time.Now()
	user := &models.User{
		Username:  req.Username,
		Password:  utils.HashPassword(req.Password),
		Email:     req.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctl.store.Users.Insert(ctx, user); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"username": user.Username,
		"role":     string(user.Role),
	}, "用户注册成功")

	utils.SuccessResponse(c, gin.H{"_id": user.ID.Hex()}, "注册成功", http.StatusCreated)
}

// Package handler 提供参考后端的 HTTP 请求处理器
// 本文件处理认证相关的请求
package handler

import (
	"github.com/gin-gonic/gin"

	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/service"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	userSvc service.UserService
}

// NewAuthHandler 构造函数
func NewAuthHandler(userSvc service.UserService) *AuthHandler {
	return &AuthHandler{userSvc: userSvc}
}

// Signup 注册
// POST /api/auth/signup
// 响应: { success, token, userData, message }
func (h *AuthHandler) Signup(c *gin.Context) {
	var req request.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	token, user, err := h.userSvc.Signup(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"token":    token,
		"userData": user,
		"message":  "Account created successfully",
	})
}

// Login 登录
// POST /api/auth/login
// 响应: { success, token, userData, message }
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	token, user, err := h.userSvc.Login(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"token":    token,
		"userData": user,
		"message":  "Login successful",
	})
}

// Check 校验 token
// GET /api/auth/check
// 响应: { success, user }
func (h *AuthHandler) Check(c *gin.Context) {
	user, err := h.userSvc.GetUser(currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"user": user})
}

// UpdateProfile 修改资料
// PUT /api/auth/update-profile
// 响应: { success, user, message }
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, err := h.userSvc.UpdateProfile(currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"user": user, "message": "Profile updated"})
}

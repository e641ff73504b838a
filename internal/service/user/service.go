// Package user 参考后端的账号业务：注册、登录、token 校验、修改资料
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kama_chat_client/internal/dao/repository"
	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
	"kama_chat_client/pkg/util/jwt"
)

// 登录失败统一提示，不区分账号不存在和密码错误
const invalidCredentials = "Invalid credentials"

// userService 账号业务实现，通过构造函数注入存储
type userService struct {
	repos *repository.Repositories
}

// NewUserService 构造函数
func NewUserService(repos *repository.Repositories) *userService {
	return &userService{repos: repos}
}

// Signup 注册并签发 token
func (u *userService) Signup(req request.SignupRequest) (string, *model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("hash password failed", zap.Error(err))
		return "", nil, errorx.ErrServerBusy
	}

	account := &model.Account{
		User: model.User{
			ID:       uuid.NewString(),
			Email:    strings.TrimSpace(req.Email),
			FullName: strings.TrimSpace(req.FullName),
			Bio:      strings.TrimSpace(req.Bio),
		},
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := u.repos.User.Create(account); err != nil {
		return "", nil, err
	}

	token, err := jwt.GenerateToken(account.ID)
	if err != nil {
		zap.L().Error("generate token failed", zap.Error(err))
		return "", nil, errorx.ErrServerBusy
	}
	zap.L().Info("account created", zap.String("userId", account.ID))
	user := account.User
	return token, &user, nil
}

// Login 校验邮箱和密码并签发 token
func (u *userService) Login(req request.LoginRequest) (string, *model.User, error) {
	account, err := u.repos.User.FindByEmail(req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", nil, errorx.New(errorx.CodeUserNotExist, invalidCredentials)
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, errorx.New(errorx.CodeInvalidPassword, invalidCredentials)
	}

	token, err := jwt.GenerateToken(account.ID)
	if err != nil {
		zap.L().Error("generate token failed", zap.Error(err))
		return "", nil, errorx.ErrServerBusy
	}
	user := account.User
	return token, &user, nil
}

// GetUser token 已由中间件校验，这里确认账号仍然存在
func (u *userService) GetUser(userID string) (*model.User, error) {
	account, err := u.repos.User.FindByID(userID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "User not found")
		}
		return nil, err
	}
	user := account.User
	return &user, nil
}

// UpdateProfile 修改资料
func (u *userService) UpdateProfile(userID string, req request.UpdateProfileRequest) (*model.User, error) {
	account, err := u.repos.User.UpdateProfile(userID,
		strings.TrimSpace(req.FullName), strings.TrimSpace(req.Bio), req.ProfilePic)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "User not found")
		}
		return nil, err
	}
	user := account.User
	return &user, nil
}

package request

// SignupRequest 注册请求
// 使用位置:
//   - internal/gateway/api: Authenticate (客户端发送前校验)
//   - internal/handler/auth_handler.go: Signup
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Bio      string `json:"bio" binding:"required,max=200"`
}

// LoginRequest 登录请求
// 使用位置:
//   - internal/gateway/api: Authenticate
//   - internal/handler/auth_handler.go: Login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 修改资料请求
// ProfilePic 为 data URL，空串表示保留原头像
// 使用位置:
//   - internal/gateway/api: UpdateProfile
//   - internal/handler/auth_handler.go: UpdateProfile
type UpdateProfileRequest struct {
	FullName   string `json:"fullName" binding:"required,max=50"`
	Bio        string `json:"bio" binding:"required,max=200"`
	ProfilePic string `json:"profilePic"`
}

package model

// AuthMode 认证方式
type AuthMode string

const (
	AuthSignup AuthMode = "signup"
	AuthLogin  AuthMode = "login"
)

// Valid 是否为已知的认证方式
func (m AuthMode) Valid() bool {
	return m == AuthSignup || m == AuthLogin
}

// Credentials 注册/登录凭证
// 注册需要 FullName、Email、Password，Bio 可选；登录只需要 Email 和 Password
type Credentials struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio,omitempty"`
}

// ProfileUpdate 资料修改
// ProfilePic 为 data URL（data:image/png;base64,...），为空表示不修改头像
type ProfileUpdate struct {
	FullName   string `json:"fullName"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic,omitempty"`
}

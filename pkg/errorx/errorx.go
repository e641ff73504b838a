package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 让 errors.Is 按错误码比较，预定义实例可直接用于判断
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return t.cause == nil && t.Code == e.Code && t.Msg == e.Msg
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNetwork, "请求失败")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNetwork, "GET %s", path)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Message 返回适合展示给用户的消息（不带底层错误链）
func Message(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// 业务状态码常量定义
const (
	CodeSuccess         = 1000 // 成功
	CodeInvalidParam    = 1001 // 请求参数错误（ValidationError）
	CodeUserExist       = 1002 // 用户已存在
	CodeUserNotExist    = 1003 // 用户不存在
	CodeInvalidPassword = 1004 // 密码错误
	CodeServerBusy      = 1005 // 服务繁忙
	CodeUnauthorized    = 1006 // 未授权/认证失败（AuthError）
	CodeNotFound        = 1008 // 资源不存在
	CodeCacheError      = 1009 // 本地/缓存存储错误
	CodeDBError         = 1010 // 数据库错误
	CodeNetwork         = 1012 // 网络错误，可重试（NetworkError）
	CodePrecondition    = 1013 // 调用前置条件不满足
	CodeStaleResponse   = 1014 // 响应已过期，被丢弃
	CodeNotConnected    = 1015 // 推送通道未连接
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam         = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy           = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized         = New(CodeUnauthorized, "未登录或登录已失效")
	ErrNoActiveConversation = New(CodePrecondition, "当前没有选中的会话")
	ErrConversationMismatch = New(CodePrecondition, "目标用户不是当前会话")
	ErrStaleResponse        = New(CodeStaleResponse, "会话已切换，丢弃过期的响应")
	ErrNotConnected         = New(CodeNotConnected, "推送通道未连接")
	ErrEmptyMessage         = New(CodeInvalidParam, "消息内容和图片不能同时为空")
)

// IsAuth 认证失败（凭证错误 / token 过期）
func IsAuth(err error) bool {
	return hasCode(err, CodeUnauthorized, CodeUserNotExist, CodeInvalidPassword, CodeUserExist)
}

// IsNetwork 网络错误（瞬时故障，调用方可自行重试）
func IsNetwork(err error) bool { return hasCode(err, CodeNetwork) }

// IsValidation 参数校验失败，未发出任何网络请求
func IsValidation(err error) bool { return hasCode(err, CodeInvalidParam) }

// IsPrecondition 调用方违反了前置条件
func IsPrecondition(err error) bool { return hasCode(err, CodePrecondition) }

// IsStale 响应到达时已不再对应当前状态
func IsStale(err error) bool { return hasCode(err, CodeStaleResponse) }

func hasCode(err error, codes ...int) bool {
	var codeErr *CodeError
	if !errors.As(err, &codeErr) {
		return false
	}
	for _, c := range codes {
		if codeErr.Code == c {
			return true
		}
	}
	return false
}

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeNotFound
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kama_chat_client/internal/infrastructure/validate"
	"kama_chat_client/pkg/errorx"
)

// HandleSuccess 返回成功响应，body 中的字段与 success:true 平铺在同一层
func HandleSuccess(c *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

// HandleError 通用错误处理
// 业务错误（errorx.CodeError）返回 success:false 和错误消息；其它错误记录日志后返回服务繁忙
// 与前端约定业务失败也用 200，客户端以 success 字段判断
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code != errorx.CodeServerBusy {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": codeErr.Msg,
		})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError 处理参数绑定错误，validator 的错误会被翻译成字段提示
func HandleParamError(c *gin.Context, err error) {
	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": errorx.Message(validate.Translate(err, nil)),
	})
}

// currentUserID 由 middleware.TokenAuth 写入
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

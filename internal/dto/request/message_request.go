package request

// SendMessageRequest 发送消息请求，文本和图片至少一个
// 使用位置:
//   - internal/gateway/api: Send
//   - internal/handler/message_handler.go: Send
type SendMessageRequest struct {
	Text  string `json:"text" binding:"required_without=Image,max=2000"`
	Image string `json:"image" binding:"required_without=Text"`
}

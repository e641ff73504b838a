package model

import (
	"strings"
	"time"
)

// Message 聊天消息
// 同一会话内插入顺序即时间顺序
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Seen       bool      `json:"seen"`
}

// HasImage 消息是否携带图片
func (m Message) HasImage() bool {
	return m.Image != ""
}

// Draft 待发送的消息内容，文本和图片至少有一个
type Draft struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Normalize 去掉文本首尾空白
func (d Draft) Normalize() Draft {
	d.Text = strings.TrimSpace(d.Text)
	return d
}

// Empty 文本和图片都为空
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Text) == "" && d.Image == ""
}

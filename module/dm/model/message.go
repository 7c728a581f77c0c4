package model

import "time"

// Message 创建后不可变：没有编辑/删除入口。
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreateTime     time.Time `json:"create_time"`
}

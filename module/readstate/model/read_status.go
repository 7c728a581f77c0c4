package model

import "time"

// ReadStatus 每个 profile 对一个会话或一个群恰有一条记录,二选一。
// 唯一性由两条 partial unique index 保证。
type ReadStatus struct {
	ProfileID      string    `json:"profile_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	GroupID        string    `json:"group_id,omitempty"`
	LastReadAt     time.Time `json:"last_read_at"`
}

// Unread 未读概览条目,数量来自读点与消息时间戳的比较。
type Unread struct {
	ConversationID string `json:"conversation_id,omitempty"`
	GroupID        string `json:"group_id,omitempty"`
	Count          int64  `json:"count"`
}

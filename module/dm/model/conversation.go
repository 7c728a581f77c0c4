package model

import "time"

// Conversation 单聊会话，按无序对建模：
// (User1ID, User2ID) 落库前固定规整为 User1ID < User2ID（ID 数值序），
// 配合唯一约束，同一对用户最多一行。
// 唯一会被更新的字段是 LastMessageAt——新消息落库同事务 bump，
// 会话列表按它排序就不用再扫 messages 表。
type Conversation struct {
	ID            string    `json:"id"`
	User1ID       string    `json:"user1_id"`
	User2ID       string    `json:"user2_id"`
	CreateTime    time.Time `json:"create_time"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// HasParticipant 会话读写资格：是两个参与者之一。
func (c *Conversation) HasParticipant(profileID string) bool {
	return c.User1ID == profileID || c.User2ID == profileID
}

// PeerOf 返回对端；profileID 不在会话里返回空串。
func (c *Conversation) PeerOf(profileID string) string {
	switch profileID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

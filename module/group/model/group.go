package model

import "time"

// 角色常量；一个群任何时刻至少有一个 admin（创建人自动入座，见 store.CreateGroup）。
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatorID  string    `json:"creator_id"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// GroupMember (group, profile) 唯一；首行永远是创建人的 admin 行。
type GroupMember struct {
	GroupID   string    `json:"group_id"`
	ProfileID string    `json:"profile_id"`
	Role      string    `json:"role"`
	JoinTime  time.Time `json:"join_time"`
}

// GroupMessage 发送方必须是发送时刻的在群成员。
type GroupMessage struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	SenderID   string    `json:"sender_id"`
	Content    string    `json:"content"`
	CreateTime time.Time `json:"create_time"`
}

package model

import "time"

// 申请状态机：
//   pending → accepted（终态；副作用：物化 follow_edge）
//   pending → rejected（终态；行保留，区分“没申请过”和“申请被拒”）
//   pending → 删除（发送方撤回，或接收方直接删掉）
// accepted / rejected 不会回到 pending，只能整行删掉后重新申请。
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FollowRequest 有序对 (sender, receiver) 任意时刻至多一行。
// 被拒后重新申请是对同一行的 upsert（状态重置回 pending），不会长出第二行。
type FollowRequest struct {
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Status     string    `json:"status"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// CanTransition 仅 pending 可迁出；目标只能是 accepted / rejected。
func CanTransition(from, to string) bool {
	if from != RequestPending {
		return false
	}
	return to == RequestAccepted || to == RequestRejected
}

package model

import "time"

// FollowEdge 有向关注边。只能由 accept 流程物化，客户端永远没有直插入口——
// 没走申请流程就不可能长出边。
type FollowEdge struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreateTime time.Time `json:"create_time"`
}

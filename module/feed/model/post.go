package model

import "time"

// Post 的两个计数列是派生缓存：只会被 store 层的同事务维护逻辑碰，
// 任何 handler/service 都没有直写入口，保证和 likes/comments 表不漂移。
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Content       string    `json:"content"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	CreateTime    time.Time `json:"create_time"`
	UpdateTime    time.Time `json:"update_time"`
}

// Like (post, profile) 唯一；并发重复点赞由主键去重，重复是 no-op。
type Like struct {
	PostID     string    `json:"post_id"`
	ProfileID  string    `json:"profile_id"`
	CreateTime time.Time `json:"create_time"`
}

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	CreateTime time.Time `json:"create_time"`
}

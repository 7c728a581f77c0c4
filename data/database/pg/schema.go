package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// 表结构是对外的持久化契约：
// - 唯一约束负责并发去重（重复点赞/重复申请/重复入群 → 23505，由调用方按 no-op 处理）
// - 外键负责引用完整性（悬空引用 → 23503，按 bad request 返回）
// - 计数列只由 store 层同事务维护，任何 handler 不直接可写
// - conversations 的 (user1_id, user2_id) 先在 Go 侧做全序规整再落库，
//   所以无序对最多一行（效果等同 least/greatest 唯一索引）
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id          TEXT PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		handle      TEXT NOT NULL UNIQUE,
		avatar_url  TEXT NOT NULL DEFAULT '',
		bio         TEXT NOT NULL DEFAULT '',
		create_time TIMESTAMPTZ NOT NULL,
		update_time TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS follow_requests (
		sender_id   TEXT NOT NULL REFERENCES profiles(id),
		receiver_id TEXT NOT NULL REFERENCES profiles(id),
		status      TEXT NOT NULL DEFAULT 'pending',
		create_time TIMESTAMPTZ NOT NULL,
		update_time TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (sender_id, receiver_id),
		CHECK (sender_id <> receiver_id)
	)`,

	`CREATE TABLE IF NOT EXISTS follow_edges (
		follower_id TEXT NOT NULL REFERENCES profiles(id),
		followee_id TEXT NOT NULL REFERENCES profiles(id),
		create_time TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (follower_id, followee_id),
		CHECK (follower_id <> followee_id)
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id             TEXT PRIMARY KEY,
		author_id      TEXT NOT NULL REFERENCES profiles(id),
		content        TEXT NOT NULL,
		likes_count    BIGINT NOT NULL DEFAULT 0,
		comments_count BIGINT NOT NULL DEFAULT 0,
		create_time    TIMESTAMPTZ NOT NULL,
		update_time    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS likes (
		post_id     TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		profile_id  TEXT NOT NULL REFERENCES profiles(id),
		create_time TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (post_id, profile_id)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id          TEXT PRIMARY KEY,
		post_id     TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id   TEXT NOT NULL REFERENCES profiles(id),
		content     TEXT NOT NULL,
		create_time TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS conversations (
		id              TEXT PRIMARY KEY,
		user1_id        TEXT NOT NULL REFERENCES profiles(id),
		user2_id        TEXT NOT NULL REFERENCES profiles(id),
		create_time     TIMESTAMPTZ NOT NULL,
		last_message_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user1_id, user2_id),
		CHECK (user1_id <> user2_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id       TEXT NOT NULL REFERENCES profiles(id),
		content         TEXT NOT NULL,
		create_time     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_conv_time ON messages (conversation_id, create_time)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		creator_id  TEXT NOT NULL REFERENCES profiles(id),
		create_time TIMESTAMPTZ NOT NULL,
		update_time TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		group_id    TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		profile_id  TEXT NOT NULL REFERENCES profiles(id),
		role        TEXT NOT NULL DEFAULT 'member',
		join_time   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (group_id, profile_id)
	)`,

	`CREATE TABLE IF NOT EXISTS group_messages (
		id          TEXT PRIMARY KEY,
		group_id    TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		sender_id   TEXT NOT NULL REFERENCES profiles(id),
		content     TEXT NOT NULL,
		create_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_group_messages_group_time ON group_messages (group_id, create_time)`,

	`CREATE TABLE IF NOT EXISTS read_statuses (
		profile_id      TEXT NOT NULL REFERENCES profiles(id),
		conversation_id TEXT REFERENCES conversations(id) ON DELETE CASCADE,
		group_id        TEXT REFERENCES groups(id) ON DELETE CASCADE,
		last_read_at    TIMESTAMPTZ NOT NULL,
		CHECK ((conversation_id IS NULL) <> (group_id IS NULL))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_read_conv ON read_statuses (profile_id, conversation_id) WHERE conversation_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_read_group ON read_statuses (profile_id, group_id) WHERE group_id IS NOT NULL`,
}

// Migrate 顺序执行建表语句；全部幂等，可重复跑。
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaDDL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

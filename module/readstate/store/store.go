package store

import (
	"context"
	"time"

	"SProject/module/readstate/model"
	"SProject/tools/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadStateStore 维护 (profile, 会话) / (profile, 群) 的最后已读时间点。
// upsert 落在两条 partial unique index 上,读点只会往后走不会回退。
type ReadStateStore struct {
	pool *pgxpool.Pool
}

func NewReadStateStore(pool *pgxpool.Pool) *ReadStateStore {
	return &ReadStateStore{pool: pool}
}

func (s *ReadStateStore) UpsertConversationRead(ctx context.Context, profileID, conversationID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO read_statuses (profile_id, conversation_id, last_read_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (profile_id, conversation_id) WHERE conversation_id IS NOT NULL
		 DO UPDATE SET last_read_at = GREATEST(read_statuses.last_read_at, EXCLUDED.last_read_at)`,
		profileID, conversationID, at)
	return errs.Wrap(err)
}

func (s *ReadStateStore) UpsertGroupRead(ctx context.Context, profileID, groupID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO read_statuses (profile_id, group_id, last_read_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (profile_id, group_id) WHERE group_id IS NOT NULL
		 DO UPDATE SET last_read_at = GREATEST(read_statuses.last_read_at, EXCLUDED.last_read_at)`,
		profileID, groupID, at)
	return errs.Wrap(err)
}

func (s *ReadStateStore) GetConversationRead(ctx context.Context, profileID, conversationID string) (*model.ReadStatus, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT profile_id, conversation_id, last_read_at FROM read_statuses
		 WHERE profile_id = $1 AND conversation_id = $2`, profileID, conversationID)
	var rs model.ReadStatus
	err := row.Scan(&rs.ProfileID, &rs.ConversationID, &rs.LastReadAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &rs, nil
}

func (s *ReadStateStore) GetGroupRead(ctx context.Context, profileID, groupID string) (*model.ReadStatus, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT profile_id, group_id, last_read_at FROM read_statuses
		 WHERE profile_id = $1 AND group_id = $2`, profileID, groupID)
	var rs model.ReadStatus
	err := row.Scan(&rs.ProfileID, &rs.GroupID, &rs.LastReadAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &rs, nil
}

// UnreadConversationsForCaller 只统计调用者参与的会话；
// 对方发的、晚于读点的消息计入,没有读点按会话创建以来全量算。
func (s *ReadStateStore) UnreadConversationsForCaller(ctx context.Context, callerID string) ([]*model.Unread, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, COUNT(m.id)
		 FROM conversations c
		 LEFT JOIN read_statuses rs
		   ON rs.conversation_id = c.id AND rs.profile_id = $1
		 JOIN messages m
		   ON m.conversation_id = c.id
		  AND m.sender_id <> $1
		  AND (rs.last_read_at IS NULL OR m.create_time > rs.last_read_at)
		 WHERE c.user1_id = $1 OR c.user2_id = $1
		 GROUP BY c.id`, callerID)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer rows.Close()
	var out []*model.Unread
	for rows.Next() {
		var u model.Unread
		if err := rows.Scan(&u.ConversationID, &u.Count); err != nil {
			return nil, errs.Wrap(err)
		}
		out = append(out, &u)
	}
	return out, errs.Wrap(rows.Err())
}

// UnreadGroupsForCaller 同上,范围是调用者在册的群。
func (s *ReadStateStore) UnreadGroupsForCaller(ctx context.Context, callerID string) ([]*model.Unread, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT gm.group_id, COUNT(m.id)
		 FROM group_members gm
		 LEFT JOIN read_statuses rs
		   ON rs.group_id = gm.group_id AND rs.profile_id = $1
		 JOIN group_messages m
		   ON m.group_id = gm.group_id
		  AND m.sender_id <> $1
		  AND (rs.last_read_at IS NULL OR m.create_time > rs.last_read_at)
		 WHERE gm.profile_id = $1
		 GROUP BY gm.group_id`, callerID)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer rows.Close()
	var out []*model.Unread
	for rows.Next() {
		var u model.Unread
		if err := rows.Scan(&u.GroupID, &u.Count); err != nil {
			return nil, errs.Wrap(err)
		}
		out = append(out, &u)
	}
	return out, errs.Wrap(rows.Err())
}

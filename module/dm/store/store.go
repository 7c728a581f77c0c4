package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerr "github.com/pkg/errors"

	"SProject/data/database/pg"
	"SProject/module/dm/model"
	"SProject/tools"
	errs "SProject/tools/errs"
)

type DMStore struct {
	pool *pgxpool.Pool
}

func NewDMStore(pool *pgxpool.Pool) *DMStore {
	return &DMStore{pool: pool}
}

const convCols = `id, user1_id, user2_id, create_time, last_message_at`

// EnsureConversation 规整无序对后幂等建会话：
// 已存在就取回已有行（(A,B) 和 (B,A) 命中同一行）。
func (s *DMStore) EnsureConversation(ctx context.Context, id, a, b string, now time.Time) (*model.Conversation, error) {
	lo, hi := tools.OrderPair(a, b)

	// ON CONFLICT DO UPDATE 一把拿回已有行（DO NOTHING 不返回行，得二次查询）
	row := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (id, user1_id, user2_id, create_time, last_message_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user1_id, user2_id) DO UPDATE SET user1_id = EXCLUDED.user1_id
		 RETURNING `+convCols,
		id, lo, hi, now)
	conv, err := scanConversation(row)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return nil, errs.ErrBadReference.WrapMsg("conversation participants")
		}
		return nil, err
	}
	return conv, nil
}

// GetConversationForCaller 行过滤读：非参与者拿到 (nil, nil)，不是错误。
func (s *DMStore) GetConversationForCaller(ctx context.Context, convID, callerID string) (*model.Conversation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+convCols+` FROM conversations
		  WHERE id = $1 AND (user1_id = $2 OR user2_id = $2)`,
		convID, callerID)
	return scanConversation(row)
}

func (s *DMStore) ListConversationsForCaller(ctx context.Context, callerID string) ([]*model.Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+convCols+` FROM conversations
		  WHERE user1_id = $1 OR user2_id = $1
		  ORDER BY last_message_at DESC`, callerID)
	if err != nil {
		return nil, pkgerr.Wrap(err, "dmStore.ListConversationsForCaller")
	}
	defer rows.Close()

	out := make([]*model.Conversation, 0, 16)
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.CreateTime, &c.LastMessageAt); err != nil {
			return nil, pkgerr.Wrap(err, "dmStore.ListConversationsForCaller.scan")
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// InsertMessage 消息落库和会话活跃时间 bump 绑在同一事务——
// 这不是可选优化，会话列表的按时排序依赖它。
func (s *DMStore) InsertMessage(ctx context.Context, m *model.Message) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pkgerr.Wrap(err, "dmStore.InsertMessage.begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, content, create_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.CreateTime); err != nil {
		if pg.IsForeignKeyViolation(err) {
			return errs.ErrBadReference.WrapMsg("message insert", "conversation", m.ConversationID)
		}
		return pkgerr.Wrap(err, "dmStore.InsertMessage")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET last_message_at = $2 WHERE id = $1`,
		m.ConversationID, m.CreateTime); err != nil {
		return pkgerr.Wrap(err, "dmStore.InsertMessage.bump")
	}
	return tx.Commit(ctx)
}

// ListMessagesForCaller 非参与者得到空集：过滤谓词直接揉进查询。
func (s *DMStore) ListMessagesForCaller(ctx context.Context, convID, callerID string, limit int) ([]*model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.conversation_id, m.sender_id, m.content, m.create_time
		   FROM messages m
		   JOIN conversations c ON c.id = m.conversation_id
		  WHERE m.conversation_id = $1
		    AND (c.user1_id = $2 OR c.user2_id = $2)
		  ORDER BY m.create_time DESC
		  LIMIT $3`,
		convID, callerID, limit)
	if err != nil {
		return nil, pkgerr.Wrap(err, "dmStore.ListMessagesForCaller")
	}
	defer rows.Close()

	out := make([]*model.Message, 0, limit)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreateTime); err != nil {
			return nil, pkgerr.Wrap(err, "dmStore.ListMessagesForCaller.scan")
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	var c model.Conversation
	err := row.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.CreateTime, &c.LastMessageAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerr.Wrap(err, "dmStore.scanConversation")
	}
	return &c, nil
}

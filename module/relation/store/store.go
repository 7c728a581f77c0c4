package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerr "github.com/pkg/errors"

	"SProject/data/database/pg"
	"SProject/module/relation/model"
	errs "SProject/tools/errs"
)

type RelationStore struct {
	pool *pgxpool.Pool
}

func NewRelationStore(pool *pgxpool.Pool) *RelationStore {
	return &RelationStore{pool: pool}
}

// UpsertRequest 发申请 / 被拒后重发共用一条语句：
// 冲突落在 (sender, receiver) 主键上就把状态拍回 pending。
// 并发重复申请由主键串行化，后写方同样命中 upsert 分支，不报错。
// accepted 不回流：已接受的申请被 guard 跳过，幂等返回现有行。
func (s *RelationStore) UpsertRequest(ctx context.Context, senderID, receiverID string, now time.Time) (*model.FollowRequest, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO follow_requests (sender_id, receiver_id, status, create_time, update_time)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (sender_id, receiver_id)
		 DO UPDATE SET status = $3, update_time = $4
		 WHERE follow_requests.status <> $5
		 RETURNING sender_id, receiver_id, status, create_time, update_time`,
		senderID, receiverID, model.RequestPending, now, model.RequestAccepted)
	req, err := scanRequest(row)
	if err != nil {
		return nil, err
	}
	if req == nil {
		// guard 挡下的 accepted 行不从 RETURNING 出来，补一次读
		return s.GetRequest(ctx, senderID, receiverID)
	}
	return req, nil
}

func (s *RelationStore) GetRequest(ctx context.Context, senderID, receiverID string) (*model.FollowRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT sender_id, receiver_id, status, create_time, update_time
		   FROM follow_requests WHERE sender_id = $1 AND receiver_id = $2`,
		senderID, receiverID)
	return scanRequest(row)
}

// AcceptRequest 状态迁移 + 物化关注边，同一事务内完成。
// 边插入 ON CONFLICT DO NOTHING：重复 accept 不报错也不多插。
func (s *RelationStore) AcceptRequest(ctx context.Context, senderID, receiverID string, now time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pkgerr.Wrap(err, "relationStore.AcceptRequest.begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE follow_requests SET status = $3, update_time = $4
		  WHERE sender_id = $1 AND receiver_id = $2 AND status = $5`,
		senderID, receiverID, model.RequestAccepted, now, model.RequestPending)
	if err != nil {
		return pkgerr.Wrap(err, "relationStore.AcceptRequest.update")
	}
	if tag.RowsAffected() == 0 {
		// 不在 pending：要么已处理过（幂等成功），要么行不存在（由 service 判）
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO follow_edges (follower_id, followee_id, create_time)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		senderID, receiverID, now)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return errs.ErrBadReference.WrapMsg("accept follow", "sender", senderID)
		}
		return pkgerr.Wrap(err, "relationStore.AcceptRequest.edge")
	}
	return tx.Commit(ctx)
}

func (s *RelationStore) RejectRequest(ctx context.Context, senderID, receiverID string, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE follow_requests SET status = $3, update_time = $4
		  WHERE sender_id = $1 AND receiver_id = $2 AND status = $5`,
		senderID, receiverID, model.RequestRejected, now, model.RequestPending)
	if err != nil {
		return false, pkgerr.Wrap(err, "relationStore.RejectRequest")
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteRequest 撤回（仅 pending）或接收方删除（任意状态）；byStatus 空串不限状态。
func (s *RelationStore) DeleteRequest(ctx context.Context, senderID, receiverID, byStatus string) (bool, error) {
	var tag pgconn.CommandTag
	var err error
	if byStatus == "" {
		tag, err = s.pool.Exec(ctx,
			`DELETE FROM follow_requests WHERE sender_id = $1 AND receiver_id = $2`,
			senderID, receiverID)
	} else {
		tag, err = s.pool.Exec(ctx,
			`DELETE FROM follow_requests WHERE sender_id = $1 AND receiver_id = $2 AND status = $3`,
			senderID, receiverID, byStatus)
	}
	if err != nil {
		return false, pkgerr.Wrap(err, "relationStore.DeleteRequest")
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteEdge 取关：边删掉之后顺手清掉这对方向上的残留申请行，
// 给下一次重新申请腾位（避免撞 (sender, receiver) 主键）。
func (s *RelationStore) DeleteEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, pkgerr.Wrap(err, "relationStore.DeleteEdge.begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`DELETE FROM follow_edges WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID)
	if err != nil {
		return false, pkgerr.Wrap(err, "relationStore.DeleteEdge")
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM follow_requests WHERE sender_id = $1 AND receiver_id = $2`,
		followerID, followeeID); err != nil {
		return false, pkgerr.Wrap(err, "relationStore.DeleteEdge.cleanupRequest")
	}
	if err := tx.Commit(ctx); err != nil {
		return false, pkgerr.Wrap(err, "relationStore.DeleteEdge.commit")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *RelationStore) EdgeExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follow_edges WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, pkgerr.Wrap(err, "relationStore.EdgeExists")
	}
	return exists, nil
}

// AreMutual 一条查询判互关：两个方向的边都在才算。
func (s *RelationStore) AreMutual(ctx context.Context, a, b string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM follow_edges
		  WHERE (follower_id = $1 AND followee_id = $2)
		     OR (follower_id = $2 AND followee_id = $1)`,
		a, b).Scan(&n)
	if err != nil {
		return false, pkgerr.Wrap(err, "relationStore.AreMutual")
	}
	return n == 2, nil
}

func (s *RelationStore) ListIncomingRequests(ctx context.Context, receiverID string) ([]*model.FollowRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sender_id, receiver_id, status, create_time, update_time
		   FROM follow_requests WHERE receiver_id = $1 ORDER BY update_time DESC`,
		receiverID)
	if err != nil {
		return nil, pkgerr.Wrap(err, "relationStore.ListIncomingRequests")
	}
	defer rows.Close()

	out := make([]*model.FollowRequest, 0, 16)
	for rows.Next() {
		var r model.FollowRequest
		if err := rows.Scan(&r.SenderID, &r.ReceiverID, &r.Status, &r.CreateTime, &r.UpdateTime); err != nil {
			return nil, pkgerr.Wrap(err, "relationStore.ListIncomingRequests.scan")
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *RelationStore) ListFollowing(ctx context.Context, followerID string) ([]*model.FollowEdge, error) {
	return s.listEdges(ctx, `follower_id`, followerID)
}

func (s *RelationStore) ListFollowers(ctx context.Context, followeeID string) ([]*model.FollowEdge, error) {
	return s.listEdges(ctx, `followee_id`, followeeID)
}

func (s *RelationStore) listEdges(ctx context.Context, col, id string) ([]*model.FollowEdge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT follower_id, followee_id, create_time FROM follow_edges
		  WHERE `+col+` = $1 ORDER BY create_time DESC`, id)
	if err != nil {
		return nil, pkgerr.Wrap(err, "relationStore.listEdges")
	}
	defer rows.Close()

	out := make([]*model.FollowEdge, 0, 32)
	for rows.Next() {
		var e model.FollowEdge
		if err := rows.Scan(&e.FollowerID, &e.FolloweeID, &e.CreateTime); err != nil {
			return nil, pkgerr.Wrap(err, "relationStore.listEdges.scan")
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*model.FollowRequest, error) {
	var r model.FollowRequest
	err := row.Scan(&r.SenderID, &r.ReceiverID, &r.Status, &r.CreateTime, &r.UpdateTime)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return nil, errs.ErrBadReference.WrapMsg("follow request")
		}
		return nil, pkgerr.Wrap(err, "relationStore.scanRequest")
	}
	return &r, nil
}

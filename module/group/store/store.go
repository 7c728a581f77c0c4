package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerr "github.com/pkg/errors"

	"SProject/data/database/pg"
	"SProject/module/group/model"
	errs "SProject/tools/errs"
)

// GroupStore 把两条读路径放在可见的不同方法上：
//
//   - IsMember / IsAdmin / HasAnyMembers：特权、非递归。直接查 group_members，
//     不套任何行过滤。guard 谓词“查成员表来保护成员表”只允许走这里——
//     谓词复用被保护的过滤读是自指环，naive 展开就是无界递归，这在本仓库
//     是构造期错误（service 层约定：谓词只调这三个方法）。
//   - ListMembersRestricted：降级读。只回调用方自己的行和创建人的行，
//     牺牲“成员互见”换一个结构上不可能递归的谓词。非默认，开关见 service。
type GroupStore struct {
	pool *pgxpool.Pool
}

func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{pool: pool}
}

// —— 特权助手（非递归） ——

func (s *GroupStore) IsMember(ctx context.Context, groupID, profileID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND profile_id = $2)`,
		groupID, profileID).Scan(&ok)
	if err != nil {
		return false, pkgerr.Wrap(err, "groupStore.IsMember")
	}
	return ok, nil
}

func (s *GroupStore) IsAdmin(ctx context.Context, groupID, profileID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members
		  WHERE group_id = $1 AND profile_id = $2 AND role = $3)`,
		groupID, profileID, model.RoleAdmin).Scan(&ok)
	if err != nil {
		return false, pkgerr.Wrap(err, "groupStore.IsAdmin")
	}
	return ok, nil
}

// HasAnyMembers 只为放行空群的第一行成员（创建人自举）存在。
func (s *GroupStore) HasAnyMembers(ctx context.Context, groupID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1)`,
		groupID).Scan(&ok)
	if err != nil {
		return false, pkgerr.Wrap(err, "groupStore.HasAnyMembers")
	}
	return ok, nil
}

// —— 写路径 ——

// CreateGroup 建群和创建人 admin 行同一事务：群落地即至少有一个 admin。
// 成员行 ON CONFLICT DO NOTHING，重放不报错不重复。
func (s *GroupStore) CreateGroup(ctx context.Context, g *model.Group) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pkgerr.Wrap(err, "groupStore.CreateGroup.begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO groups (id, name, creator_id, create_time, update_time)
		 VALUES ($1, $2, $3, $4, $4) ON CONFLICT (id) DO NOTHING`,
		g.ID, g.Name, g.CreatorID, g.CreateTime); err != nil {
		if pg.IsForeignKeyViolation(err) {
			return errs.ErrBadReference.WrapMsg("group creator", "creator", g.CreatorID)
		}
		return pkgerr.Wrap(err, "groupStore.CreateGroup")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO group_members (group_id, profile_id, role, join_time)
		 VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
		g.ID, g.CreatorID, model.RoleAdmin, g.CreateTime); err != nil {
		return pkgerr.Wrap(err, "groupStore.CreateGroup.creatorAdmin")
	}
	return tx.Commit(ctx)
}

// InsertMember 重复入群按无害 no-op 处理（返回 false）。
func (s *GroupStore) InsertMember(ctx context.Context, m *model.GroupMember) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, profile_id, role, join_time)
		 VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
		m.GroupID, m.ProfileID, m.Role, m.JoinTime)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return false, errs.ErrBadReference.WrapMsg("group member", "group", m.GroupID, "profile", m.ProfileID)
		}
		return false, pkgerr.Wrap(err, "groupStore.InsertMember")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *GroupStore) InsertMessage(ctx context.Context, m *model.GroupMessage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pkgerr.Wrap(err, "groupStore.InsertMessage.begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO group_messages (id, group_id, sender_id, content, create_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.GroupID, m.SenderID, m.Content, m.CreateTime); err != nil {
		if pg.IsForeignKeyViolation(err) {
			return errs.ErrBadReference.WrapMsg("group message", "group", m.GroupID)
		}
		return pkgerr.Wrap(err, "groupStore.InsertMessage")
	}
	if _, err := tx.Exec(ctx,
		`UPDATE groups SET update_time = $2 WHERE id = $1`,
		m.GroupID, m.CreateTime); err != nil {
		return pkgerr.Wrap(err, "groupStore.InsertMessage.bump")
	}
	return tx.Commit(ctx)
}

// —— 读路径 ——

// GetGroup 特权读；可见性裁决在 service 层用 IsMember 做。
func (s *GroupStore) GetGroup(ctx context.Context, groupID string) (*model.Group, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, creator_id, create_time, update_time FROM groups WHERE id = $1`,
		groupID)
	var g model.Group
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreateTime, &g.UpdateTime)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerr.Wrap(err, "groupStore.GetGroup")
	}
	return &g, nil
}

func (s *GroupStore) ListMembers(ctx context.Context, groupID string) ([]*model.GroupMember, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT group_id, profile_id, role, join_time FROM group_members
		  WHERE group_id = $1 ORDER BY join_time`, groupID)
	if err != nil {
		return nil, pkgerr.Wrap(err, "groupStore.ListMembers")
	}
	return collectMembers(rows)
}

// ListMembersRestricted 降级读：自己的行 + 创建人的行。
func (s *GroupStore) ListMembersRestricted(ctx context.Context, groupID, callerID string) ([]*model.GroupMember, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT gm.group_id, gm.profile_id, gm.role, gm.join_time
		   FROM group_members gm
		   JOIN groups g ON g.id = gm.group_id
		  WHERE gm.group_id = $1
		    AND (gm.profile_id = $2 OR gm.profile_id = g.creator_id)
		  ORDER BY gm.join_time`, groupID, callerID)
	if err != nil {
		return nil, pkgerr.Wrap(err, "groupStore.ListMembersRestricted")
	}
	return collectMembers(rows)
}

func (s *GroupStore) ListGroupsForMember(ctx context.Context, profileID string) ([]*model.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.creator_id, g.create_time, g.update_time
		   FROM groups g
		   JOIN group_members gm ON gm.group_id = g.id
		  WHERE gm.profile_id = $1
		  ORDER BY g.update_time DESC`, profileID)
	if err != nil {
		return nil, pkgerr.Wrap(err, "groupStore.ListGroupsForMember")
	}
	defer rows.Close()

	out := make([]*model.Group, 0, 8)
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreateTime, &g.UpdateTime); err != nil {
			return nil, pkgerr.Wrap(err, "groupStore.ListGroupsForMember.scan")
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (s *GroupStore) ListMessages(ctx context.Context, groupID string, limit int) ([]*model.GroupMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, group_id, sender_id, content, create_time FROM group_messages
		  WHERE group_id = $1 ORDER BY create_time DESC LIMIT $2`, groupID, limit)
	if err != nil {
		return nil, pkgerr.Wrap(err, "groupStore.ListMessages")
	}
	defer rows.Close()

	out := make([]*model.GroupMessage, 0, limit)
	for rows.Next() {
		var m model.GroupMessage
		if err := rows.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Content, &m.CreateTime); err != nil {
			return nil, pkgerr.Wrap(err, "groupStore.ListMessages.scan")
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func collectMembers(rows pgx.Rows) ([]*model.GroupMember, error) {
	defer rows.Close()
	out := make([]*model.GroupMember, 0, 16)
	for rows.Next() {
		var m model.GroupMember
		if err := rows.Scan(&m.GroupID, &m.ProfileID, &m.Role, &m.JoinTime); err != nil {
			return nil, pkgerr.Wrap(err, "groupStore.collectMembers")
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

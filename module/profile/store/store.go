package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerr "github.com/pkg/errors"

	"SProject/data/database/pg"
	"SProject/module/profile/model"
	errs "SProject/tools/errs"
)

// ProfileStore 是特权读路径：不套任何行过滤。
// 所有 guard 谓词都要能调它做身份解析，所以它自己绝不能再被谓词保护（否则循环）。
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

const profileCols = `id, external_id, handle, avatar_url, bio, create_time, update_time`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.ExternalID, &p.Handle, &p.AvatarURL, &p.Bio, &p.CreateTime, &p.UpdateTime)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerr.Wrap(err, "profileStore.scan")
	}
	return &p, nil
}

// GetByExternalID 查不到返回 (nil, nil)。
func (s *ProfileStore) GetByExternalID(ctx context.Context, externalID string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE external_id = $1`, externalID)
	return scanProfile(row)
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (s *ProfileStore) GetByHandle(ctx context.Context, handle string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE handle = $1`, handle)
	return scanProfile(row)
}

// Insert 冲突直接上抛（external_id 撞说明并发建档，handle 撞说明撞名），
// 由 service 决定取已存在行还是换 handle 重试。
func (s *ProfileStore) Insert(ctx context.Context, p *model.Profile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (`+profileCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.ExternalID, p.Handle, p.AvatarURL, p.Bio, p.CreateTime, p.UpdateTime)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return errs.ErrDuplicateKey.WrapMsg("profile insert", "handle", p.Handle)
		}
		return pkgerr.Wrap(err, "profileStore.Insert")
	}
	return nil
}

// UpdateDisplay 只动展示字段，update_time 由这里统一 bump，客户端传不进来。
// bio 是指针：nil 不动原值，指向空串才是清空。
func (s *ProfileStore) UpdateDisplay(ctx context.Context, id, handle, avatarURL string, bio *string, now time.Time) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE profiles
		    SET handle = COALESCE(NULLIF($2, ''), handle),
		        avatar_url = COALESCE(NULLIF($3, ''), avatar_url),
		        bio = COALESCE($4, bio),
		        update_time = $5
		  WHERE id = $1
		  RETURNING `+profileCols,
		id, handle, avatarURL, bio, now)
	p, err := scanProfile(row)
	if err != nil && pg.IsUniqueViolation(err) {
		return nil, errs.ErrDuplicateKey.WrapMsg("handle taken", "handle", handle)
	}
	return p, err
}

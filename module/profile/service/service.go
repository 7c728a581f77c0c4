package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"SProject/global"
	"SProject/logger"
	"SProject/module/profile/model"
	errs "SProject/tools/errs"
	ids "SProject/tools/ids"
	jwtlib "SProject/tools/security"
)

// Store 身份解析需要的特权读写面；pgx 实现见 module/profile/store。
type Store interface {
	GetByExternalID(ctx context.Context, externalID string) (*model.Profile, error)
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*model.Profile, error)
	Insert(ctx context.Context, p *model.Profile) error
	UpdateDisplay(ctx context.Context, id, handle, avatarURL string, bio *string, now time.Time) (*model.Profile, error)
}

// SessionCache 解析路径前置的会话缓存；只存 token hash → profile_id 绑定。
type SessionCache interface {
	Load(ctx context.Context, tokenHash string) (*global.UserSession, error)
}

// Resolver 把外部身份映射到唯一的 profile 行。
// 其余所有 guard 的起点；解析本身走特权路径，事务内结果稳定。
type Resolver struct {
	store    Store
	sessions SessionCache // 可空；只是优化，profiles 表才是权威
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// AttachSessions 挂上会话缓存；命中时按主键取 profile 行，省掉 external_id 索引查。
func (r *Resolver) AttachSessions(sessions SessionCache) {
	r.sessions = sessions
}

// Resolve 只解析不建档；未建档返回 ErrIdentityMissing。
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*model.Profile, error) {
	p, err := r.store.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.ErrIdentityMissing.Wrap()
	}
	return p, nil
}

// ResolveCached 先问会话缓存拿 profile_id 绑定；缓存出错或不一致走冷路径。
func (r *Resolver) ResolveCached(ctx context.Context, externalID, tokenHash string) (*model.Profile, error) {
	if r.sessions != nil && tokenHash != "" {
		sess, err := r.sessions.Load(ctx, tokenHash)
		if err == nil && sess != nil && sess.ProfileID != "" && sess.Subject == externalID {
			if p, gerr := r.store.GetByID(ctx, sess.ProfileID); gerr == nil && p != nil {
				return p, nil
			}
		}
	}
	return r.Resolve(ctx, externalID)
}

// EnsureProfile 懒建档：首次登录用身份源给的 hint 建行，已有则直接返回。
// 并发首登被 external_id 唯一约束串行化：撞了就取对方插的那行。
func (r *Resolver) EnsureProfile(ctx context.Context, id *jwtlib.Identity) (*model.Profile, error) {
	existing, err := r.store.GetByExternalID(ctx, id.Subject)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	p := &model.Profile{
		ID:         ids.GenerateString(),
		ExternalID: id.Subject,
		Handle:     normalizeHandle(id.Handle, id.Subject),
		AvatarURL:  id.AvatarURL,
		CreateTime: now,
		UpdateTime: now,
	}

	err = r.store.Insert(ctx, p)
	if errors.Is(err, errs.ErrDuplicateKey) {
		// 可能是并发首登（external_id 撞），也可能是 handle 撞名
		if again, gerr := r.store.GetByExternalID(ctx, id.Subject); gerr == nil && again != nil {
			return again, nil
		}
		p.Handle = p.Handle + "-" + p.ID[len(p.ID)-6:]
		if err = r.store.Insert(ctx, p); err != nil {
			return nil, err
		}
		logger.Info("handle collision on first sign-in, suffixed",
			zap.String("profile_id", p.ID), zap.String("handle", p.Handle))
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateParams 空串表示不改；bio 允许清空所以用指针带标记：
// nil 不改，指向空串则清空。
type UpdateParams struct {
	Handle    string
	AvatarURL string
	Bio       *string
}

func (r *Resolver) UpdateProfile(ctx context.Context, callerID string, in UpdateParams) (*model.Profile, error) {
	p, err := r.store.UpdateDisplay(ctx, callerID, strings.TrimSpace(in.Handle), in.AvatarURL, in.Bio, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.ErrRecordNotFound.Wrap()
	}
	return p, nil
}

// GetProfile 档案对已认证调用方公开可读。
func (r *Resolver) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.ErrRecordNotFound.Wrap()
	}
	return p, nil
}

// GetByHandle handle 查档；大小写按建档时的规整形态。
func (r *Resolver) GetByHandle(ctx context.Context, handle string) (*model.Profile, error) {
	p, err := r.store.GetByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.ErrRecordNotFound.Wrap()
	}
	return p, nil
}

func normalizeHandle(hint, subject string) string {
	h := strings.TrimSpace(strings.ToLower(hint))
	h = strings.ReplaceAll(h, " ", "_")
	if h == "" {
		// 身份源没给用户名 hint，退化用 subject 派生
		h = "user_" + subject
		if len(h) > 24 {
			h = h[:24]
		}
	}
	return h
}

package storage

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"SProject/global"
	redisStore "SProject/service/storage/redis"
)

const sessionKeyPrefix = "session:" // session:<token_hash>

// SessionStore 登录会话存取：redis 按 token hash 键存。
// 只是身份解析前面的一层缓存，出错走冷路径（重新查 profiles 表），不阻断请求。
type SessionStore struct{}

func NewSessionStore() *SessionStore { return &SessionStore{} }

func (s *SessionStore) Save(ctx context.Context, sess *global.UserSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return redisStore.GetRedis().Set(ctx, sessionKeyPrefix+sess.TokenHash, data, ttl).Err()
}

// Load 查不到返回 (nil, nil)。
func (s *SessionStore) Load(ctx context.Context, tokenHash string) (*global.UserSession, error) {
	data, err := redisStore.GetRedis().Get(ctx, sessionKeyPrefix+tokenHash).Bytes()
	if err == redislib.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess global.UserSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Ensure 没有会话就建一条，有则把 profile_id 回写进去。
func (s *SessionStore) Ensure(ctx context.Context, sess *global.UserSession, ttl time.Duration) error {
	existing, err := s.Load(ctx, sess.TokenHash)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.ProfileID = sess.ProfileID
		return s.Save(ctx, existing, ttl)
	}
	return s.Save(ctx, sess, ttl)
}

func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	return redisStore.GetRedis().Del(ctx, sessionKeyPrefix+tokenHash).Err()
}

package pg

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pgOnce sync.Once
	pgMgr  *PgManager
)

type PgManager struct {
	pool *pgxpool.Pool
}

// Config 用于初始化 Postgres 连接池
type Config struct {
	DSN      string
	MaxConns int32
}

// InitPg 初始化连接池（单例）
func InitPg(ctx context.Context, c Config) error {
	var initErr error
	pgOnce.Do(func() {
		cfg, err := pgxpool.ParseConfig(c.DSN)
		if err != nil {
			initErr = err
			return
		}
		if c.MaxConns > 0 {
			cfg.MaxConns = c.MaxConns
		}

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			initErr = err
			return
		}

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			initErr = err
			return
		}
		pgMgr = &PgManager{pool: pool}
	})
	return initErr
}

// GetPool 获取连接池
func GetPool() *pgxpool.Pool {
	if pgMgr == nil {
		panic("Postgres not initialized, call InitPg first")
	}
	return pgMgr.pool
}

func ClosePg() {
	if pgMgr != nil && pgMgr.pool != nil {
		pgMgr.pool.Close()
	}
}

// —— pg 错误分类 ——
// 23505 unique_violation / 23503 foreign_key_violation
// service 层靠这两个判定把存储错误映射到业务错误码。

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

package store

import (
	"context"
	"time"

	"SProject/data/database/pg"
	"SProject/module/feed/model"
	"SProject/tools/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FeedStore 持有 posts/likes/comments 三张表。
// 计数列 likes_count/comments_count 只在这里的事务内随行变更一起维护：
// 先插/删行，再按受影响行数决定加减，避免重复操作把计数刷歪。
type FeedStore struct {
	pool *pgxpool.Pool
}

func NewFeedStore(pool *pgxpool.Pool) *FeedStore {
	return &FeedStore{pool: pool}
}

func (s *FeedStore) CreatePost(ctx context.Context, p *model.Post) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO posts (id, author_id, content, likes_count, comments_count, create_time, update_time)
		 VALUES ($1, $2, $3, 0, 0, $4, $4)`,
		p.ID, p.AuthorID, p.Content, p.CreateTime)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return errs.ErrBadReference.Wrap()
		}
		return errs.Wrap(err)
	}
	return nil
}

func (s *FeedStore) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, author_id, content, likes_count, comments_count, create_time, update_time
		 FROM posts WHERE id = $1`, postID)
	var p model.Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &p.LikesCount, &p.CommentsCount, &p.CreateTime, &p.UpdateTime)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &p, nil
}

func (s *FeedStore) ListPostsByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, author_id, content, likes_count, comments_count, create_time, update_time
		 FROM posts WHERE author_id = $1
		 ORDER BY create_time DESC LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer rows.Close()
	var out []*model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.LikesCount, &p.CommentsCount, &p.CreateTime, &p.UpdateTime); err != nil {
			return nil, errs.Wrap(err)
		}
		out = append(out, &p)
	}
	return out, errs.Wrap(rows.Err())
}

// DeletePost 只删作者本人的帖子；级联清理交给外键,计数随行一起消失。
// 返回是否真的删了一行。
func (s *FeedStore) DeletePost(ctx context.Context, postID, authorID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM posts WHERE id = $1 AND author_id = $2`, postID, authorID)
	if err != nil {
		return false, errs.Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertLike 点赞。行插入与计数自增同一事务；
// ON CONFLICT DO NOTHING 使重复点赞既不报错也不二次计数。
func (s *FeedStore) InsertLike(ctx context.Context, postID, profileID string, now time.Time) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, errs.Wrap(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO likes (post_id, profile_id, create_time)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (post_id, profile_id) DO NOTHING`,
		postID, profileID, now)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return false, errs.ErrBadReference.Wrap()
		}
		return false, errs.Wrap(err)
	}
	inserted := tag.RowsAffected() > 0
	if inserted {
		if _, err := tx.Exec(ctx,
			`UPDATE posts SET likes_count = likes_count + 1 WHERE id = $1`, postID); err != nil {
			return false, errs.Wrap(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, errs.Wrap(err)
	}
	return inserted, nil
}

// DeleteLike 取消点赞。只有确实删掉一行才减计数，
// 重复取消不会把计数减到负数。
func (s *FeedStore) DeleteLike(ctx context.Context, postID, profileID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, errs.Wrap(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM likes WHERE post_id = $1 AND profile_id = $2`, postID, profileID)
	if err != nil {
		return false, errs.Wrap(err)
	}
	deleted := tag.RowsAffected() > 0
	if deleted {
		if _, err := tx.Exec(ctx,
			`UPDATE posts SET likes_count = likes_count - 1 WHERE id = $1 AND likes_count > 0`, postID); err != nil {
			return false, errs.Wrap(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, errs.Wrap(err)
	}
	return deleted, nil
}

func (s *FeedStore) HasLiked(ctx context.Context, postID, profileID string) (bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND profile_id = $2)`,
		postID, profileID)
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, errs.Wrap(err)
	}
	return ok, nil
}

// InsertComment 评论行与 comments_count 自增同一事务。
func (s *FeedStore) InsertComment(ctx context.Context, c *model.Comment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, create_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.PostID, c.AuthorID, c.Content, c.CreateTime)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return errs.ErrBadReference.Wrap()
		}
		return errs.Wrap(err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1`, c.PostID); err != nil {
		return errs.Wrap(err)
	}
	return errs.Wrap(tx.Commit(ctx))
}

// DeleteComment 作者删自己的评论，同事务回退计数。
func (s *FeedStore) DeleteComment(ctx context.Context, commentID, authorID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, errs.Wrap(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`DELETE FROM comments WHERE id = $1 AND author_id = $2 RETURNING post_id`,
		commentID, authorID)
	var postID string
	err = row.Scan(&postID)
	if err == pgx.ErrNoRows {
		return false, errs.Wrap(tx.Commit(ctx))
	}
	if err != nil {
		return false, errs.Wrap(err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE posts SET comments_count = comments_count - 1 WHERE id = $1 AND comments_count > 0`, postID); err != nil {
		return false, errs.Wrap(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, errs.Wrap(err)
	}
	return true, nil
}

func (s *FeedStore) ListComments(ctx context.Context, postID string, limit int) ([]*model.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, post_id, author_id, content, create_time
		 FROM comments WHERE post_id = $1
		 ORDER BY create_time ASC LIMIT $2`, postID, limit)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer rows.Close()
	var out []*model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreateTime); err != nil {
			return nil, errs.Wrap(err)
		}
		out = append(out, &c)
	}
	return out, errs.Wrap(rows.Err())
}

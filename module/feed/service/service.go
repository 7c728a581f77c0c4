package service

import (
	"context"
	"strings"
	"time"

	"SProject/logger"
	"SProject/module/feed/model"
	"SProject/tools/errs"
	"SProject/tools/ids"

	"go.uber.org/zap"
)

// Store 是 service 消费侧需要的帖子存储能力。
type Store interface {
	CreatePost(ctx context.Context, p *model.Post) error
	GetPost(ctx context.Context, postID string) (*model.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Post, error)
	DeletePost(ctx context.Context, postID, authorID string) (bool, error)

	InsertLike(ctx context.Context, postID, profileID string, now time.Time) (bool, error)
	DeleteLike(ctx context.Context, postID, profileID string) (bool, error)
	HasLiked(ctx context.Context, postID, profileID string) (bool, error)

	InsertComment(ctx context.Context, c *model.Comment) error
	DeleteComment(ctx context.Context, commentID, authorID string) (bool, error)
	ListComments(ctx context.Context, postID string, limit int) ([]*model.Comment, error)
}

type FeedService struct {
	store Store
}

func NewFeedService(store Store) *FeedService {
	return &FeedService{store: store}
}

// CreatePost 作者永远是调用者本人，handler 传不进别的 author。
func (s *FeedService) CreatePost(ctx context.Context, callerID, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrArgs.WrapMsg("empty content")
	}
	p := &model.Post{
		ID:         ids.GenerateString(),
		AuthorID:   callerID,
		Content:    content,
		CreateTime: time.Now().UTC(),
	}
	p.UpdateTime = p.CreateTime
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FeedService) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	return s.store.GetPost(ctx, postID)
}

func (s *FeedService) ListPosts(ctx context.Context, authorID string, limit int) ([]*model.Post, error) {
	return s.store.ListPostsByAuthor(ctx, authorID, limit)
}

// DeletePost 非作者删帖在 SQL 的 author 条件上落空,这里翻译成权限错误。
func (s *FeedService) DeletePost(ctx context.Context, callerID, postID string) error {
	deleted, err := s.store.DeletePost(ctx, postID, callerID)
	if err != nil {
		return err
	}
	if !deleted {
		p, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if p == nil {
			return errs.ErrRecordNotFound.Wrap()
		}
		return errs.ErrNoPermission.WrapMsg("not the author")
	}
	return nil
}

// Like 重复点赞是 no-op；计数跟随行插入在 store 同事务里走。
func (s *FeedService) Like(ctx context.Context, callerID, postID string) error {
	inserted, err := s.store.InsertLike(ctx, postID, callerID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !inserted {
		logger.Debug("like already exists", zap.String("post_id", postID), zap.String("profile_id", callerID))
	}
	return nil
}

// Unlike 没点过赞时同样静默成功。
func (s *FeedService) Unlike(ctx context.Context, callerID, postID string) error {
	_, err := s.store.DeleteLike(ctx, postID, callerID)
	return err
}

func (s *FeedService) HasLiked(ctx context.Context, callerID, postID string) (bool, error) {
	return s.store.HasLiked(ctx, postID, callerID)
}

func (s *FeedService) Comment(ctx context.Context, callerID, postID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrArgs.WrapMsg("empty content")
	}
	c := &model.Comment{
		ID:         ids.GenerateString(),
		PostID:     postID,
		AuthorID:   callerID,
		Content:    content,
		CreateTime: time.Now().UTC(),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *FeedService) DeleteComment(ctx context.Context, callerID, commentID string) error {
	deleted, err := s.store.DeleteComment(ctx, commentID, callerID)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.ErrNoPermission.WrapMsg("not the comment author")
	}
	return nil
}

func (s *FeedService) ListComments(ctx context.Context, postID string, limit int) ([]*model.Comment, error) {
	return s.store.ListComments(ctx, postID, limit)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"SProject/module/feed/model"
	"SProject/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type likeKey struct {
	postID    string
	profileID string
}

// fakeFeedStore 按真实 store 的事务语义维护计数:
// 只有行真的插入/删除时计数才动。
type fakeFeedStore struct {
	posts    map[string]*model.Post
	likes    map[likeKey]time.Time
	comments map[string]*model.Comment
}

func newFakeFeedStore() *fakeFeedStore {
	return &fakeFeedStore{
		posts:    map[string]*model.Post{},
		likes:    map[likeKey]time.Time{},
		comments: map[string]*model.Comment{},
	}
}

func (f *fakeFeedStore) CreatePost(_ context.Context, p *model.Post) error {
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakeFeedStore) GetPost(_ context.Context, postID string) (*model.Post, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeFeedStore) ListPostsByAuthor(_ context.Context, authorID string, _ int) ([]*model.Post, error) {
	var out []*model.Post
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeFeedStore) DeletePost(_ context.Context, postID, authorID string) (bool, error) {
	p, ok := f.posts[postID]
	if !ok || p.AuthorID != authorID {
		return false, nil
	}
	delete(f.posts, postID)
	return true, nil
}

func (f *fakeFeedStore) InsertLike(_ context.Context, postID, profileID string, now time.Time) (bool, error) {
	if _, ok := f.posts[postID]; !ok {
		return false, errs.ErrBadReference.Wrap()
	}
	k := likeKey{postID, profileID}
	if _, ok := f.likes[k]; ok {
		return false, nil
	}
	f.likes[k] = now
	f.posts[postID].LikesCount++
	return true, nil
}

func (f *fakeFeedStore) DeleteLike(_ context.Context, postID, profileID string) (bool, error) {
	k := likeKey{postID, profileID}
	if _, ok := f.likes[k]; !ok {
		return false, nil
	}
	delete(f.likes, k)
	if p, ok := f.posts[postID]; ok && p.LikesCount > 0 {
		p.LikesCount--
	}
	return true, nil
}

func (f *fakeFeedStore) HasLiked(_ context.Context, postID, profileID string) (bool, error) {
	_, ok := f.likes[likeKey{postID, profileID}]
	return ok, nil
}

func (f *fakeFeedStore) InsertComment(_ context.Context, c *model.Comment) error {
	if _, ok := f.posts[c.PostID]; !ok {
		return errs.ErrBadReference.Wrap()
	}
	cp := *c
	f.comments[c.ID] = &cp
	f.posts[c.PostID].CommentsCount++
	return nil
}

func (f *fakeFeedStore) DeleteComment(_ context.Context, commentID, authorID string) (bool, error) {
	c, ok := f.comments[commentID]
	if !ok || c.AuthorID != authorID {
		return false, nil
	}
	delete(f.comments, commentID)
	if p, ok := f.posts[c.PostID]; ok && p.CommentsCount > 0 {
		p.CommentsCount--
	}
	return true, nil
}

func (f *fakeFeedStore) ListComments(_ context.Context, postID string, _ int) ([]*model.Comment, error) {
	var out []*model.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestCreatePostTimestampIsUTC(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	post, err := svc.CreatePost(ctx, "u_author", "hello")
	require.NoError(t, err)
	// 时间统一落 UTC,跨实例排序不受宿主机时区影响
	assert.Equal(t, time.UTC, post.CreateTime.Location())

	c, err := svc.Comment(ctx, "u1", post.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.CreateTime.Location())
}

func TestLikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	post, err := svc.CreatePost(ctx, "u_author", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, "u_fan", post.ID))
	require.NoError(t, svc.Like(ctx, "u_fan", post.ID))
	require.NoError(t, svc.Like(ctx, "u_fan", post.ID))

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikesCount)
}

func TestUnlikeDecrementsOnlyWhenRowExisted(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	post, err := svc.CreatePost(ctx, "u_author", "hello")
	require.NoError(t, err)

	// 没点过赞就取消,计数不能掉到负数
	require.NoError(t, svc.Unlike(ctx, "u_fan", post.ID))
	got, _ := svc.GetPost(ctx, post.ID)
	assert.Equal(t, int64(0), got.LikesCount)

	require.NoError(t, svc.Like(ctx, "u_fan", post.ID))
	require.NoError(t, svc.Unlike(ctx, "u_fan", post.ID))
	require.NoError(t, svc.Unlike(ctx, "u_fan", post.ID))

	got, _ = svc.GetPost(ctx, post.ID)
	assert.Equal(t, int64(0), got.LikesCount)
}

func TestLikeRoundTripAcrossCallers(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	post, err := svc.CreatePost(ctx, "u_author", "hello")
	require.NoError(t, err)

	for _, u := range []string{"u1", "u2", "u3"} {
		require.NoError(t, svc.Like(ctx, u, post.ID))
	}
	require.NoError(t, svc.Unlike(ctx, "u2", post.ID))

	got, _ := svc.GetPost(ctx, post.ID)
	assert.Equal(t, int64(2), got.LikesCount)

	liked, err := svc.HasLiked(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, _ = svc.HasLiked(ctx, "u2", post.ID)
	assert.False(t, liked)
}

func TestCommentCounterFollowsRows(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	post, err := svc.CreatePost(ctx, "u_author", "hello")
	require.NoError(t, err)

	c1, err := svc.Comment(ctx, "u1", post.ID, "first")
	require.NoError(t, err)
	_, err = svc.Comment(ctx, "u2", post.ID, "second")
	require.NoError(t, err)

	got, _ := svc.GetPost(ctx, post.ID)
	assert.Equal(t, int64(2), got.CommentsCount)

	// 别人删不掉 u1 的评论,计数不变
	err = svc.DeleteComment(ctx, "u2", c1.ID)
	assert.True(t, errors.Is(err, errs.ErrNoPermission))
	got, _ = svc.GetPost(ctx, post.ID)
	assert.Equal(t, int64(2), got.CommentsCount)

	require.NoError(t, svc.DeleteComment(ctx, "u1", c1.ID))
	got, _ = svc.GetPost(ctx, post.ID)
	assert.Equal(t, int64(1), got.CommentsCount)
}

func TestDeletePostOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	post, err := svc.CreatePost(ctx, "u_author", "hello")
	require.NoError(t, err)

	err = svc.DeletePost(ctx, "u_other", post.ID)
	assert.True(t, errors.Is(err, errs.ErrNoPermission))

	require.NoError(t, svc.DeletePost(ctx, "u_author", post.ID))

	err = svc.DeletePost(ctx, "u_author", post.ID)
	assert.True(t, errors.Is(err, errs.ErrRecordNotFound))
}

func TestEmptyContentRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(newFakeFeedStore())

	_, err := svc.CreatePost(ctx, "u1", "   ")
	assert.True(t, errors.Is(err, errs.ErrArgs))

	post, err := svc.CreatePost(ctx, "u1", "ok")
	require.NoError(t, err)
	_, err = svc.Comment(ctx, "u1", post.ID, "")
	assert.True(t, errors.Is(err, errs.ErrArgs))
}

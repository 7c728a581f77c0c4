package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SProject/module/relation/model"
	errs "SProject/tools/errs"
)

// fakeRelationStore 用 map 复刻存储语义：
// (sender, receiver) 主键 upsert、accept 同“事务”内物化边、删边清请求。
type fakeRelationStore struct {
	requests map[[2]string]*model.FollowRequest
	edges    map[[2]string]*model.FollowEdge
}

func newFakeRelationStore() *fakeRelationStore {
	return &fakeRelationStore{
		requests: map[[2]string]*model.FollowRequest{},
		edges:    map[[2]string]*model.FollowEdge{},
	}
}

func (f *fakeRelationStore) UpsertRequest(_ context.Context, senderID, receiverID string, now time.Time) (*model.FollowRequest, error) {
	k := [2]string{senderID, receiverID}
	if r, ok := f.requests[k]; ok {
		if r.Status == model.RequestAccepted {
			cp := *r
			return &cp, nil
		}
		r.Status = model.RequestPending
		r.UpdateTime = now
		cp := *r
		return &cp, nil
	}
	r := &model.FollowRequest{
		SenderID: senderID, ReceiverID: receiverID,
		Status: model.RequestPending, CreateTime: now, UpdateTime: now,
	}
	f.requests[k] = r
	cp := *r
	return &cp, nil
}

func (f *fakeRelationStore) GetRequest(_ context.Context, senderID, receiverID string) (*model.FollowRequest, error) {
	if r, ok := f.requests[[2]string{senderID, receiverID}]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRelationStore) AcceptRequest(_ context.Context, senderID, receiverID string, now time.Time) error {
	k := [2]string{senderID, receiverID}
	r, ok := f.requests[k]
	if !ok || r.Status != model.RequestPending {
		return nil
	}
	r.Status = model.RequestAccepted
	r.UpdateTime = now
	ek := [2]string{senderID, receiverID}
	if _, exists := f.edges[ek]; !exists { // ON CONFLICT DO NOTHING
		f.edges[ek] = &model.FollowEdge{FollowerID: senderID, FolloweeID: receiverID, CreateTime: now}
	}
	return nil
}

func (f *fakeRelationStore) RejectRequest(_ context.Context, senderID, receiverID string, now time.Time) (bool, error) {
	k := [2]string{senderID, receiverID}
	r, ok := f.requests[k]
	if !ok || r.Status != model.RequestPending {
		return false, nil
	}
	r.Status = model.RequestRejected
	r.UpdateTime = now
	return true, nil
}

func (f *fakeRelationStore) DeleteRequest(_ context.Context, senderID, receiverID, byStatus string) (bool, error) {
	k := [2]string{senderID, receiverID}
	r, ok := f.requests[k]
	if !ok {
		return false, nil
	}
	if byStatus != "" && r.Status != byStatus {
		return false, nil
	}
	delete(f.requests, k)
	return true, nil
}

func (f *fakeRelationStore) DeleteEdge(_ context.Context, followerID, followeeID string) (bool, error) {
	k := [2]string{followerID, followeeID}
	_, ok := f.edges[k]
	delete(f.edges, k)
	delete(f.requests, k)
	return ok, nil
}

func (f *fakeRelationStore) EdgeExists(_ context.Context, followerID, followeeID string) (bool, error) {
	_, ok := f.edges[[2]string{followerID, followeeID}]
	return ok, nil
}

func (f *fakeRelationStore) AreMutual(_ context.Context, a, b string) (bool, error) {
	_, ab := f.edges[[2]string{a, b}]
	_, ba := f.edges[[2]string{b, a}]
	return ab && ba, nil
}

func (f *fakeRelationStore) ListIncomingRequests(_ context.Context, receiverID string) ([]*model.FollowRequest, error) {
	out := []*model.FollowRequest{}
	for _, r := range f.requests {
		if r.ReceiverID == receiverID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRelationStore) ListFollowing(_ context.Context, followerID string) ([]*model.FollowEdge, error) {
	out := []*model.FollowEdge{}
	for _, e := range f.edges {
		if e.FollowerID == followerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRelationStore) ListFollowers(_ context.Context, followeeID string) ([]*model.FollowEdge, error) {
	out := []*model.FollowEdge{}
	for _, e := range f.edges {
		if e.FolloweeID == followeeID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestRequestFollow_SelfLoopRejected(t *testing.T) {
	svc := NewRelationService(newFakeRelationStore())
	_, err := svc.RequestFollow(context.Background(), "u1", "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSelfRelation))
}

func TestRequestFollow_SingleRowPerPair(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Len(t, fake.requests, 1)
}

func TestRespond_RejectThenReRequestResetsPending(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u2", "u1", false))

	r, _ := fake.GetRequest(ctx, "u1", "u2")
	assert.Equal(t, model.RequestRejected, r.Status)

	// 被拒后重发：同一行回到 pending，不会长出第二行
	_, err = svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	r, _ = fake.GetRequest(ctx, "u1", "u2")
	assert.Equal(t, model.RequestPending, r.Status)
	assert.Len(t, fake.requests, 1)
}

func TestRespond_AcceptIdempotent(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))
	require.NoError(t, svc.Respond(ctx, "u2", "u1", true)) // 重复 accept

	assert.Len(t, fake.edges, 1)
	following, err := svc.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, following)
}

func TestRequestFollow_ReRequestKeepsAccepted(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))

	// 已接受后重发申请：状态不回 pending，边不受影响
	req, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, model.RequestAccepted, req.Status)

	r, _ := fake.GetRequest(ctx, "u1", "u2")
	assert.Equal(t, model.RequestAccepted, r.Status)
	following, _ := svc.IsFollowing(ctx, "u1", "u2")
	assert.True(t, following)
}

func TestRespond_AcceptedCannotFlipToRejected(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))

	err = svc.Respond(ctx, "u2", "u1", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrRequestState))
}

func TestIsMutual_OneSidedNeverMutual(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	// u1 → u2 单向
	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))

	following, _ := svc.IsFollowing(ctx, "u1", "u2")
	assert.True(t, following)
	mutual, _ := svc.IsMutual(ctx, "u1", "u2")
	assert.False(t, mutual, "one-sided edge must not be mutual")

	// 反向补齐后互关成立
	_, err = svc.RequestFollow(ctx, "u2", "u1")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u1", "u2", true))

	mutual, _ = svc.IsMutual(ctx, "u1", "u2")
	assert.True(t, mutual)
	mutual, _ = svc.IsMutual(ctx, "u2", "u1")
	assert.True(t, mutual, "mutuality is symmetric")
}

func TestCancel_OnlyPending(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))

	// accept 之后发送方不能再撤回
	err = svc.Cancel(ctx, "u1", "u2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrRecordNotFound))
}

func TestUnfollow_CleansLingeringRequest(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	_, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))
	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))

	assert.Empty(t, fake.edges)
	assert.Empty(t, fake.requests, "request row cleared so a fresh request can be sent")

	// 重新申请畅通
	_, err = svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
}

func TestScenario_RequestAcceptFollowEdge(t *testing.T) {
	fake := newFakeRelationStore()
	svc := NewRelationService(fake)
	ctx := context.Background()

	req, err := svc.RequestFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)

	require.NoError(t, svc.Respond(ctx, "u2", "u1", true))

	r, _ := fake.GetRequest(ctx, "u1", "u2")
	assert.Equal(t, model.RequestAccepted, r.Status)

	following, _ := svc.IsFollowing(ctx, "u1", "u2")
	assert.True(t, following)
	mutual, _ := svc.IsMutual(ctx, "u1", "u2")
	assert.False(t, mutual, "mutual only after u2 follows back")
}

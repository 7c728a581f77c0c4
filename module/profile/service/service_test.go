package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"SProject/module/profile/model"
	"SProject/tools/errs"
	jwtlib "SProject/tools/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProfileStore 复刻 external_id / handle 两个唯一约束。
type fakeProfileStore struct {
	byID map[string]*model.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{byID: map[string]*model.Profile{}}
}

func (f *fakeProfileStore) GetByExternalID(_ context.Context, externalID string) (*model.Profile, error) {
	for _, p := range f.byID {
		if p.ExternalID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileStore) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileStore) GetByHandle(_ context.Context, handle string) (*model.Profile, error) {
	for _, p := range f.byID {
		if p.Handle == handle {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileStore) Insert(_ context.Context, p *model.Profile) error {
	for _, q := range f.byID {
		if q.ExternalID == p.ExternalID || q.Handle == p.Handle {
			return errs.ErrDuplicateKey.Wrap()
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfileStore) UpdateDisplay(_ context.Context, id, handle, avatarURL string, bio *string, now time.Time) (*model.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	if handle != "" {
		p.Handle = handle
	}
	if avatarURL != "" {
		p.AvatarURL = avatarURL
	}
	if bio != nil {
		p.Bio = *bio
	}
	p.UpdateTime = now
	cp := *p
	return &cp, nil
}

func TestResolveWithoutProvisionFails(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newFakeProfileStore())

	_, err := r.Resolve(ctx, "idp|alice")
	assert.True(t, errors.Is(err, errs.ErrIdentityMissing))
}

func TestEnsureProfileProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newFakeProfileStore())
	id := &jwtlib.Identity{Subject: "idp|alice", Handle: "Alice"}

	first, err := r.EnsureProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Handle)

	// 二次登录同一主体命中同一行
	second, err := r.EnsureProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := r.Resolve(ctx, "idp|alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestEnsureProfileHandleCollisionGetsSuffix(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newFakeProfileStore())

	a, err := r.EnsureProfile(ctx, &jwtlib.Identity{Subject: "idp|a", Handle: "sam"})
	require.NoError(t, err)
	b, err := r.EnsureProfile(ctx, &jwtlib.Identity{Subject: "idp|b", Handle: "Sam"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "sam", a.Handle)
	assert.Equal(t, "sam-"+b.ID[len(b.ID)-6:], b.Handle)
}

func TestEnsureProfileEmptyHintDerivesHandle(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newFakeProfileStore())

	p, err := r.EnsureProfile(ctx, &jwtlib.Identity{Subject: "sub123"})
	require.NoError(t, err)
	assert.Equal(t, "user_sub123", p.Handle)
}

func TestGetByHandleNormalizesLookup(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newFakeProfileStore())

	p, err := r.EnsureProfile(ctx, &jwtlib.Identity{Subject: "idp|a", Handle: "Sam Smith"})
	require.NoError(t, err)
	assert.Equal(t, "sam_smith", p.Handle)

	got, err := r.GetByHandle(ctx, "  Sam_Smith ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = r.GetByHandle(ctx, "nobody")
	assert.True(t, errors.Is(err, errs.ErrRecordNotFound))
}

func strPtr(s string) *string { return &s }

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	store := newFakeProfileStore()
	r := NewResolver(store)

	p, err := r.EnsureProfile(ctx, &jwtlib.Identity{Subject: "idp|a", Handle: "sam", AvatarURL: "http://a/1.png"})
	require.NoError(t, err)

	got, err := r.UpdateProfile(ctx, p.ID, UpdateParams{Bio: strPtr("hello")})
	require.NoError(t, err)
	assert.Equal(t, "sam", got.Handle)
	assert.Equal(t, "http://a/1.png", got.AvatarURL)
	assert.Equal(t, "hello", got.Bio)

	_, err = r.UpdateProfile(ctx, "nope", UpdateParams{})
	assert.True(t, errors.Is(err, errs.ErrRecordNotFound))
}

func TestUpdateProfileHandleOnlyKeepsBio(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newFakeProfileStore())

	p, err := r.EnsureProfile(ctx, &jwtlib.Identity{Subject: "idp|a", Handle: "sam"})
	require.NoError(t, err)
	_, err = r.UpdateProfile(ctx, p.ID, UpdateParams{Bio: strPtr("my bio")})
	require.NoError(t, err)

	// 只改 handle,bio 必须原样留着
	got, err := r.UpdateProfile(ctx, p.ID, UpdateParams{Handle: "sam2"})
	require.NoError(t, err)
	assert.Equal(t, "sam2", got.Handle)
	assert.Equal(t, "my bio", got.Bio)

	// 显式传空串才是清空
	got, err = r.UpdateProfile(ctx, p.ID, UpdateParams{Bio: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", got.Bio)
	assert.Equal(t, "sam2", got.Handle)
}

package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-catalog/internal/platform/docstore"
	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

// ============================================================================
// TEST DOUBLES
// ============================================================================

type stubHasher struct {
	calls int
	err   error
}

func (h *stubHasher) Hash(plain string) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plain, nil
}

type failingRepo struct {
	Repository
	err error
}

func (r failingRepo) Create(context.Context, User) (User, error) { return User{}, r.err }

func newTestService(t *testing.T) (*Service, *stubHasher, *DocumentRepository) {
	t.Helper()
	repo := NewRepository(docstore.NewMemoryCollection[User]())
	hasher := &stubHasher{}
	return NewService(repo, hasher), hasher, repo
}

func strPtr(s string) *string { return &s }

// ============================================================================
// CREATE
// ============================================================================

func TestCreateHashesPassword(t *testing.T) {
	svc, hasher, repo := newTestService(t)

	user, err := svc.Create(context.Background(), CreateInput{
		Name:     "Elon",
		Email:    "  Elon@Gmail.com ",
		Password: "12345",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "elon@gmail.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, 1, hasher.calls)

	stored, err := repo.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:12345", stored.Password)
	assert.NotEqual(t, "12345", stored.Password)
}

func TestCreateWithoutPasswordSkipsHashing(t *testing.T) {
	svc, hasher, _ := newTestService(t)

	user, err := svc.Create(context.Background(), CreateInput{Email: "a@b.io", Role: RoleAdmin})
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.Zero(t, hasher.calls)
}

func TestCreateHashFailureAbortsWrite(t *testing.T) {
	svc, hasher, repo := newTestService(t)
	hasher.err = errors.New("hash failed")

	_, err := svc.Create(context.Background(), CreateInput{Email: "a@b.io", Password: "pw"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pw")

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []CreateInput{
		{Email: ""},
		{Email: "not-an-email"},
		{Email: "a@b.io", Role: "root"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		assert.True(t, errors.Is(err, shared.ErrValidation), "%+v", in)
	}
}

func TestCreatePropagatesRepositoryError(t *testing.T) {
	boom := errors.New("store down")
	svc := NewService(failingRepo{err: boom}, &stubHasher{})

	_, err := svc.Create(context.Background(), CreateInput{Email: "a@b.io"})
	assert.ErrorIs(t, err, boom)
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdateWithoutPasswordKeepsHash(t *testing.T) {
	svc, hasher, repo := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{Email: "a@b.io", Password: "secret"})
	require.NoError(t, err)
	hasher.calls = 0

	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Zero(t, hasher.calls)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Password, stored.Password)
}

func TestUpdateWithStoredHashIsIdempotent(t *testing.T) {
	svc, hasher, repo := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{Email: "a@b.io", Password: "secret"})
	require.NoError(t, err)
	hasher.calls = 0

	_, err = svc.Update(ctx, created.ID, UpdateInput{Password: strPtr(created.Password)})
	require.NoError(t, err)
	assert.Zero(t, hasher.calls)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Password, stored.Password)
}

func TestUpdateEmptyPasswordKeepsHash(t *testing.T) {
	svc, hasher, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{Email: "a@b.io", Password: "secret"})
	require.NoError(t, err)
	hasher.calls = 0

	updated, err := svc.Update(ctx, created.ID, UpdateInput{Password: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, created.Password, updated.Password)
	assert.Zero(t, hasher.calls)
}

func TestUpdateNewPasswordRehashes(t *testing.T) {
	svc, hasher, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{Email: "a@b.io", Password: "secret"})
	require.NoError(t, err)
	hasher.calls = 0

	updated, err := svc.Update(ctx, created.ID, UpdateInput{Password: strPtr("rotated")})
	require.NoError(t, err)
	assert.Equal(t, 1, hasher.calls)
	assert.Equal(t, "hashed:rotated", updated.Password)
}

func TestUpdateMissingUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "missing", UpdateInput{Name: strPtr("x")})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestUpdateRejectsInvalidRoleAndEmptyEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{Email: "a@b.io"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateInput{Role: strPtr("root")})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = svc.Update(ctx, created.ID, UpdateInput{Email: strPtr("  ")})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	svc, hasher, _ := newTestService(t)
	ctx := context.Background()

	wide := strings.Repeat("é", 40)
	_, err := svc.Create(ctx, CreateInput{Email: "wide@b.io", Password: wide})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Contains(t, err.Error(), "password: maxbytes=72")
	assert.Zero(t, hasher.calls)

	created, err := svc.Create(ctx, CreateInput{Email: "ok@b.io", Password: strings.Repeat("é", 36)})
	require.NoError(t, err)
	assert.Equal(t, 1, hasher.calls)

	_, err = svc.Update(ctx, created.ID, UpdateInput{Password: &wide})
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, 1, hasher.calls)
}

// ============================================================================
// LOOKUP & DELETE
// ============================================================================

func TestFindByEmailNormalizes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{Email: "elon@gmail.com"})
	require.NoError(t, err)

	found, err := svc.FindByEmail(ctx, " ELON@gmail.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestDeleteMissingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestPublicViewOmitsPassword(t *testing.T) {
	u := User{ID: "1", Name: "n", Email: "e@x.io", Password: "hash", Role: RoleAdmin}
	assert.Equal(t, Public{ID: "1", Name: "n", Email: "e@x.io", Role: RoleAdmin}, u.PublicView())
	assert.Len(t, PublicViews([]User{u, u}), 2)
	assert.NotNil(t, PublicViews(nil))
}

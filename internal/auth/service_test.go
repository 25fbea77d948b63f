package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/repo/memory"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, scheme string) (*Service, *memory.UsersRepo) {
	t.Helper()

	hasher, err := security.NewHasher(scheme, bcrypt.MinCost)
	require.NoError(t, err)

	users := memory.NewUsersRepo()
	return NewService(users, hasher, newTestManager(t)), users
}

func aliceRequest() user.CreateUserRequest {
	return user.CreateUserRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
		Password:  "secret123",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "bcrypt")

	u, err := svc.Register(ctx, aliceRequest())
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))

	dupName := aliceRequest()
	dupName.Email = "other@example.com"
	_, err = svc.Register(ctx, dupName)
	var conflict *user.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)

	dupEmail := aliceRequest()
	dupEmail.Username = "alice2"
	_, err = svc.Register(ctx, dupEmail)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	badRole := aliceRequest()
	badRole.Username, badRole.Email, badRole.Role = "bob", "bob@example.com", "superuser"
	_, err = svc.Register(ctx, badRole)
	assert.Error(t, err)
}

type countingHasher struct {
	PasswordHasher
	hashes int
}

func (h *countingHasher) Hash(plain string) (string, error) {
	h.hashes++
	return h.PasswordHasher.Hash(plain)
}

func TestService_RegisterChecksRoleBeforeHashing(t *testing.T) {
	base, err := security.NewHasher("bcrypt", bcrypt.MinCost)
	require.NoError(t, err)

	hasher := &countingHasher{PasswordHasher: base}
	svc := NewService(memory.NewUsersRepo(), hasher, newTestManager(t))

	req := aliceRequest()
	req.Role = "superuser"
	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Zero(t, hasher.hashes)

	req.Role = ""
	_, err = svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, hasher.hashes)
}

func TestService_RegisterRejectsOverlongPassword(t *testing.T) {
	svc, users := newTestService(t, "bcrypt")

	req := aliceRequest()
	req.Password = strings.Repeat("é", 40)
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, security.ErrPasswordTooLong)

	_, err = users.GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, "bcrypt")

	_, err := svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = users.Create(ctx, user.User{Username: "ghost", Email: "ghost@example.com", PasswordHash: u.PasswordHash, Role: user.RoleUser})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ghost", "secret123")
	assert.ErrorIs(t, err, ErrUnauthenticated, "inactive users cannot log in")
}

func TestService_LoginIssuesBearerToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "bcrypt")

	registered, err := svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	tok, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	id, err := svc.Tokens().Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, Identity{Username: "alice", ID: registered.ID, Role: user.RoleUser}, id)

	claims, err := svc.Tokens().ParseAndValidate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	_, err = svc.Login(ctx, "alice", "nope")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_UpgradesLegacyHashOnLogin(t *testing.T) {
	ctx := context.Background()

	legacy, err := security.NewHasher("bcrypt", bcrypt.MinCost)
	require.NoError(t, err)
	hash, err := legacy.Hash("secret123")
	require.NoError(t, err)

	svc, users := newTestService(t, "argon2id")
	created, err := users.Create(ctx, user.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		IsActive:     true,
		Role:         user.RoleUser,
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)

	stored, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	_, err = svc.Authenticate(ctx, "alice", "secret123")
	assert.NoError(t, err)
}

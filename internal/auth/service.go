package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/todohub/internal/domain/user"
)

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) error
}

// Optional capabilities used to upgrade stored hashes after a good login.
type rehashChecker interface {
	NeedsRehash(hash string) bool
}

type passwordHashUpdater interface {
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens *Manager
}

func NewService(users UserStore, hasher PasswordHasher, tokens *Manager) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *Service) Tokens() *Manager {
	return s.tokens
}

// Register hashes the password and stores a new active user. Duplicate
// usernames or emails surface as *user.ConflictError; an over-long password
// as security.ErrPasswordTooLong.
func (s *Service) Register(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.New(req, "")
	if !u.Role.Known() {
		return user.User{}, fmt.Errorf("register: role %q is not allowed", req.Role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	return s.users.Create(ctx, u)
}

// Authenticate returns the stored user when the credentials match. Unknown
// usernames and wrong passwords both yield ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, err
	}

	if !u.IsActive {
		return user.User{}, ErrUnauthenticated
	}

	if err := s.hasher.Verify(password, u.PasswordHash); err != nil {
		return user.User{}, ErrUnauthenticated
	}

	s.maybeRehash(ctx, u, password)

	return u, nil
}

// Login authenticates and issues an access token with the configured ttl.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}

	raw, err := s.tokens.CreateAccessToken(u.Username, u.ID, u.Role, s.tokens.AccessTTL())
	if err != nil {
		return Token{}, fmt.Errorf("sign access token: %w", err)
	}

	return Token{AccessToken: raw, TokenType: "bearer"}, nil
}

// best effort: a failed upgrade must not fail the login
func (s *Service) maybeRehash(ctx context.Context, u user.User, password string) {
	checker, ok := s.hasher.(rehashChecker)
	if !ok || !checker.NeedsRehash(u.PasswordHash) {
		return
	}

	updater, ok := s.users.(passwordHashUpdater)
	if !ok {
		return
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		slog.Default().WarnContext(ctx, "password_rehash_failed", "user_id", u.ID, "err", err)
		return
	}

	if err := updater.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		slog.Default().WarnContext(ctx, "password_rehash_failed", "user_id", u.ID, "err", err)
	}
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the caller identity. Subject holds the username; UserID is
// a pointer so a token without an "id" claim can be told apart from id 0.
type Claims struct {
	UserID *int64 `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	method    *jwt.SigningMethodHMAC
	accessTTL time.Duration
	now       func() time.Time
}

func NewManager(secret, algorithm string, accessTTL time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}

	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}

	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive (got %s)", accessTTL)
	}

	return &Manager{
		secret:    []byte(secret),
		method:    method,
		accessTTL: accessTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func hmacMethod(algorithm string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
}

// WithClock returns a copy of the manager that reads the time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// CreateAccessToken signs an access token for the given identity. A
// non-positive ttl falls back to the configured access ttl.
func (m *Manager) CreateAccessToken(username string, userID int64, role user.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.accessTTL
	}

	now := m.now().UTC()
	id := userID

	claims := Claims{
		UserID: &id,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) ParseAndValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Verify resolves a bearer token into an Identity. Every failure wraps
// ErrUnauthenticated.
func (m *Manager) Verify(tokenStr string) (Identity, error) {
	claims, err := m.ParseAndValidate(tokenStr)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if claims.Subject == "" || claims.UserID == nil {
		return Identity{}, fmt.Errorf("%w: missing subject or id claim", ErrUnauthenticated)
	}

	return Identity{
		Username: claims.Subject,
		ID:       *claims.UserID,
		Role:     user.ParseRole(claims.Role),
	}, nil
}

package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Scheme string

const (
	SchemeBcrypt   Scheme = "bcrypt"
	SchemeArgon2id Scheme = "argon2id"
)

var (
	ErrPasswordMismatch     = errors.New("password does not match")
	ErrUnknownHashAlgorithm = errors.New("unknown password hash algorithm")
	ErrUnsupportedScheme    = errors.New("unsupported password scheme")
	ErrPasswordTooLong      = fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)
)

// MaxPasswordBytes is bcrypt's input limit. It applies to every scheme so a
// scheme switch never strands an existing password.
const MaxPasswordBytes = 72

const (
	argon2Time    uint32 = 1
	argon2Memory  uint32 = 64 * 1024
	argon2Threads uint8  = 4
	argon2KeyLen  uint32 = 32
	argon2SaltLen        = 16
)

// Hasher produces algorithm-tagged salted hashes with the default scheme and
// verifies hashes produced by any supported scheme.
type Hasher struct {
	scheme     Scheme
	bcryptCost int
}

func NewHasher(scheme string, bcryptCost int) (*Hasher, error) {
	s := Scheme(strings.ToLower(strings.TrimSpace(scheme)))
	if s == "" {
		s = SchemeBcrypt
	}

	if s != SchemeBcrypt && s != SchemeArgon2id {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Hasher{scheme: s, bcryptCost: bcryptCost}, nil
}

func (h *Hasher) Scheme() Scheme {
	return h.scheme
}

// Hash hashes a plain text password with the default scheme.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	switch h.scheme {
	case SchemeArgon2id:
		return hashArgon2id(plain)
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(hash), nil
	}
}

// Verify compares a plaintext password with a stored hash, picking the
// algorithm from the hash prefix.
func (h *Hasher) Verify(plain, hash string) error {
	switch schemeOf(hash) {
	case SchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	case SchemeArgon2id:
		return verifyArgon2id(plain, hash)
	default:
		return ErrUnknownHashAlgorithm
	}
}

// NeedsRehash reports whether a stored hash was produced by a scheme other
// than the current default, so it can be upgraded after a successful login.
func (h *Hasher) NeedsRehash(hash string) bool {
	s := schemeOf(hash)
	if s != h.scheme {
		return true
	}

	if s == SchemeBcrypt {
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost != h.bcryptCost
	}

	return false
}

func schemeOf(hash string) Scheme {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return SchemeBcrypt
	case strings.HasPrefix(hash, "$argon2id$"):
		return SchemeArgon2id
	default:
		return ""
	}
}

func hashArgon2id(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$HASH
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(plain, encoded string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return ErrUnknownHashAlgorithm
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ErrUnknownHashAlgorithm
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return ErrUnknownHashAlgorithm
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrUnknownHashAlgorithm
	}

	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrUnknownHashAlgorithm
	}

	got := argon2.IDKey([]byte(plain), salt, iterations, memory, threads, uint32(len(want)))

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

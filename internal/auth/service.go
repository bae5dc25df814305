package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	minPasswordLength = 5

	RegisterSuccess = "Register Success"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dummyDigest is compared against when the username is unknown so that a
// missing user costs as much as a wrong password.
const dummyDigest = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7LIOV2wB.OkbHeVw7bM2Kn6"

type Service struct {
	db     db.Querier
	hasher Hasher
	tokens *TokenIssuer
	now    func() time.Time
}

func NewService(db db.Querier, hasher Hasher, tokens *TokenIssuer) *Service {
	return &Service{
		db:     db,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register checks username uniqueness, then email uniqueness, then email
// format, then password length, and stores a hashed user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	taken, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, req.Username)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.ErrDuplicateUsername
	}

	taken, err = s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, req.Email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.ErrDuplicateEmail
	}

	if !emailPattern.MatchString(strings.ToLower(req.Email)) {
		return "", apperr.ErrInvalidEmailFormat
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return "", apperr.ErrPasswordTooShort
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	_, err = s.db.Exec(ctx, `
		INSERT INTO users (id, name, username, email, password, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, uuid.NewString(), req.Name, req.Username, req.Email, digest, now, now)
	if constraint, ok := db.UniqueViolation(err); ok {
		// lost a race with a concurrent registration past the checks above
		if constraint == "users_email_key" {
			return "", apperr.ErrDuplicateEmail
		}
		return "", apperr.ErrDuplicateUsername
	}
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return RegisterSuccess, nil
}

// Login never tells an unknown username apart from a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var (
		id     Identity
		digest string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, name, username, email, password
		FROM users WHERE username = $1
	`, req.Username).Scan(&id.UserID, &id.Name, &id.Username, &id.Email, &digest)
	if errors.Is(err, pgx.ErrNoRows) {
		s.hasher.Verify(req.Password, dummyDigest)
		return LoginResponse{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResponse{}, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Verify(req.Password, digest) {
		return LoginResponse{}, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(id)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResponse{AccessToken: token, UserID: id.UserID}, nil
}

func (s *Service) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := s.db.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check uniqueness: %w", err)
	}
	return found, nil
}

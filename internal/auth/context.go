package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Authenticator derives the caller identity for a request from its Authorization header.
type Authenticator struct {
	tokens *TokenIssuer
	db     db.Querier
}

func NewAuthenticator(tokens *TokenIssuer, db db.Querier) *Authenticator {
	return &Authenticator{tokens: tokens, db: db}
}

// Authenticate verifies the bearer credential and re-resolves the user it names,
// so a token outliving its user is rejected.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	if strings.TrimSpace(authorization) == "" {
		return Identity{}, apperr.ErrUnauthenticated
	}
	token, ok := bearerToken(authorization)
	if !ok {
		return Identity{}, apperr.ErrInvalidToken
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return Identity{}, apperr.ErrUnauthenticated
	}

	var id Identity
	err = a.db.QueryRow(ctx, `
		SELECT id, name, username, email
		FROM users WHERE id = $1
	`, claims.UserID).Scan(&id.UserID, &id.Name, &id.Username, &id.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Identity{}, apperr.ErrUnauthenticated
	}
	if err != nil {
		return Identity{}, fmt.Errorf("resolve caller: %w", err)
	}
	return id, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

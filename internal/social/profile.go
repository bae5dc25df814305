package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend-socialfeed/internal/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetUserByID joins a user with the users they follow, the users following
// them and the posts they authored.
func (s *Service) GetUserByID(ctx context.Context, userID string) (UserProfile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return UserProfile{}, apperr.ErrUserNotFound
	}

	var profile UserProfile
	err := s.db.QueryRow(ctx, `
		SELECT id::text, name, username, email
		FROM users WHERE id = $1
	`, userID).Scan(&profile.ID, &profile.Name, &profile.Username, &profile.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserProfile{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("load user %s: %w", userID, err)
	}

	profile.Followings, err = s.queryUsers(ctx, `
		SELECT u.id::text, u.name, u.username, u.email
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at
	`, userID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("load followings of %s: %w", userID, err)
	}

	profile.Followers, err = s.queryUsers(ctx, `
		SELECT u.id::text, u.name, u.username, u.email
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at
	`, userID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("load followers of %s: %w", userID, err)
	}

	profile.Posts, err = s.queryPosts(ctx, false, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.seq
	`, userID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("load posts of %s: %w", userID, err)
	}
	return profile, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchUsers matches keyword as a case-insensitive substring of name or username.
func (s *Service) SearchUsers(ctx context.Context, keyword string) ([]User, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	users, err := s.queryUsers(ctx, `
		SELECT id::text, name, username, email
		FROM users
		WHERE name ILIKE $1 OR username ILIKE $1
		ORDER BY created_at
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

package social

import (
	"context"
	"fmt"

	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/auth"
	"backend-socialfeed/internal/db"

	"github.com/google/uuid"
)

const followerForeignKey = "follows_follower_id_fkey"

// FollowUser toggles the caller's edge to followingID: an existing edge is
// deleted, a missing one is created. The unique (follower_id, following_id)
// constraint keeps at most one edge per pair under concurrent calls.
func (s *Service) FollowUser(ctx context.Context, caller auth.Identity, followingID string) (string, error) {
	if _, err := uuid.Parse(followingID); err != nil {
		return "", apperr.ErrUserNotFound
	}
	if followingID == caller.UserID {
		return "", apperr.New(apperr.Validation, "You cannot follow yourself")
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM follows
		WHERE follower_id = $1 AND following_id = $2
	`, caller.UserID, followingID)
	if err != nil {
		s.metrics.Mutation("followUser", "error")
		return "", fmt.Errorf("delete follow: %w", err)
	}
	if tag.RowsAffected() > 0 {
		s.metrics.Mutation("followUser", "unfollowed")
		return UnfollowSuccess, nil
	}

	now := s.timestamp()
	_, err = s.db.Exec(ctx, `
		INSERT INTO follows (id, follower_id, following_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`, uuid.NewString(), caller.UserID, followingID, now, now)
	if constraint, ok := db.ForeignKeyViolation(err); ok {
		s.metrics.Mutation("followUser", "rejected")
		// the caller's own row vanished after the token was verified
		if constraint == followerForeignKey {
			return "", apperr.ErrUnauthenticated
		}
		return "", apperr.ErrUserNotFound
	}
	if err != nil {
		s.metrics.Mutation("followUser", "error")
		return "", fmt.Errorf("insert follow: %w", err)
	}
	s.metrics.Mutation("followUser", "followed")
	return FollowSuccess, nil
}

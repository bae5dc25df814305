package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/cache"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Ties on created_at keep insertion order through the seq column.
const feedQuery = `
	SELECT ` + postWithAuthorColumns + `
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id
	ORDER BY p.created_at DESC, p.seq ASC
`

const postByIDQuery = `
	SELECT ` + postWithAuthorColumns + `
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id
	WHERE p.id = $1
`

// ListFeed serves the global feed, newest first. A cached snapshot is returned
// verbatim; otherwise the feed is recomputed and written back to the cache.
func (s *Service) ListFeed(ctx context.Context) ([]Post, error) {
	if raw, ok := s.cache.Get(ctx, cache.FeedKey); ok {
		var posts []Post
		err := json.Unmarshal(raw, &posts)
		if err == nil {
			return posts, nil
		}
		s.log.Warn("discarding undecodable feed snapshot", zap.Error(err))
	}

	posts, err := s.queryPosts(ctx, true, feedQuery)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	raw, err := json.Marshal(posts)
	if err != nil {
		s.log.Warn("feed snapshot not cached", zap.Error(err))
		return posts, nil
	}
	s.cache.Set(ctx, cache.FeedKey, raw)
	return posts, nil
}

// GetPostByID always reads through to the store.
func (s *Service) GetPostByID(ctx context.Context, postID string) (Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return Post{}, apperr.ErrPostNotFound
	}

	post, err := scanPost(s.db.QueryRow(ctx, postByIDQuery, postID), true)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, apperr.ErrPostNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("load post %s: %w", postID, err)
	}
	return post, nil
}

package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/auth"
	"backend-socialfeed/internal/db"
	"backend-socialfeed/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreatePost stores a post authored by the caller and drops the feed snapshot.
func (s *Service) CreatePost(ctx context.Context, caller auth.Identity, req AddPostRequest) (Post, error) {
	if strings.TrimSpace(req.Content) == "" {
		return Post{}, apperr.New(apperr.Validation, "content is required")
	}

	now := s.timestamp()
	post := Post{
		ID:        uuid.NewString(),
		AuthorID:  caller.UserID,
		Content:   req.Content,
		ImgURL:    req.ImgURL,
		Tags:      req.Tags,
		Comments:  []Comment{},
		Likes:     []Like{},
		CreatedAt: now,
		UpdatedAt: now,
		Author: &User{
			ID:       caller.UserID,
			Name:     caller.Name,
			Username: caller.Username,
			Email:    caller.Email,
		},
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO posts (id, author_id, content, img_url, tags, comments, likes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'[]'::jsonb,'[]'::jsonb,$6,$7)
	`, post.ID, post.AuthorID, post.Content, post.ImgURL, post.Tags, post.CreatedAt, post.UpdatedAt)
	if _, ok := db.ForeignKeyViolation(err); ok {
		s.metrics.Mutation("addPost", "rejected")
		return Post{}, apperr.ErrUnauthenticated
	}
	if err != nil {
		s.metrics.Mutation("addPost", "error")
		return Post{}, fmt.Errorf("insert post: %w", err)
	}

	if err := s.invalidateFeed(ctx); err != nil {
		s.metrics.Mutation("addPost", "error")
		return Post{}, err
	}
	s.metrics.Mutation("addPost", "created")
	s.publish(ctx, stream.Event{Type: stream.PostCreated, PostID: post.ID, Username: caller.Username})
	return post, nil
}

// CommentPost appends a comment by the caller. A missing post is NotFound.
func (s *Service) CommentPost(ctx context.Context, caller auth.Identity, postID, content string) (string, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return "", apperr.ErrPostNotFound
	}
	if strings.TrimSpace(content) == "" {
		return "", apperr.New(apperr.Validation, "content is required")
	}

	now := s.timestamp()
	entry, err := json.Marshal([]Comment{{Content: content, Username: caller.Username, CreatedAt: now, UpdatedAt: now}})
	if err != nil {
		return "", err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE posts
		SET comments = comments || $2::jsonb
		WHERE id = $1
	`, postID, string(entry))
	if err != nil {
		s.metrics.Mutation("commentPost", "error")
		return "", fmt.Errorf("append comment to %s: %w", postID, err)
	}
	if tag.RowsAffected() == 0 {
		return "", apperr.ErrPostNotFound
	}

	if err := s.invalidateFeed(ctx); err != nil {
		s.metrics.Mutation("commentPost", "error")
		return "", err
	}
	s.metrics.Mutation("commentPost", "commented")
	s.publish(ctx, stream.Event{Type: stream.PostCommented, PostID: postID, Username: caller.Username})
	return CommentSuccess, nil
}

// LikePost toggles the caller's like in one statement: the entry is removed
// when present and appended when absent, so two concurrent likes from the same
// user cannot both append. RETURNING reports whether the post is now liked.
func (s *Service) LikePost(ctx context.Context, caller auth.Identity, postID string) (string, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return "", apperr.ErrPostNotFound
	}

	now := s.timestamp()
	entry, err := json.Marshal([]Like{{Username: caller.Username, CreatedAt: now, UpdatedAt: now}})
	if err != nil {
		return "", err
	}

	var liked bool
	err = s.db.QueryRow(ctx, `
		UPDATE posts
		SET likes = CASE
			WHEN likes @> jsonb_build_array(jsonb_build_object('username', $2::text)) THEN COALESCE(
				(SELECT jsonb_agg(l.value ORDER BY l.ord)
				 FROM jsonb_array_elements(likes) WITH ORDINALITY AS l(value, ord)
				 WHERE l.value->>'username' <> $2::text),
				'[]'::jsonb)
			ELSE likes || $3::jsonb
		END
		WHERE id = $1
		RETURNING likes @> jsonb_build_array(jsonb_build_object('username', $2::text))
	`, postID, caller.Username, string(entry)).Scan(&liked)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.ErrPostNotFound
	}
	if err != nil {
		s.metrics.Mutation("likePost", "error")
		return "", fmt.Errorf("toggle like on %s: %w", postID, err)
	}

	if err := s.invalidateFeed(ctx); err != nil {
		s.metrics.Mutation("likePost", "error")
		return "", err
	}
	if liked {
		s.metrics.Mutation("likePost", "liked")
		s.publish(ctx, stream.Event{Type: stream.PostLiked, PostID: postID, Username: caller.Username})
		return LikeSuccess, nil
	}
	s.metrics.Mutation("likePost", "unliked")
	s.publish(ctx, stream.Event{Type: stream.PostUnliked, PostID: postID, Username: caller.Username})
	return UnlikeSuccess, nil
}

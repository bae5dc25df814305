package social

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend-socialfeed/internal/cache"
	"backend-socialfeed/internal/db"
	"backend-socialfeed/internal/logger"
	"backend-socialfeed/internal/metrics"
	"backend-socialfeed/internal/stream"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

// Publisher receives feed change notifications after a write has been applied.
type Publisher interface {
	Publish(ctx context.Context, event stream.Event)
}

type Service struct {
	db      db.Querier
	cache   cache.Store
	events  Publisher
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(db db.Querier, store cache.Store, opts ...Option) *Service {
	s := &Service{
		db:    db,
		cache: store,
		log:   logger.NewNoopLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp matches postgres microsecond precision so returned values equal stored ones.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) publish(ctx context.Context, event stream.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}

// invalidateFeed must complete before a post mutation reports success.
func (s *Service) invalidateFeed(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, cache.FeedKey); err != nil {
		return fmt.Errorf("invalidate feed cache: %w", err)
	}
	return nil
}

const postColumns = `p.id::text, p.author_id::text, p.content, p.img_url, p.tags, p.comments, p.likes, p.created_at, p.updated_at`

const postWithAuthorColumns = postColumns + `, u.id::text, u.name, u.username, u.email`

func scanPost(row pgx.Row, withAuthor bool) (Post, error) {
	var (
		p               Post
		imgURL          pgtype.Text
		comments, likes []byte
		authorID, name  pgtype.Text
		username, email pgtype.Text
	)
	dest := []any{&p.ID, &p.AuthorID, &p.Content, &imgURL, &p.Tags, &comments, &likes, &p.CreatedAt, &p.UpdatedAt}
	if withAuthor {
		dest = append(dest, &authorID, &name, &username, &email)
	}
	if err := row.Scan(dest...); err != nil {
		return Post{}, err
	}

	if imgURL.Valid {
		p.ImgURL = lo.ToPtr(imgURL.String)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Comments = []Comment{}
	if err := decodeList(comments, &p.Comments); err != nil {
		return Post{}, fmt.Errorf("decode comments of post %s: %w", p.ID, err)
	}
	p.Likes = []Like{}
	if err := decodeList(likes, &p.Likes); err != nil {
		return Post{}, fmt.Errorf("decode likes of post %s: %w", p.ID, err)
	}
	if withAuthor && authorID.Valid {
		p.Author = &User{ID: authorID.String, Name: name.String, Username: username.String, Email: email.String}
	}
	return p, nil
}

func decodeList[T any](raw []byte, into *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return err
	}
	if *into == nil {
		*into = []T{}
	}
	return nil
}

func (s *Service) queryPosts(ctx context.Context, withAuthor bool, sql string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows, withAuthor)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Service) queryUsers(ctx context.Context, sql string, args ...any) ([]User, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

package social

import (
	"context"
	"sync"
	"testing"
	"time"

	"backend-socialfeed/internal/auth"
	"backend-socialfeed/internal/cache"
	"backend-socialfeed/internal/logger"
	"backend-socialfeed/internal/stream"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

const (
	bobID   = "0b7c1d2e-7a43-4c55-9b0e-1f2a3b4c5d6e"
	aliceID = "6f1e2d3c-4b5a-4c69-8d7e-9f0a1b2c3d4e"
	postID  = "3a9c8b7d-6e5f-4a3b-9c2d-1e0f9a8b7c6d"
)

var (
	bob     = auth.Identity{UserID: bobID, Name: "Bob", Username: "bob", Email: "bob@x.com"}
	fixedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

var postFeedColumns = []string{
	"id", "author_id", "content", "img_url", "tags", "comments", "likes", "created_at", "updated_at",
	"author_id", "name", "username", "email",
}

var postOnlyColumns = []string{
	"id", "author_id", "content", "img_url", "tags", "comments", "likes", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func newRedisCache(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client, logger.NewNoopLogger(), nil), s
}

func newTestService(mock pgxmock.PgxPoolIface, store cache.Store, opts ...Option) *Service {
	svc := NewService(mock, store, opts...)
	svc.now = func() time.Time { return fixedAt }
	return svc
}

type fakeStore struct {
	data          map[string][]byte
	invalidateErr error
	invalidated   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) {
	f.data[key] = value
}

func (f *fakeStore) Invalidate(_ context.Context, key string) error {
	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	f.invalidated++
	delete(f.data, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []stream.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event stream.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) Events() []stream.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stream.Event(nil), r.events...)
}

func feedRows() *pgxmock.Rows {
	return pgxmock.NewRows(postFeedColumns)
}

func addFeedRow(rows *pgxmock.Rows, id, content string, at time.Time) *pgxmock.Rows {
	return rows.AddRow(id, bobID, content, nil, []string{}, []byte(`[]`), []byte(`[]`), at, at,
		bobID, "Bob", "bob", "bob@x.com")
}

package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"backend-socialfeed/internal/db"

	"github.com/google/uuid"
)

const (
	defaultFileName = "upload"
	slotTTL         = 15 * time.Minute
)

// Slot is a reserved upload location. URL is what clients later send as a post's imgUrl.
type Slot struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	db      db.Querier
	baseURL string
	now     func() time.Time
}

func NewService(db db.Querier, baseURL string) *Service {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Service{db: db, baseURL: baseURL, now: time.Now}
}

// Reserve records an upload slot owned by userID.
func (s *Service) Reserve(ctx context.Context, userID, fileName string) (Slot, error) {
	id := uuid.NewString()
	slot := Slot{
		ID:        id,
		URL:       s.baseURL + id + "/" + url.PathEscape(cleanName(fileName)),
		ExpiresAt: s.now().UTC().Add(slotTTL),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO media_uploads (id, user_id, url)
		VALUES ($1,$2,$3)
	`, slot.ID, userID, slot.URL)
	if err != nil {
		return Slot{}, fmt.Errorf("reserve upload: %w", err)
	}
	return slot, nil
}

func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return defaultFileName
	}
	return name
}

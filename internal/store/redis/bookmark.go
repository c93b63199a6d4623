package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// Store keeps the bookmarks collection in Redis: one JSON document per
// bookmark plus a sorted set per category used as the query index.
type Store struct {
	client *redis.Client
	keys   Keys
	now    func() time.Time
	newID  func() string
}

// NewStore creates a Redis-backed bookmark store for the given collection.
func NewStore(client *redis.Client, collection string) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(collection),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Insert assigns ID and DateAdded (UTC) then appends the bookmark.
// Document and index entry are written in a single MULTI/EXEC.
func (s *Store) Insert(ctx context.Context, b *domain.Bookmark) error {
	b.ID = s.newID()
	// Same resolution as the sorted-set score.
	b.DateAdded = s.now().UTC().Truncate(time.Microsecond)

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.Doc(b.ID), data, 0)
		pipe.ZAdd(ctx, s.keys.Category(b.Category), redis.Z{
			Score:  score(b.DateAdded),
			Member: b.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	return nil
}

// QueryByCategory returns the bookmarks of one category ordered by
// DateAdded ascending. Ids whose document has vanished are skipped; a
// document that does not decode fails the whole query.
func (s *Store) QueryByCategory(ctx context.Context, c domain.Category) ([]*domain.Bookmark, error) {
	ids, err := s.client.ZRange(ctx, s.keys.Category(c), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read category index %s: %w", c, err)
	}

	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	docKeys := make([]string, len(ids))
	for i, id := range ids {
		docKeys[i] = s.keys.Doc(id)
	}

	values, err := s.client.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// nil: index points at a missing document
			continue
		}
		var b domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("failed to decode bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}

	return bookmarks, nil
}

// CountByCategory returns the size of every category index.
func (s *Store) CountByCategory(ctx context.Context) (map[domain.Category]int64, error) {
	cats := domain.Categories()

	pipe := s.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(cats))
	for i, c := range cats {
		cmds[i] = pipe.ZCard(ctx, s.keys.Category(c))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	counts := make(map[domain.Category]int64, len(cats))
	for i, c := range cats {
		counts[c] = cmds[i].Val()
	}
	return counts, nil
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// score maps a timestamp onto a sorted-set score. Microseconds stay well
// inside float64's exact integer range.
func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

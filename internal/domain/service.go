package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

// Repository is the persistence boundary for the bookmarks collection.
// Implementations assign ID and DateAdded on Insert.
type Repository interface {
	Insert(ctx context.Context, b *Bookmark) error
	QueryByCategory(ctx context.Context, c Category) ([]*Bookmark, error)
	CountByCategory(ctx context.Context) (map[Category]int64, error)
	Ping(ctx context.Context) error
}

// Recorder receives service-level counters. Nil-safe via noopRecorder.
type Recorder interface {
	Inserted(c Category)
	InsertRejected(reason string)
	InsertFailed()
	Queried(c Category, ok bool, took time.Duration, results int)
}

type noopRecorder struct{}

func (noopRecorder) Inserted(Category)                          {}
func (noopRecorder) InsertRejected(string)                      {}
func (noopRecorder) InsertFailed()                              {}
func (noopRecorder) Queried(Category, bool, time.Duration, int) {}

// ServiceOptions tunes how submissions become records.
type ServiceOptions struct {
	TrimKeywords bool // trim whitespace around each comma-split keyword
}

// Service is the only entry point the HTTP layer uses to read and write
// bookmarks.
type Service struct {
	repo Repository
	log  logger.Logger
	rec  Recorder
	opts ServiceOptions
}

func NewService(repo Repository, log logger.Logger, rec Recorder, opts ServiceOptions) *Service {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Service{repo: repo, log: log, rec: rec, opts: opts}
}

// Add validates sub and persists it. Validation errors are returned as is so
// callers can match them with errors.Is; nothing is written in that case.
func (s *Service) Add(ctx context.Context, sub Submission) (*Bookmark, error) {
	if err := sub.Validate(); err != nil {
		s.rec.InsertRejected(rejectReason(err))
		s.log.Debug("bookmark submission rejected", logger.Error(err))
		return nil, err
	}

	b := &Bookmark{
		Link:        sub.Link,
		Description: sub.Description,
		Keywords:    SplitKeywords(sub.Keywords, s.opts.TrimKeywords),
		Category:    Category(sub.Category),
	}

	if err := s.repo.Insert(ctx, b); err != nil {
		s.rec.InsertFailed()
		s.log.Error("failed to insert bookmark",
			logger.String("category", b.Category.String()),
			logger.Error(err))
		return nil, fmt.Errorf("failed to insert bookmark: %w", err)
	}

	s.rec.Inserted(b.Category)
	s.log.Info("bookmark added",
		logger.String("id", b.ID),
		logger.String("category", b.Category.String()))
	return b, nil
}

// ByCategory lists the records of c, oldest first. On failure it returns an
// empty slice and an error wrapping both ErrQueryFailed and the store cause.
func (s *Service) ByCategory(ctx context.Context, c Category) ([]*Bookmark, error) {
	start := time.Now()
	list, err := s.repo.QueryByCategory(ctx, c)
	took := time.Since(start)

	if err != nil {
		s.rec.Queried(c, false, took, 0)
		s.log.Error("failed to fetch bookmarks",
			logger.String("category", c.String()),
			logger.Error(err))
		return []*Bookmark{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if list == nil {
		list = []*Bookmark{}
	}

	s.rec.Queried(c, true, took, len(list))
	s.log.Debug("bookmarks fetched",
		logger.String("category", c.String()),
		logger.Int("count", len(list)),
		logger.Duration("took", took))
	return list, nil
}

// Counts returns the number of records per category.
func (s *Service) Counts(ctx context.Context) (map[Category]int64, error) {
	return s.repo.CountByCategory(ctx)
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	default:
		return "invalid"
	}
}

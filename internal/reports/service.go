package reports

import (
	"context"
	"log/slog"
	"time"
)

// Service wraps report persistence and monthly summaries.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. The clock is injectable for tests.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Save appends one immutable report for the user, stamped with the
// server-local time, and invalidates their cached history.
func (s *Service) Save(ctx context.Context, username string, totals Totals) (int64, error) {
	report := Report{
		Username:    username,
		Date:        s.now().Format(DateLayout),
		TotalAmount: totals.TotalAmount,
		TotalGST:    totals.TotalGST,
		GrandTotal:  totals.GrandTotal,
	}
	id, err := s.repo.Insert(ctx, report)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Bump(ctx, username); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
	return id, nil
}

// History returns the user's reports newest first, via the cache.
func (s *Service) History(ctx context.Context, username string) ([]Report, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.repo.ListByUser(ctx, username)
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]Report), nil
	}
	key, err := s.cache.BuildKey(ctx, username, "history")
	if err != nil {
		return nil, err
	}
	var reports []Report
	if err := s.cache.FetchJSON(ctx, key, &reports, loader); err != nil {
		return nil, err
	}
	return reports, nil
}

// Monthly returns calendar-month buckets over the user's full history,
// oldest month first.
func (s *Service) Monthly(ctx context.Context, username string) ([]MonthlyBucket, error) {
	reports, err := s.History(ctx, username)
	if err != nil {
		return nil, err
	}
	return Rollup(reports), nil
}

// Clear deletes every report owned by the user and reports the count.
func (s *Service) Clear(ctx context.Context, username string) (int64, error) {
	deleted, err := s.repo.DeleteByUser(ctx, username)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Bump(ctx, username); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
	return deleted, nil
}

package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	nextID  int64
	rows    map[string][]Report
	listHit int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string][]Report)}
}

func (m *memRepo) Insert(ctx context.Context, report Report) (int64, error) {
	m.nextID++
	report.ID = m.nextID
	m.rows[report.Username] = append(m.rows[report.Username], report)
	return report.ID, nil
}

func (m *memRepo) ListByUser(ctx context.Context, username string) ([]Report, error) {
	m.listHit++
	saved := m.rows[username]
	out := make([]Report, 0, len(saved))
	for i := len(saved) - 1; i >= 0; i-- {
		out = append(out, saved[i])
	}
	return out, nil
}

func (m *memRepo) DeleteByUser(ctx context.Context, username string) (int64, error) {
	n := int64(len(m.rows[username]))
	delete(m.rows, username)
	return n, nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, NewCache(client, time.Minute), logger)
	return svc, repo
}

func TestSaveStampsServerTime(t *testing.T) {
	svc, repo := newTestService(t)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	}

	id, err := svc.Save(context.Background(), "ramesh", Totals{TotalAmount: 100, TotalGST: 18, GrandTotal: 118})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	saved := repo.rows["ramesh"]
	require.Len(t, saved, 1)
	assert.Equal(t, "2024-03-05 14:30", saved[0].Date)
	assert.InDelta(t, 118, saved[0].GrandTotal, 1e-9)
}

func TestHistoryNewestFirstAndCached(t *testing.T) {
	svc, repo := newTestService(t)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		stamp := base.AddDate(0, 0, i)
		svc.now = func() time.Time { return stamp }
		_, err := svc.Save(context.Background(), "ramesh", Totals{TotalAmount: float64(i + 1)})
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), "ramesh")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.InDelta(t, 3, history[0].TotalAmount, 1e-9, "latest save must come first")
	assert.InDelta(t, 1, history[2].TotalAmount, 1e-9)

	hits := repo.listHit
	_, err = svc.History(context.Background(), "ramesh")
	require.NoError(t, err)
	assert.Equal(t, hits, repo.listHit, "second read must come from cache")

	// A save invalidates the snapshot.
	svc.now = time.Now
	_, err = svc.Save(context.Background(), "ramesh", Totals{TotalAmount: 4})
	require.NoError(t, err)
	history, err = svc.History(context.Background(), "ramesh")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestMonthlyUsesHistory(t *testing.T) {
	svc, _ := newTestService(t)

	svc.now = func() time.Time { return time.Date(2024, 2, 10, 10, 0, 0, 0, time.Local) }
	_, err := svc.Save(context.Background(), "ramesh", Totals{TotalAmount: 100, TotalGST: 18, GrandTotal: 118})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, 2, 20, 10, 0, 0, 0, time.Local) }
	_, err = svc.Save(context.Background(), "ramesh", Totals{TotalAmount: 50, TotalGST: 9, GrandTotal: 59})
	require.NoError(t, err)

	buckets, err := svc.Monthly(context.Background(), "ramesh")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2024-02", buckets[0].Month)
	assert.InDelta(t, 150, buckets[0].TotalAmount, 1e-9)
}

func TestClearReportsCount(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 2; i++ {
		_, err := svc.Save(context.Background(), "ramesh", Totals{TotalAmount: 1})
		require.NoError(t, err)
	}
	_, err := svc.Save(context.Background(), "suresh", Totals{TotalAmount: 1})
	require.NoError(t, err)

	deleted, err := svc.Clear(context.Background(), "ramesh")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	history, err := svc.History(context.Background(), "ramesh")
	require.NoError(t, err)
	assert.Empty(t, history)

	other, err := svc.History(context.Background(), "suresh")
	require.NoError(t, err)
	assert.Len(t, other, 1, "other users keep their reports")
}

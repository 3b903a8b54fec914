package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, time.Minute)
}

func TestCacheWorksetRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "ramesh")
	assert.True(t, errors.Is(err, ErrNoWorkset))

	ws := &Workset{
		Columns: []string{"Amount", "GST", "Total"},
		Rows:    [][]string{{"100", "18.00", "118.00"}},
		Totals:  Totals{TotalAmount: 100, TotalGST: 18, GrandTotal: 118},
		Rate:    18,
	}
	require.NoError(t, cache.Put(ctx, "ramesh", ws))

	got, err := cache.Get(ctx, "ramesh")
	require.NoError(t, err)
	assert.Equal(t, ws.Totals, got.Totals)
	assert.Equal(t, ws.Rows, got.Rows)

	// Worksets are per user.
	_, err = cache.Get(ctx, "suresh")
	assert.True(t, errors.Is(err, ErrNoWorkset))

	require.NoError(t, cache.Drop(ctx, "ramesh"))
	_, err = cache.Get(ctx, "ramesh")
	assert.True(t, errors.Is(err, ErrNoWorkset))
}

func TestCachePendingTable(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, err := cache.GetTable(ctx, "ramesh")
	assert.True(t, errors.Is(err, ErrNoWorkset))

	table := Table{Columns: []string{"Amount"}, Rows: [][]string{{"100"}}}
	require.NoError(t, cache.PutTable(ctx, "ramesh", table))

	got, err := cache.GetTable(ctx, "ramesh")
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)

	require.NoError(t, cache.DropTable(ctx, "ramesh"))
	_, err = cache.GetTable(ctx, "ramesh")
	assert.True(t, errors.Is(err, ErrNoWorkset))
}

package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// fakePriceRepo is an in-memory PriceRepository capturing inserts.
type fakePriceRepo struct {
	points map[int64]*domain.HourlyPricePoint
	order  []int64
}

func newFakePriceRepo(timestamps ...int64) *fakePriceRepo {
	repo := &fakePriceRepo{points: make(map[int64]*domain.HourlyPricePoint)}
	for _, ts := range timestamps {
		repo.points[ts] = &domain.HourlyPricePoint{UnixTimestamp: ts}
	}
	return repo
}

func (r *fakePriceRepo) GetByTimestamp(ctx context.Context, ts int64) (*domain.HourlyPricePoint, error) {
	point, ok := r.points[ts]
	if !ok {
		return nil, domain.ErrPriceNotFound
	}
	return point, nil
}

func (r *fakePriceRepo) Latest(ctx context.Context) (*domain.HourlyPricePoint, error) {
	var latest *domain.HourlyPricePoint
	for _, point := range r.points {
		if latest == nil || point.UnixTimestamp > latest.UnixTimestamp {
			latest = point
		}
	}
	if latest == nil {
		return nil, domain.ErrNoPriceData
	}
	return latest, nil
}

func (r *fakePriceRepo) TimestampBounds(ctx context.Context) (int64, int64, error) {
	if len(r.points) == 0 {
		return 0, 0, domain.ErrNoPriceData
	}
	var min, max int64
	first := true
	for ts := range r.points {
		if first || ts < min {
			min = ts
		}
		if first || ts > max {
			max = ts
		}
		first = false
	}
	return min, max, nil
}

func (r *fakePriceRepo) Insert(ctx context.Context, point *domain.HourlyPricePoint) (bool, error) {
	if _, exists := r.points[point.UnixTimestamp]; exists {
		return false, nil
	}
	r.points[point.UnixTimestamp] = point
	r.order = append(r.order, point.UnixTimestamp)
	return true, nil
}

func (r *fakePriceRepo) List(ctx context.Context, limit, offset int) ([]*domain.HourlyPricePoint, error) {
	return nil, nil
}

// fakeFeed serves candles for every hour up to and including `head`.
type fakeFeed struct {
	head     int64
	earliest int64
	calls    int
	err      error
}

func (f *fakeFeed) FetchCandles(ctx context.Context, fromSymbol, toSymbol string, to int64, limit int) ([]*domain.HourlyPricePoint, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.HourlyPricePoint
	ts := to - int64(limit-1)*3600
	for ; ts <= to; ts += 3600 {
		if ts < f.earliest || ts > f.head {
			continue
		}
		out = append(out, &domain.HourlyPricePoint{
			UnixTimestamp: ts,
			Close:         decimal.NewFromInt(100),
		})
	}
	return out, nil
}

func TestRun_NoMissingHours(t *testing.T) {
	// now is 12:10, so the last closed hour is 11:00 which is stored:
	// missing = (12:00 - 11:00)/3600 - 1 = 0.
	base := int64(1742742000)
	repo := newFakePriceRepo(base) // 11:00 relative hour
	clock := func() time.Time { return time.Unix(base+3600+600, 0) }
	feed := &fakeFeed{head: base + 3600}

	job := NewJob(repo, feed, clock)
	inserted, err := job.Run(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Zero(t, feed.calls, "feed must not be called when nothing is missing")
}

func TestRun_FillsMissingHoursAscending(t *testing.T) {
	base := int64(1742742000)
	repo := newFakePriceRepo(base)
	// now is base+5h+20m: nowHour = base+5h, missing = 5 - 1 = 4.
	clock := func() time.Time { return time.Unix(base+5*3600+1200, 0) }
	feed := &fakeFeed{head: base + 5*3600, earliest: base - 100*3600}

	job := NewJob(repo, feed, clock)
	inserted, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, inserted)
	assert.Equal(t, []int64{base + 3600, base + 2*3600, base + 3*3600, base + 4*3600}, repo.order,
		"candles must be inserted in ascending time order")

	// The still-open current hour must not be stored.
	_, ok := repo.points[base+5*3600]
	assert.False(t, ok)
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	base := int64(1742742000)
	repo := newFakePriceRepo(base)
	clock := func() time.Time { return time.Unix(base+5*3600+1200, 0) }
	feed := &fakeFeed{head: base + 5*3600, earliest: base - 100*3600}

	job := NewJob(repo, feed, clock)

	inserted, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	// Re-running immediately after a successful pass writes nothing.
	inserted, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestRun_EmptyStoreIsFatal(t *testing.T) {
	repo := newFakePriceRepo()
	feed := &fakeFeed{}

	job := NewJob(repo, feed, func() time.Time { return time.Unix(1742742000, 0) })
	_, err := job.Run(context.Background())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoPriceData))
}

func TestRun_FeedFailurePropagates(t *testing.T) {
	base := int64(1742742000)
	repo := newFakePriceRepo(base)
	clock := func() time.Time { return time.Unix(base+5*3600+1200, 0) }
	feed := &fakeFeed{err: errors.New("connection refused")}

	job := NewJob(repo, feed, clock)
	inserted, err := job.Run(context.Background())

	assert.Error(t, err)
	assert.Zero(t, inserted, "a failed fetch must not write partial pages")

	// Committed rows are untouched.
	_, getErr := repo.GetByTimestamp(context.Background(), base)
	assert.NoError(t, getErr)
}

// stuckFeed ignores the cursor and always serves the same candle.
type stuckFeed struct {
	ts    int64
	calls int
}

func (f *stuckFeed) FetchCandles(ctx context.Context, fromSymbol, toSymbol string, to int64, limit int) ([]*domain.HourlyPricePoint, error) {
	f.calls++
	return []*domain.HourlyPricePoint{{UnixTimestamp: f.ts, Close: decimal.NewFromInt(100)}}, nil
}

func TestRun_NonAdvancingFeedFails(t *testing.T) {
	base := int64(1742742000)
	repo := newFakePriceRepo(base)
	clock := func() time.Time { return time.Unix(base+5*3600+1200, 0) }
	// The feed keeps serving a candle ahead of the cursor, so paging
	// never moves backward.
	feed := &stuckFeed{ts: base + 6*3600}

	job := NewJob(repo, feed, clock)
	inserted, err := job.Run(context.Background())

	assert.Error(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, 1, feed.calls, "a page that does not move the cursor must end the run")
}

func TestRun_StopsOnEmptyPage(t *testing.T) {
	base := int64(1742742000)
	repo := newFakePriceRepo(base)
	clock := func() time.Time { return time.Unix(base+5*3600+1200, 0) }
	// Feed has no data at all before head: pages come back empty once the
	// cursor moves past it.
	feed := &fakeFeed{head: base + 5*3600, earliest: base + 4*3600}

	job := NewJob(repo, feed, clock)
	inserted, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, inserted, "only the available candle is stored")
}

// Package ingestion keeps the hourly price store current. A scheduled job
// fetches the candles missing between the latest stored hour and now from
// the external feed and appends them, skipping the still-open current hour.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mcosta/btcfolio-backend/internal/domain"
	"github.com/mcosta/btcfolio-backend/internal/timeutil"
)

const defaultPageSize = 2000

// CandleFeed is the external hourly-candle source.
type CandleFeed interface {
	// FetchCandles returns up to limit hourly candles for the symbol pair
	// ending at the given timestamp, in ascending time order.
	FetchCandles(ctx context.Context, fromSymbol, toSymbol string, to int64, limit int) ([]*domain.HourlyPricePoint, error)
}

// Job ingests missing hourly candles into the price store. Writes are
// idempotent per timestamp, so a crashed run can safely be retried on the
// next scheduled invocation.
type Job struct {
	repo       domain.PriceRepository
	feed       CandleFeed
	fromSymbol string
	toSymbol   string
	pageSize   int
	now        func() time.Time
}

// NewJob creates an ingestion job. A nil clock falls back to time.Now.
func NewJob(repo domain.PriceRepository, feed CandleFeed, now func() time.Time) *Job {
	if now == nil {
		now = time.Now
	}
	return &Job{
		repo:       repo,
		feed:       feed,
		fromSymbol: "BTC",
		toSymbol:   "USD",
		pageSize:   defaultPageSize,
		now:        now,
	}
}

// Run performs one ingestion pass and returns the number of candles written.
//
// The job requires at least one stored candle to continue from; seeding an
// empty store is a separate bulk-load operation, so an empty store is a
// fatal run error. The current, still-open hour is always excluded: its
// close, low and high may still change.
func (j *Job) Run(ctx context.Context) (int, error) {
	latest, err := j.repo.Latest(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot continue ingestion without existing data: %w", err)
	}
	last := latest.UnixTimestamp

	nowHour := timeutil.RoundDownToHour(j.now().Unix())
	missing := (nowHour-last)/3600 - 1
	if missing <= 0 {
		return 0, nil
	}

	candles, err := j.collect(ctx, last, nowHour, missing)
	if err != nil {
		return 0, err
	}

	// Insert in ascending time order so a failed run leaves a contiguous
	// prefix behind and the next run resumes from it.
	sort.Slice(candles, func(a, b int) bool {
		return candles[a].UnixTimestamp < candles[b].UnixTimestamp
	})

	inserted := 0
	for _, candle := range candles {
		ok, err := j.repo.Insert(ctx, candle)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert candle %d: %w", candle.UnixTimestamp, err)
		}
		if !ok {
			log.Printf("ingestion: skipping candle %d, already stored", candle.UnixTimestamp)
			continue
		}
		inserted++
	}
	return inserted, nil
}

// collect pages backward through the feed with a moving `to` cursor until
// the missing candles are gathered or the feed runs dry. Candles at or
// before the latest stored hour and the still-open current hour are
// filtered out.
func (j *Job) collect(ctx context.Context, last, nowHour, missing int64) ([]*domain.HourlyPricePoint, error) {
	var collected []*domain.HourlyPricePoint
	to := nowHour

	for int64(len(collected)) < missing {
		limit := j.pageSize
		if remaining := missing - int64(len(collected)); remaining < int64(limit) {
			limit = int(remaining)
		}

		page, err := j.feed.FetchCandles(ctx, j.fromSymbol, j.toSymbol, to, limit)
		if err != nil {
			return nil, fmt.Errorf("candle feed failed at cursor %d: %w", to, err)
		}
		if len(page) == 0 {
			break
		}

		oldest := page[0].UnixTimestamp
		for _, candle := range page {
			if candle.UnixTimestamp < oldest {
				oldest = candle.UnixTimestamp
			}
			if candle.UnixTimestamp <= last || candle.UnixTimestamp >= nowHour {
				continue
			}
			collected = append(collected, candle)
		}

		// The cursor must move strictly backward or a feed returning
		// candles newer than the cursor would spin this loop forever.
		next := oldest - 3600
		if next >= to {
			return nil, fmt.Errorf("candle feed did not page backward at cursor %d, got oldest %d", to, oldest)
		}
		to = next
	}
	return collected, nil
}

// RunEvery blocks and performs an ingestion pass on every tick until the
// context is cancelled. Ticks are strictly sequential, so two passes never
// overlap. Failed runs are logged and retried on the next tick.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			inserted, err := j.Run(ctx)
			if err != nil {
				log.Printf("ingestion: run failed, retrying next tick: %v", err)
				continue
			}
			if inserted > 0 {
				log.Printf("ingestion: stored %d new candles", inserted)
			}
		}
	}
}

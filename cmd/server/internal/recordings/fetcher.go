// Package recordings produces the meeting list and transcripts served by
// the REST layer: it drains the upstream's cursor pagination into one
// ordered list, rides out rate limiting with bounded backoff, and
// normalizes each raw record on the way through.
package recordings

import (
	"context"
	"log/slog"
	"time"

	"github.com/meetkit/meetings-gateway/cmd/server/internal/metrics"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/upstream"
	"github.com/meetkit/meetings-gateway/pkg/logger"
)

// PageLister is the single upstream capability the drain needs.
type PageLister interface {
	ListRecordingsPage(ctx context.Context, cursor string) (upstream.PageResult, error)
}

// DrainState labels how a drain terminated.
type DrainState string

const (
	// DrainComplete means the cursor was exhausted and the list is whole.
	DrainComplete DrainState = "complete"

	// DrainPartial means rate-limit retries ran out mid-drain; the list
	// holds every page fetched before the truncation. Partial is a soft
	// outcome, not an error.
	DrainPartial DrainState = "partial"

	// DrainAborted means a hard failure stopped the drain; no records are
	// returned.
	DrainAborted DrainState = "aborted"
)

// DrainResult is the outcome of one full drain.
type DrainResult struct {
	Records []Record
	State   DrainState
	Pages   int
	Retries int
}

// Fetcher drains the upstream recordings listing.
//
// Between consecutive pages it waits a fixed delay to stay polite. A 429
// triggers exponential backoff (2s, 4s, 8s, 16s, 32s) and a retry of the
// same cursor; the retry counter resets on every successful page. Once the
// counter passes maxRetries the drain stops and returns what it has.
type Fetcher struct {
	lister     PageLister
	pageDelay  time.Duration
	maxRetries int
	logger     *slog.Logger

	// sleep 可注入，测试不必真实等待
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher. pageDelay is the wait between consecutive
// pages; maxRetries bounds consecutive 429 retries per page.
func NewFetcher(lister PageLister, pageDelay time.Duration, maxRetries int, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		lister:     lister,
		pageDelay:  pageDelay,
		maxRetries: maxRetries,
		logger:     log,
		sleep:      sleepCtx,
	}
}

// DrainAll fetches every page of the recordings listing and returns the
// normalized records in upstream order.
//
// The error is non-nil only for the aborted state: a hard upstream failure
// or a cancelled context. Rate-limit exhaustion is reported through
// DrainState, with the accumulated records attached.
func (f *Fetcher) DrainAll(ctx context.Context) (DrainResult, error) {
	// records starts non-nil so an empty listing serializes as [] not null
	records := make([]Record, 0)
	var (
		cursor       string
		retries      int
		totalRetries int
		pages        int
	)
	start := time.Now()

	for {
		page, err := f.lister.ListRecordingsPage(ctx, cursor)
		if err != nil {
			if upstream.IsRateLimited(err) {
				retries++
				totalRetries++
				if retries > f.maxRetries {
					logger.LogDrainOutcome(f.logger, string(DrainPartial), pages, len(records),
						time.Since(start).Milliseconds(), "rate limit retries exhausted")
					metrics.RecordDrain(string(DrainPartial), pages, time.Since(start).Seconds())
					return DrainResult{Records: records, State: DrainPartial, Pages: pages, Retries: totalRetries}, nil
				}

				wait := time.Duration(1<<uint(retries)) * time.Second
				f.logger.Warn("[Drain] rate limited by upstream, backing off",
					"attempt", retries,
					"max_retries", f.maxRetries,
					"wait", wait.String(),
				)
				metrics.RecordRateLimitRetry()
				if serr := f.sleep(ctx, wait); serr != nil {
					return f.abort(start, pages, totalRetries, serr)
				}
				continue
			}
			return f.abort(start, pages, totalRetries, err)
		}

		pages++
		retries = 0
		records = append(records, normalizeItems(page.Items)...)

		cursor = page.NextCursor
		if cursor == "" {
			break
		}
		if f.pageDelay > 0 {
			if serr := f.sleep(ctx, f.pageDelay); serr != nil {
				return f.abort(start, pages, totalRetries, serr)
			}
		}
	}

	logger.LogDrainOutcome(f.logger, string(DrainComplete), pages, len(records),
		time.Since(start).Milliseconds(), "")
	metrics.RecordDrain(string(DrainComplete), pages, time.Since(start).Seconds())
	return DrainResult{Records: records, State: DrainComplete, Pages: pages, Retries: totalRetries}, nil
}

func (f *Fetcher) abort(start time.Time, pages, totalRetries int, err error) (DrainResult, error) {
	logger.LogDrainOutcome(f.logger, string(DrainAborted), pages, 0,
		time.Since(start).Milliseconds(), err.Error())
	metrics.RecordDrain(string(DrainAborted), pages, time.Since(start).Seconds())
	return DrainResult{State: DrainAborted, Pages: pages, Retries: totalRetries}, err
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

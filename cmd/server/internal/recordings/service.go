package recordings

import (
	"context"
	"log/slog"
	"time"

	"github.com/meetkit/meetings-gateway/cmd/server/internal/cache"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/metrics"
)

// TranscriptGetter is the upstream capability behind transcript requests.
type TranscriptGetter interface {
	GetTranscript(ctx context.Context, recordingID int64) (interface{}, error)
}

// ListResult is the meeting list together with the time its drain finished.
// FetchedAt is the slot's stored fetch time, so repeated reads within the
// TTL serve byte-identical responses.
type ListResult struct {
	Records   []Record
	FetchedAt time.Time
}

// Service answers the REST layer's questions: the current meeting list
// (served from cache when fresh, drained from the upstream otherwise) and
// per-recording transcripts (always fetched, never cached).
type Service struct {
	transcripts TranscriptGetter
	fetcher     *Fetcher
	slot        *cache.Slot
	logger      *slog.Logger
}

// NewService wires the drain, the cache slot and the transcript source
// together.
func NewService(transcripts TranscriptGetter, fetcher *Fetcher, slot *cache.Slot, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		transcripts: transcripts,
		fetcher:     fetcher,
		slot:        slot,
		logger:      log,
	}
}

// ListMeetings returns the normalized meeting list.
//
// On a cache miss the whole pagination is drained before anything is
// stored: the slot only ever holds a drain's terminal result, never an
// intermediate page. Concurrent misses may each run their own drain and
// overwrite one another; the last writer's list wins. The drain is
// detached from the inbound request's cancellation, so a client that
// disconnects mid-drain does not waste the pages already fetched.
func (s *Service) ListMeetings(ctx context.Context) (ListResult, error) {
	if cached, fetchedAt, ok := s.slot.Get(); ok {
		metrics.RecordCacheEvent("hit")
		s.logger.Debug("[MeetingsService] serving meetings from cache", "count", len(cached))
		return ListResult{Records: cached, FetchedAt: fetchedAt}, nil
	}
	metrics.RecordCacheEvent("miss")

	result, err := s.fetcher.DrainAll(context.WithoutCancel(ctx))
	if err != nil {
		return ListResult{}, err
	}

	fetchedAt := s.slot.Set(result.Records)
	return ListResult{Records: result.Records, FetchedAt: fetchedAt}, nil
}

// GetTranscript fetches the transcript of one recording straight from the
// upstream. Transcripts bypass the cache.
func (s *Service) GetTranscript(ctx context.Context, recordingID int64) (interface{}, error) {
	return s.transcripts.GetTranscript(ctx, recordingID)
}

// ClearCache empties the meeting list cache.
func (s *Service) ClearCache() {
	metrics.RecordCacheEvent("clear")
	s.slot.Clear()
	s.logger.Info("[MeetingsService] cache cleared")
}

// CacheStats reports the cache slot's current state.
func (s *Service) CacheStats() cache.Stats {
	return s.slot.Stats()
}

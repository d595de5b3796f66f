package geocode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/provider"
)

const (
	// batchConcurrency caps the number of in-flight lookups per batch call.
	batchConcurrency = 2

	// pacingFloor is the minimum gap between the start instants of two
	// consecutive outbound lookups across a batch. The provider enforces a
	// request-rate ceiling; spacing admissions keeps us under it without a
	// full token bucket.
	pacingFloor = 180 * time.Millisecond
)

// ServiceConfig holds configuration for the geocode service.
type ServiceConfig struct {
	// Client is the geocoding provider client.
	Client Client

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service resolves placenames one at a time or as a rate-limited batch.
type Service struct {
	client Client
	logger zerolog.Logger
}

// NewService creates a new geocode service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		client: cfg.Client,
		logger: cfg.Logger,
	}
}

// ResolvePlacename resolves a single placename. The returned Outcome always
// carries the input placename; failures are reported in its Status, never as
// an error.
func (s *Service) ResolvePlacename(ctx context.Context, placename string) Outcome {
	return s.resolveOne(ctx, placename)
}

// ResolveBatch resolves every placename in names and returns one Outcome per
// input, positionally aligned with it. Items are resolved independently: a
// failed lookup never aborts its siblings.
//
// At most batchConcurrency lookups run concurrently, and admission of
// consecutive lookups is spaced at least pacingFloor apart. The pacing cursor
// is owned by this call; concurrent batches do not share rate-limiting state.
func (s *Service) ResolveBatch(ctx context.Context, names []string) []Outcome {
	outcomes := make([]Outcome, len(names))
	if len(names) == 0 {
		return outcomes
	}

	s.logger.Debug().
		Int("count", len(names)).
		Msg("resolving placename batch")

	// Seeded one interval in the past so the first lookup starts immediately.
	var pacingMu sync.Mutex
	lastAdmitted := time.Now().Add(-pacingFloor)

	slots := make(chan struct{}, batchConcurrency)

	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			slots <- struct{}{}
			defer func() { <-slots }()

			// The cursor check, delay, and update form one critical section;
			// the network call below runs outside it so lookups overlap up to
			// the slot cap.
			pacingMu.Lock()
			if wait := pacingFloor - time.Since(lastAdmitted); wait > 0 {
				time.Sleep(wait)
			}
			lastAdmitted = time.Now()
			pacingMu.Unlock()

			outcomes[i] = s.resolveOne(ctx, names[i])
		}(i)
	}
	wg.Wait()

	return outcomes
}

func (s *Service) resolveOne(ctx context.Context, placename string) Outcome {
	match, err := s.client.Lookup(ctx, placename)
	if err != nil {
		if ue, ok := provider.AsUpstream(err); ok {
			s.logger.Warn().
				Str("placename", placename).
				Int("status_code", ue.StatusCode).
				Msg("geocoder returned an error status")
			return Outcome{
				Placename: placename,
				Status:    fmt.Sprintf("upstream error (status code=%d)", ue.StatusCode),
			}
		}

		s.logger.Error().
			Err(err).
			Str("placename", placename).
			Msg("geocoder lookup failed")
		return Outcome{
			Placename: placename,
			Status:    fmt.Sprintf("unexpected error: %v", err),
		}
	}

	if !match.Found {
		return Outcome{
			Placename: placename,
			Status:    StatusNoMatch,
		}
	}

	return Outcome{
		Placename: placename,
		Latitude:  match.Latitude,
		Longitude: match.Longitude,
		Status:    StatusOK,
	}
}

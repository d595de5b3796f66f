package airquality

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/provider"
)

const (
	// searchRadiusMeters is the station discovery radius.
	searchRadiusMeters = 12000

	// stationLimit caps how many stations discovery may return.
	stationLimit = 25

	// freshnessWindow is the maximum age of a station's last update for the
	// station to be eligible.
	freshnessWindow = 8 * time.Hour

	// maxReadings caps the number of readings assembled per call.
	maxReadings = 3
)

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Client is the air-quality provider client.
	Client Client

	// Logger for service operations.
	Logger zerolog.Logger

	// Now supplies the current instant for the freshness cutoff.
	// Defaults to time.Now.
	Now func() time.Time

	// Shuffle randomizes station visiting order. Defaults to rand.Shuffle;
	// tests inject a deterministic one.
	Shuffle func(n int, swap func(i, j int))
}

// Service selects recent PM2.5 readings near a coordinate.
type Service struct {
	client  Client
	logger  zerolog.Logger
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	shuffle := cfg.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	return &Service{
		client:  cfg.Client,
		logger:  cfg.Logger,
		now:     now,
		shuffle: shuffle,
	}
}

// GetReadings returns up to maxReadings recent PM2.5 readings near the given
// coordinate. It never returns an error: a failed lookup yields exactly one
// sentinel reading, and a successful lookup with no fresh data yields an
// empty slice.
//
// Stations are discovered, filtered for freshness and PM2.5 capability,
// visited in uniformly random order, and mined for their most recent valid
// measurement until the cap is reached. One station failing never aborts the
// others; only an unexpected (non-upstream) failure short-circuits the call.
func (s *Service) GetReadings(ctx context.Context, latitude, longitude float64) []Reading {
	coord := Coordinate{Latitude: latitude, Longitude: longitude}

	stations, err := s.client.FindStations(ctx, coord, searchRadiusMeters, stationLimit)
	if err != nil {
		if ue, ok := provider.AsUpstream(err); ok {
			s.logger.Warn().
				Int("status_code", ue.StatusCode).
				Float64("latitude", latitude).
				Float64("longitude", longitude).
				Msg("station discovery returned an error status")
			return []Reading{errorReading(fmt.Sprintf("API error: %d", ue.StatusCode))}
		}

		s.logger.Error().Err(err).Msg("station discovery failed")
		return []Reading{errorReading(fmt.Sprintf("An unexpected error occurred: %v", err))}
	}

	if len(stations) == 0 {
		return []Reading{errorReading(StatusNoStations)}
	}

	cutoff := s.now().UTC().Add(-freshnessWindow)

	candidates := make([]Station, 0, len(stations))
	for _, station := range stations {
		if station.LastUpdated == nil || !station.LastUpdated.After(cutoff) {
			continue
		}
		if station.SensorFor(ParameterPM25) == nil {
			continue
		}
		candidates = append(candidates, station)
	}

	if len(candidates) == 0 {
		// Coverage exists but nothing is fresh and capable: a legitimate
		// no-data outcome, distinct from the no-stations sentinel above.
		s.logger.Debug().
			Int("discovered", len(stations)).
			Msg("no station passed the freshness and capability filter")
		return []Reading{}
	}

	s.logger.Debug().
		Int("candidates", len(candidates)).
		Msg("sampling candidate stations")

	// The provider returns stations in a fixed order; shuffling keeps the
	// sample from always favoring whichever stations sort first.
	s.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	readings := make([]Reading, 0, maxReadings)
	for i := range candidates {
		if len(readings) >= maxReadings {
			break
		}

		reading, err := s.readStation(ctx, &candidates[i], cutoff)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int("station_id", candidates[i].ID).
				Msg("unexpected failure while reading station")
			return []Reading{errorReading(fmt.Sprintf("An unexpected error occurred: %v", err))}
		}
		if reading != nil {
			readings = append(readings, *reading)
		}
	}

	return readings
}

// readStation extracts the station's most recent valid PM2.5 measurement.
// It returns (nil, nil) when the station yields nothing usable, which does
// not count against the reading cap.
func (s *Service) readStation(ctx context.Context, station *Station, from time.Time) (*Reading, error) {
	sensor := station.SensorFor(ParameterPM25)
	if sensor == nil {
		// Filtered out earlier; kept as a guard.
		return nil, nil
	}

	measurements, err := s.client.FetchHourlyMeasurements(ctx, sensor.ID, from)
	if err != nil {
		if ue, ok := provider.AsUpstream(err); ok {
			s.logger.Warn().
				Int("sensor_id", sensor.ID).
				Int("status_code", ue.StatusCode).
				Msg("skipping station after measurement fetch error")
			return nil, nil
		}
		return nil, err
	}

	if len(measurements) == 0 {
		s.logger.Debug().
			Int("sensor_id", sensor.ID).
			Msg("sensor returned no measurements")
		return nil, nil
	}

	// Measurements arrive oldest first; walk back from the newest for the
	// first one carrying both a value and a period end.
	for i := len(measurements) - 1; i >= 0; i-- {
		m := measurements[i]
		if !m.Valid() {
			continue
		}
		return &Reading{
			SensorID:  sensor.ID,
			Placename: station.Name,
			Timestamp: m.PeriodEnd.UTC(),
			PM25:      *m.Value,
			Status:    StatusSuccess,
		}, nil
	}

	return nil, nil
}

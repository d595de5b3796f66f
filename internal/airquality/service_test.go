package airquality

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/provider"
)

// mockClient is a scripted air-quality client.
type mockClient struct {
	stations    []Station
	stationsErr error

	measurements    map[int][]Measurement
	measurementsErr map[int]error
}

func (m *mockClient) FindStations(context.Context, Coordinate, int, int) ([]Station, error) {
	if m.stationsErr != nil {
		return nil, m.stationsErr
	}
	return m.stations, nil
}

func (m *mockClient) FetchHourlyMeasurements(_ context.Context, sensorID int, _ time.Time) ([]Measurement, error) {
	if err, ok := m.measurementsErr[sensorID]; ok {
		return nil, err
	}
	return m.measurements[sensorID], nil
}

// identityShuffle keeps the candidate order deterministic in tests.
func identityShuffle(int, func(i, j int)) {}

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

// pm25Station builds a station with one pm25 sensor and the given last update.
func pm25Station(id int, name string, lastUpdated *time.Time) Station {
	return Station{
		ID:          id,
		Name:        name,
		LastUpdated: lastUpdated,
		Sensors: []Sensor{
			{ID: id * 100, Parameter: "no2"},
			{ID: id*100 + 1, Parameter: ParameterPM25},
		},
	}
}

func validMeasurement(value float64, end time.Time) Measurement {
	return Measurement{Value: floatPtr(value), PeriodEnd: timePtr(end)}
}

func newTestService(client Client, now time.Time) *Service {
	return NewService(ServiceConfig{
		Client:  client,
		Now:     func() time.Time { return now },
		Shuffle: identityShuffle,
	})
}

func TestService_GetReadings_DiscoveryUpstreamError(t *testing.T) {
	client := &mockClient{
		stationsErr: &provider.UpstreamError{Provider: "openaq", StatusCode: 502},
	}
	service := newTestService(client, time.Now())

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	require.Len(t, readings, 1)
	assert.Equal(t, 0, readings[0].SensorID)
	assert.Empty(t, readings[0].Placename)
	assert.True(t, readings[0].Timestamp.IsZero())
	assert.Equal(t, -1.0, readings[0].PM25)
	assert.Equal(t, "API error: 502", readings[0].Status)
}

func TestService_GetReadings_NoStations(t *testing.T) {
	service := newTestService(&mockClient{}, time.Now())

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	require.Len(t, readings, 1)
	assert.Equal(t, StatusNoStations, readings[0].Status)
	assert.Equal(t, -1.0, readings[0].PM25)
}

func TestService_GetReadings_FreshnessBoundary(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-freshnessWindow)

	client := &mockClient{
		stations: []Station{
			pm25Station(1, "exactly at cutoff", timePtr(cutoff)),
			pm25Station(2, "one second inside", timePtr(cutoff.Add(time.Second))),
			pm25Station(3, "stale", timePtr(cutoff.Add(-time.Hour))),
			pm25Station(4, "no timestamp", nil),
		},
		measurements: map[int][]Measurement{
			201: {validMeasurement(12.5, now.Add(-time.Hour))},
		},
	}
	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	require.Len(t, readings, 1)
	assert.Equal(t, "one second inside", readings[0].Placename)
	assert.Equal(t, 201, readings[0].SensorID)
	assert.Equal(t, 12.5, readings[0].PM25)
	assert.Equal(t, StatusSuccess, readings[0].Status)
}

func TestService_GetReadings_NoFreshCapableStations(t *testing.T) {
	now := time.Now().UTC()
	client := &mockClient{
		stations: []Station{
			// Fresh but no pm25 sensor.
			{
				ID:          1,
				Name:        "no pm25",
				LastUpdated: timePtr(now.Add(-time.Hour)),
				Sensors:     []Sensor{{ID: 10, Parameter: "o3"}},
			},
			// Capable but stale.
			pm25Station(2, "stale", timePtr(now.Add(-9*time.Hour))),
		},
	}
	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	// A legitimate no-data outcome, not a sentinel.
	assert.Empty(t, readings)
}

func TestService_GetReadings_MostRecentValidMeasurement(t *testing.T) {
	now := time.Now().UTC()
	client := &mockClient{
		stations: []Station{pm25Station(1, "station", timePtr(now.Add(-time.Hour)))},
		measurements: map[int][]Measurement{
			101: {
				validMeasurement(7.0, now.Add(-4*time.Hour)),
				validMeasurement(8.5, now.Add(-3*time.Hour)),
				{Value: floatPtr(9.0)},                       // newest but no period end
				{PeriodEnd: timePtr(now.Add(-time.Hour))},    // newest but no value
			},
		},
	}
	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	require.Len(t, readings, 1)
	assert.Equal(t, 8.5, readings[0].PM25)
	assert.Equal(t, now.Add(-3*time.Hour), readings[0].Timestamp)
}

func TestService_GetReadings_ResultCap(t *testing.T) {
	now := time.Now().UTC()
	client := &mockClient{measurements: map[int][]Measurement{}}
	for i := 1; i <= 5; i++ {
		client.stations = append(client.stations,
			pm25Station(i, fmt.Sprintf("station %d", i), timePtr(now.Add(-time.Hour))))
		client.measurements[i*100+1] = []Measurement{validMeasurement(float64(i), now.Add(-time.Hour))}
	}
	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	assert.Len(t, readings, maxReadings)
}

func TestService_GetReadings_FewerThanCapIsNotPadded(t *testing.T) {
	now := time.Now().UTC()
	client := &mockClient{
		stations: []Station{
			pm25Station(1, "one", timePtr(now.Add(-time.Hour))),
			pm25Station(2, "two", timePtr(now.Add(-2*time.Hour))),
		},
		measurements: map[int][]Measurement{
			101: {validMeasurement(4.2, now.Add(-time.Hour))},
			201: {validMeasurement(5.3, now.Add(-time.Hour))},
		},
	}
	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	assert.Len(t, readings, 2)
}

func TestService_GetReadings_BarrenStationDoesNotCountAgainstCap(t *testing.T) {
	now := time.Now().UTC()
	client := &mockClient{
		measurements:    map[int][]Measurement{},
		measurementsErr: map[int]error{},
	}
	for i := 1; i <= 4; i++ {
		client.stations = append(client.stations,
			pm25Station(i, fmt.Sprintf("station %d", i), timePtr(now.Add(-time.Hour))))
	}
	// First visited station errors upstream, second has no measurements;
	// the remaining two still produce readings.
	client.measurementsErr[101] = &provider.UpstreamError{Provider: "openaq", StatusCode: 500}
	client.measurements[301] = []Measurement{validMeasurement(1.0, now.Add(-time.Hour))}
	client.measurements[401] = []Measurement{validMeasurement(2.0, now.Add(-time.Hour))}

	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	require.Len(t, readings, 2)
	for _, r := range readings {
		assert.Equal(t, StatusSuccess, r.Status)
	}
}

func TestService_GetReadings_UnexpectedErrorShortCircuits(t *testing.T) {
	now := time.Now().UTC()
	client := &mockClient{
		stations: []Station{pm25Station(1, "station", timePtr(now.Add(-time.Hour)))},
		measurementsErr: map[int]error{
			101: errors.New("connection reset"),
		},
	}
	service := newTestService(client, now)

	readings := service.GetReadings(context.Background(), 52.37, 4.89)

	require.Len(t, readings, 1)
	assert.Equal(t, -1.0, readings[0].PM25)
	assert.Contains(t, readings[0].Status, "An unexpected error occurred")
	assert.Contains(t, readings[0].Status, "connection reset")
}

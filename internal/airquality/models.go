// Package airquality finds recent PM2.5 readings near a coordinate by
// discovering monitoring stations through an external provider and selecting
// a bounded sample of them.
package airquality

import (
	"context"
	"time"
)

// ParameterPM25 is the provider's name for the PM2.5 parameter.
const ParameterPM25 = "pm25"

// Reading status values.
const (
	// StatusSuccess marks a reading extracted from a live sensor.
	StatusSuccess = "Success."

	// StatusNoStations marks the sentinel returned when discovery finds no
	// stations at all near the coordinate.
	StatusNoStations = "Error. No locations found near coordinates."
)

// Coordinate is a caller-supplied (latitude, longitude) pair. Range validity
// is left to the upstream provider.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Sensor is a single measurement stream belonging to a station.
type Sensor struct {
	// ID identifies the sensor in the provider's data store.
	ID int

	// Parameter names what the sensor measures, e.g. "pm25".
	Parameter string
}

// Station is a candidate air-monitoring location.
type Station struct {
	ID   int
	Name string

	// LastUpdated is the station's last-updated instant; nil when the
	// provider omitted it, which disqualifies the station from selection.
	LastUpdated *time.Time

	Sensors []Sensor
}

// SensorFor returns the station's first sensor measuring parameter, or nil.
func (s *Station) SensorFor(parameter string) *Sensor {
	for i := range s.Sensors {
		if s.Sensors[i].Parameter == parameter {
			return &s.Sensors[i]
		}
	}
	return nil
}

// Measurement is one hourly sensor observation. Value and PeriodEnd are nil
// when the provider omitted them.
type Measurement struct {
	Value     *float64
	PeriodEnd *time.Time
}

// Valid reports whether the measurement carries both a value and a period
// end; only valid measurements may become readings.
func (m Measurement) Valid() bool {
	return m.Value != nil && m.PeriodEnd != nil
}

// Reading is the public result unit. On failure SensorID is 0, Placename is
// empty, Timestamp is the zero time, PM25 is -1 and Status describes the
// cause.
type Reading struct {
	SensorID  int
	Placename string
	Timestamp time.Time
	PM25      float64
	Status    string
}

// errorReading builds the sentinel Reading for a failed lookup.
func errorReading(status string) Reading {
	return Reading{PM25: -1, Status: status}
}

// Client performs lookups against the air-quality provider.
type Client interface {
	// FindStations returns candidate stations within radiusMeters of coord,
	// capped at limit.
	FindStations(ctx context.Context, coord Coordinate, radiusMeters, limit int) ([]Station, error)

	// FetchHourlyMeasurements returns hourly measurements for a sensor from
	// the given instant onward, oldest first.
	FetchHourlyMeasurements(ctx context.Context, sensorID int, from time.Time) ([]Measurement, error)
}

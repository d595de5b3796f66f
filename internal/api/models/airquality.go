package models

import (
	"time"

	"github.com/airsight/airsight/internal/airquality"
)

// AirQualityReading is one PM2.5 reading on the wire. For sentinel readings
// SensorID is 0, Placename and Timestamp are empty, and PM25 is -1.
type AirQualityReading struct {
	SensorID  int     `json:"sensorId"`
	Placename string  `json:"placename"`
	Timestamp string  `json:"timestamp"`
	PM25      float64 `json:"pm25"`
	Status    string  `json:"status"`
}

// AirQualityResponse is the body of GET /v1/air-quality.
type AirQualityResponse struct {
	Readings []AirQualityReading `json:"readings"`
}

// NewAirQualityResponse converts domain readings to wire form. A zero
// timestamp renders as the empty string rather than the zero instant.
func NewAirQualityResponse(readings []airquality.Reading) AirQualityResponse {
	out := make([]AirQualityReading, 0, len(readings))
	for _, r := range readings {
		timestamp := ""
		if !r.Timestamp.IsZero() {
			timestamp = r.Timestamp.UTC().Format(time.RFC3339)
		}
		out = append(out, AirQualityReading{
			SensorID:  r.SensorID,
			Placename: r.Placename,
			Timestamp: timestamp,
			PM25:      r.PM25,
			Status:    r.Status,
		})
	}
	return AirQualityResponse{Readings: out}
}

// Package geocode resolves free-text placenames to coordinates through an
// external geocoding provider.
package geocode

import "context"

// Status values carried on an Outcome.
const (
	// StatusOK marks a successful resolution.
	StatusOK = "ok"

	// StatusNoMatch marks a lookup the provider answered but could not resolve.
	StatusNoMatch = "error resolving placename"
)

// Match is the provider's answer to a single lookup. Found is false when the
// provider responded successfully but had no result for the placename.
type Match struct {
	Found     bool
	Latitude  float64
	Longitude float64
}

// Client performs one placename lookup against a geocoding provider.
type Client interface {
	Lookup(ctx context.Context, placename string) (Match, error)
}

// Outcome is the result of resolving one placename. On failure the
// coordinate is (0, 0) and Status describes the cause; on success Status is
// exactly StatusOK.
type Outcome struct {
	Placename string
	Latitude  float64
	Longitude float64
	Status    string
}

// OK reports whether the outcome is a successful resolution.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

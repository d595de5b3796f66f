// Package provider holds plumbing shared by the external data provider clients.
package provider

import (
	"errors"
	"fmt"
)

// UpstreamError reports a non-success HTTP status from an external provider.
// It is the boundary between "the provider answered badly" and every other
// failure mode; callers branch on it with errors.As.
type UpstreamError struct {
	// Provider names the provider that produced the response.
	Provider string

	// StatusCode is the HTTP status the provider returned.
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Provider, e.StatusCode)
}

// AsUpstream unwraps err to an UpstreamError if one is in its chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

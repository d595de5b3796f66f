package models

import "github.com/airsight/airsight/internal/geocode"

// ResolveRequest is the body of POST /v1/placenames:resolve.
type ResolveRequest struct {
	Placename string `json:"placename"`
}

// ResolveBatchRequest is the body of POST /v1/placenames:resolve-batch.
type ResolveBatchRequest struct {
	Placenames []string `json:"placenames"`
}

// PlacenameResolution is one resolved placename. Latitude and Longitude are
// zero when Status is not "ok".
type PlacenameResolution struct {
	Placename string  `json:"placename"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
}

// ResolveBatchResponse is the body returned by the batch resolve endpoint.
// Results holds one entry per requested placename, in request order.
type ResolveBatchResponse struct {
	Results []PlacenameResolution `json:"results"`
}

// NewPlacenameResolution converts a domain outcome to its wire form.
func NewPlacenameResolution(o geocode.Outcome) PlacenameResolution {
	return PlacenameResolution{
		Placename: o.Placename,
		Latitude:  o.Latitude,
		Longitude: o.Longitude,
		Status:    o.Status,
	}
}

// NewResolveBatchResponse converts a slice of domain outcomes to wire form.
func NewResolveBatchResponse(outcomes []geocode.Outcome) ResolveBatchResponse {
	results := make([]PlacenameResolution, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, NewPlacenameResolution(o))
	}
	return ResolveBatchResponse{Results: results}
}

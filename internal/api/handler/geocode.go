// Package handler provides HTTP handlers for the AirSight API.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/geocode"
)

// GeocodeHandler handles placename resolution endpoints.
type GeocodeHandler struct {
	service *geocode.Service
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(service *geocode.Service) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

// ResolvePlacename handles POST /v1/placenames:resolve - resolve one placename.
func (h *GeocodeHandler) ResolvePlacename(w http.ResponseWriter, r *http.Request) {
	var input models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if strings.TrimSpace(input.Placename) == "" {
		response.BadRequest(w, r, "placename is required", []models.FieldError{
			{Field: "placename", Message: "must not be empty"},
		})
		return
	}

	outcome := h.service.ResolvePlacename(r.Context(), input.Placename)
	response.JSON(w, r, http.StatusOK, models.NewPlacenameResolution(outcome))
}

// ResolveBatch handles POST /v1/placenames:resolve-batch - resolve a batch of
// placenames. Results are positionally aligned with the request.
func (h *GeocodeHandler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var input models.ResolveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Placenames == nil {
		response.BadRequest(w, r, "placenames is required", []models.FieldError{
			{Field: "placenames", Message: "must be an array of placenames"},
		})
		return
	}

	outcomes := h.service.ResolveBatch(r.Context(), input.Placenames)
	response.JSON(w, r, http.StatusOK, models.NewResolveBatchResponse(outcomes))
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
)

// AirQualityHandler handles air quality endpoints.
type AirQualityHandler struct {
	service *airquality.Service
}

// NewAirQualityHandler creates a new AirQualityHandler.
func NewAirQualityHandler(service *airquality.Service) *AirQualityHandler {
	return &AirQualityHandler{service: service}
}

// GetReadings handles GET /v1/air-quality - recent PM2.5 readings near a
// coordinate. Lookup failures surface as sentinel readings with a 200, not
// as HTTP errors; only malformed input yields a 400.
func (h *AirQualityHandler) GetReadings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	latitude, latErr := strconv.ParseFloat(query.Get("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(query.Get("longitude"), 64)

	var fieldErrors []models.FieldError
	if latErr != nil {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "latitude", Message: "must be a decimal number",
		})
	}
	if lonErr != nil {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "longitude", Message: "must be a decimal number",
		})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrors)
		return
	}

	readings := h.service.GetReadings(r.Context(), latitude, longitude)
	response.JSON(w, r, http.StatusOK, models.NewAirQualityResponse(readings))
}

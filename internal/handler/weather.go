package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"pulseboard/internal/tools"
	"pulseboard/internal/widget"
)

// WeatherHandler answers direct weather lookups, bypassing the model.
type WeatherHandler struct {
	weather tools.WeatherLookup
}

func NewWeatherHandler(weather tools.WeatherLookup) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

func (h *WeatherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorWidget(w, http.StatusMethodNotAllowed, "method "+r.Method+" is not allowed", widget.CodeMethodNotAllowed)
		return
	}
	if h.weather == nil {
		writeErrorWidget(w, http.StatusInternalServerError, "weather lookup is not configured", widget.CodeServerError)
		return
	}

	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")

	var lat, lon float64
	switch {
	case latRaw != "" && lonRaw != "":
		var err error
		if lat, err = strconv.ParseFloat(latRaw, 64); err != nil {
			writeErrorWidget(w, http.StatusBadRequest, "lat is not a number", widget.CodeValidationError)
			return
		}
		if lon, err = strconv.ParseFloat(lonRaw, 64); err != nil {
			writeErrorWidget(w, http.StatusBadRequest, "lon is not a number", widget.CodeValidationError)
			return
		}
	case city != "":
		var err error
		lat, lon, err = h.weather.GeocodeCity(r.Context(), city)
		if err != nil {
			writeErrorWidget(w, http.StatusNotFound, err.Error(), widget.CodeValidationError)
			return
		}
	default:
		writeErrorWidget(w, http.StatusBadRequest, "city or lat/lon is required", widget.CodeValidationError)
		return
	}

	report, err := h.weather.Current(r.Context(), lat, lon)
	if err != nil {
		log.Printf("handler: weather lookup: %v", err)
		writeErrorWidget(w, http.StatusBadGateway, "weather lookup failed", widget.CodeServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

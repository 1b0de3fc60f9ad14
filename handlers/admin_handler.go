// handlers/admin_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gewnthar/co2scope/database"
	"github.com/gewnthar/co2scope/models"
	"github.com/gewnthar/co2scope/services"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// ForceRefreshHandler handles requests to manually refresh the WDI data.
// Expects POST requests to /api/admin/refresh/{source}
// where {source} is "indicators", "countries" or "all".
func ForceRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// pathParts: ["api", "admin", "refresh", "{source}"]
	if len(pathParts) < 4 {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/admin/refresh/{source}")
		return
	}
	source := strings.ToLower(pathParts[3])

	var err error
	switch source {
	case "indicators":
		err = services.ForceUpdateSource(r.Context(), services.SourceIndicators, nil)
	case "countries":
		err = services.ForceUpdateSource(r.Context(), services.SourceCountries, nil)
	case "all":
		err = services.ForceUpdateAll(r.Context())
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid source '%s'. Use 'indicators', 'countries', or 'all'.", source))
		return
	}

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh %s data: %v", source, err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Refresh of %s data completed.", source)})
}

// CheckUpdateHandler runs the release check immediately instead of waiting for the schedule.
// Expects POST requests to /api/admin/check-update
func CheckUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	if err := services.UpdateIfNeeded(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to check/update data: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Check/update process completed."})
}

// SourcesHandler lists the recorded data-source versions.
// Expects GET requests to /api/admin/sources
func SourcesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	versions, err := database.GetDataSourceVersions(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get data sources: %v", err))
		return
	}
	if versions == nil {
		versions = []models.DataSourceVersion{}
	}
	respondWithJSON(w, http.StatusOK, versions)
}

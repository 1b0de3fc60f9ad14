// handlers/routes.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gewnthar/co2scope/database"
)

// HealthHandler reports whether the database is reachable.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := database.Ping(r.Context()); err != nil {
		log.Printf("Health check failed: DB ping error: %v", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "database connection error"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "co2scope backend is healthy"})
}

// NewMux registers every API route.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", HealthHandler)

	mux.HandleFunc("/api/records/select", SelectRecordsHandler)
	mux.HandleFunc("/api/sectors", SectorsHandler)
	mux.HandleFunc("/api/top-emitters", TopEmittersHandler)
	mux.HandleFunc("/api/series", SeriesHandler)
	mux.HandleFunc("/api/charts/", ChartHandler) // path ends with / to catch {name}.png

	// Admin routes for managing the WDI data
	mux.HandleFunc("/api/admin/refresh/", ForceRefreshHandler)
	mux.HandleFunc("/api/admin/check-update", CheckUpdateHandler)
	mux.HandleFunc("/api/admin/sources", SourcesHandler)
	return mux
}

// handlers/chart_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/services"
)

// ChartHandler renders one analysis chart from the stored data.
// Expects GET to /api/charts/{name}.png
func ChartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	name := strings.TrimSuffix(path.Base(r.URL.Path), ".png")
	if !slices.Contains(services.ChartNames, name) {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Unknown chart '%s'. Use one of: %s", name, strings.Join(services.ChartNames, ", ")))
		return
	}

	cfg := config.AppConfig.Analysis
	ds, err := services.LoadDatasetFromDB(r.Context(), cfg)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load data: %v", err))
		return
	}
	res := services.RunAnalysis(ds, cfg)

	var buf bytes.Buffer
	if err := services.RenderChart(&buf, name, res); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Analysis-Run", res.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

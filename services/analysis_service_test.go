package services

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func runFixtureAnalysis(t *testing.T) *AnalysisResult {
	t.Helper()
	dataPath, countryPath := writeFixtures(t)
	ds, err := LoadDatasetFromFiles(dataPath, countryPath)
	if err != nil {
		t.Fatalf("LoadDatasetFromFiles failed: %v", err)
	}
	return RunAnalysis(ds, testAnalysisConfig())
}

func TestRunAnalysis(t *testing.T) {
	res := runFixtureAnalysis(t)

	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", res.RunID, err)
	}
	if len(res.Overview) != 6 {
		t.Errorf("Expected 6 overview records, got %d", len(res.Overview))
	}

	if len(res.PerCapitaHistory) != 2 || res.PerCapitaHistory[0].CountryCode != "USA" {
		t.Fatalf("Unexpected history series: %+v", res.PerCapitaHistory)
	}
	if n := res.PerCapitaHistory[0].Len(); n != 3 {
		t.Errorf("Expected 3 USA history points, got %d", n)
	}

	if len(res.TopPerCapita) != 2 || res.TopPerCapita[0].CountryCode != "QAT" || res.TopPerCapita[1].CountryCode != "USA" {
		t.Errorf("Unexpected per capita ranking: %+v", res.TopPerCapita)
	}
	if len(res.TopKilotons) != 2 || res.TopKilotons[0].CountryCode != "CHN" {
		t.Errorf("Unexpected kt ranking: %+v", res.TopKilotons)
	}
	if len(res.TopKilotonsSeries) != 2 || res.TopKilotonsSeries[0].CountryCode != "CHN" {
		t.Errorf("Top kt series should follow ranking order: %+v", res.TopKilotonsSeries)
	}

	if res.CombinedShare == nil {
		t.Fatal("Expected a combined transport + electricity share")
	}
	if want := (33.0 + 48.0 + 8.0 + 50.0) / 2; math.Abs(*res.CombinedShare-want) > 1e-9 {
		t.Errorf("CombinedShare = %v, want %v", *res.CombinedShare, want)
	}

	if len(res.Changes) != 4 {
		t.Fatalf("Expected 4 change tables, got %d", len(res.Changes))
	}
	if got := len(res.Changes[0].Changes); got != 3 {
		t.Errorf("Expected 3 per capita changes 2006-2016, got %d", got)
	}
	if got := len(res.Changes[1].Changes); got != 0 {
		t.Errorf("Expected no changes from 1970, got %d", got)
	}
}

func TestRenderChart(t *testing.T) {
	res := runFixtureAnalysis(t)
	signature := []byte("\x89PNG\r\n\x1a\n")

	for _, name := range ChartNames {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderChart(&buf, name, res); err != nil {
				t.Fatalf("RenderChart failed: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), signature) {
				t.Errorf("Output is not a PNG")
			}
		})
	}

	err := RenderChart(&bytes.Buffer{}, "pie", res)
	if !errors.Is(err, ErrUnknownChart) {
		t.Errorf("Expected ErrUnknownChart, got %v", err)
	}
}

func TestWriteOutputs(t *testing.T) {
	res := runFixtureAnalysis(t)
	dir := filepath.Join(t.TempDir(), "out")

	written, err := WriteOutputs(res, dir)
	if err != nil {
		t.Fatalf("WriteOutputs failed: %v", err)
	}
	if len(written) != len(ChartNames)+1 {
		t.Fatalf("Expected %d files, got %v", len(ChartNames)+1, written)
	}
	for _, path := range written {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("Missing output %s: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Output %s is empty", path)
		}
	}
	if filepath.Base(written[len(written)-1]) != ReportFileName {
		t.Errorf("Expected workbook last, got %s", written[len(written)-1])
	}
}

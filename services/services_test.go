package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/database"
)

const indicatorCSV = `CountryCode,CountryName,IndicatorName,IndicatorCode,Year,Value
USA,United States,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,1960,15.8
USA,United States,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2006,19.0
USA,United States,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2016,14.4
CHN,China,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,1960,1.2
CHN,China,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2006,4.9
CHN,China,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2016,7.2
QAT,Qatar,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2006,55.0
QAT,Qatar,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2016,37.3
WLD,World,CO2 emissions (metric tons per capita),EN.ATM.CO2E.PC,2016,99.0
USA,United States,CO2 emissions (kt),EN.ATM.CO2E.KT,2006,5700000
USA,United States,CO2 emissions (kt),EN.ATM.CO2E.KT,2016,4981300
CHN,China,CO2 emissions (kt),EN.ATM.CO2E.KT,2006,6400000
CHN,China,CO2 emissions (kt),EN.ATM.CO2E.KT,2016,9893000
WLD,World,CO2 emissions (kt),EN.ATM.CO2E.KT,2016,35000000
USA,United States,CO2 emissions from transport (% of total fuel combustion),EN.CO2.TRAN.ZS,2014,33.0
USA,United States,CO2 emissions from electricity and heat production (% of total fuel combustion),EN.CO2.ETOT.ZS,2014,48.0
CHN,China,CO2 emissions from transport (% of total fuel combustion),EN.CO2.TRAN.ZS,2014,8.0
CHN,China,CO2 emissions from electricity and heat production (% of total fuel combustion),EN.CO2.ETOT.ZS,2014,50.0
CHN,China,CO2 emissions from residential buildings and commercial and public services (% of total fuel combustion),EN.CO2.BLDG.ZS,2014,
`

const countryCSV = `Country Code,Short Name,Region,Income Group,Currency Unit
USA,United States,North America,High income,U.S. dollar
CHN,China,East Asia & Pacific,Upper middle income,Chinese yuan
QAT,Qatar,Middle East & North Africa,High income,Qatari riyal
WLD,World,,,
`

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		Countries:  []string{"USA", "CHN"},
		Years:      []int{1960, 2016},
		TrendYears: []int{2006, 2016},
		SectorYear: 2014,
		TopN:       2,
	}
}

func writeFixtures(t *testing.T) (dataPath, countryPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "WDIData.csv")
	countryPath = filepath.Join(dir, "WDICountry.csv")
	if err := os.WriteFile(dataPath, []byte(indicatorCSV), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := os.WriteFile(countryPath, []byte(countryCSV), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return dataPath, countryPath
}

func openTestDB(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	if err := database.InitDB(ctx, config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(database.CloseDB)
	return ctx
}

func testContext() context.Context { return context.Background() }

func writeCountryFixture(t *testing.T) string {
	t.Helper()
	_, countryPath := writeFixtures(t)
	return countryPath
}

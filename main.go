// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/database"
	"github.com/gewnthar/co2scope/handlers"
	"github.com/gewnthar/co2scope/services"
)

const usage = `usage: co2scope [analyze|refresh|serve]

  analyze   read the local WDI CSV files and write charts and the workbook (default)
  refresh   download the WDI CSV files and load them into the database
  serve     run the JSON API with a scheduled release check`

func main() {
	log.Println("Starting co2scope...")

	mode := "analyze"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	configPath, err := config.FindConfigPath()
	if err != nil {
		log.Fatalf("Error locating configuration: %v", err)
	}
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := config.EnsureDirs(config.AppConfig); err != nil {
		log.Fatalf("Error preparing directories: %v", err)
	}
	log.Printf("Configuration loaded from %s. Mode: %s, DB driver: %s", configPath, mode, config.AppConfig.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "analyze":
		err = runAnalyze()
	case "refresh":
		err = runRefresh(ctx)
	case "serve":
		err = runServe(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error running %s: %v", mode, err)
	}
}

func runAnalyze() error {
	cfg := config.AppConfig
	ds, err := services.LoadDatasetFromFiles(cfg.LocalCSVPaths.Data, cfg.LocalCSVPaths.Country)
	if err != nil {
		return err
	}
	res := services.RunAnalysis(ds, cfg.Analysis)
	written, err := services.WriteOutputs(res, cfg.Analysis.OutputDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		log.Printf("Wrote %s", path)
	}
	if res.CombinedShare != nil {
		log.Printf("Transport + electricity/heat share of fuel combustion CO2 in %d: %.2f%%", cfg.Analysis.SectorYear, *res.CombinedShare)
	}
	return nil
}

func runRefresh(ctx context.Context) error {
	if err := database.InitDB(ctx, config.AppConfig.Database); err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer database.CloseDB()
	return services.ForceUpdateAll(ctx)
}

func runServe(ctx context.Context) error {
	if err := database.InitDB(ctx, config.AppConfig.Database); err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer database.CloseDB()

	if _, err := services.StartScheduler(ctx, config.AppConfig.DataFreshness.CheckSchedule); err != nil {
		return err
	}

	serverAddr := ":" + config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           handlers.NewMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR Server shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error starting server: %w", err)
	}
	log.Println("Server stopped.")
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Capstone-E1/soilsense_backend/config"
	"github.com/Capstone-E1/soilsense_backend/internal/app"
	"github.com/Capstone-E1/soilsense_backend/internal/logging"
	"github.com/Capstone-E1/soilsense_backend/internal/models"
	"github.com/Capstone-E1/soilsense_backend/internal/services"
	"github.com/Capstone-E1/soilsense_backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	var (
		limit = flag.Int("n", 5, "Number of readings to show from each end")
		file  = flag.String("file", "", "Table file to inspect (overrides DATA_FILE, forces the file source)")
		sheet = flag.String("sheet", cfg.Data.Sheet, "Worksheet name (default: first sheet)")
	)
	flag.Parse()

	if *file != "" {
		cfg.Data.Source = config.SourceFile
		cfg.Data.File = *file
	}
	cfg.Data.Sheet = *sheet

	slog.SetDefault(logging.New(cfg.App, "inspect"))

	ctx := context.Background()
	source, closeSource, err := app.OpenSource(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open source: %v\n", err)
		os.Exit(1)
	}
	defer closeSource()

	dataStore := store.NewStore()
	loader := services.NewLoader(source, services.NewNormalizer(services.DefaultSchema(), cfg.Data.Location))

	result := app.LoadDataset(ctx, loader, dataStore, nil)
	if !result.OK() {
		fmt.Fprintf(os.Stderr, "load failed (%s): %v\n", result.FailureKind(), result.Err)
		closeSource()
		os.Exit(1)
	}

	printSummary(dataStore, *limit)
}

func printSummary(s *store.Store, limit int) {
	status := s.Snapshot()

	fmt.Printf("\nSource:   %s\n", status.Source)
	fmt.Printf("Readings: %d\n", status.Readings)
	if status.FirstTimestamp != nil && status.LastTimestamp != nil {
		fmt.Printf("Range:    %s .. %s\n", status.FirstTimestamp.Format("2006-01-02 15:04:05 MST"), status.LastTimestamp.Format("2006-01-02 15:04:05 MST"))
	}
	if status.Readings == 0 {
		return
	}

	all := s.All()
	if summaries, err := services.SummarizeDepths(all, services.DefaultSchema()); err == nil {
		fmt.Printf("\n%-20s %8s %8s %8s %8s %8s\n", "Column", "Mean", "Median", "Min", "Max", "StdDev")
		for _, sum := range summaries {
			fmt.Printf("%-20s %8.2f %8.2f %8.2f %8.2f %8.2f\n", sum.Column, sum.Mean, sum.Median, sum.Min, sum.Max, sum.StdDev)
		}
	}

	if limit <= 0 || 2*limit >= len(all) {
		printReadings("All readings", all, 0)
		return
	}
	printReadings(fmt.Sprintf("First %d readings", limit), all[:limit], 0)
	printReadings(fmt.Sprintf("Last %d readings", limit), s.Tail(limit), len(all)-limit)
}

func printReadings(title string, readings []models.Reading, offset int) {
	fmt.Printf("\n%s:\n", title)
	fmt.Printf("%-6s %-25s", "#", "Timestamp")
	for i := 0; i < models.DepthCount; i++ {
		fmt.Printf(" %9s", models.DepthName(i))
	}
	fmt.Println()

	for i, r := range readings {
		fmt.Printf("%-6d %-25s", offset+i, r.Timestamp.Format("2006-01-02 15:04:05 MST"))
		for _, v := range r.Depths {
			fmt.Printf(" %9.2f", v)
		}
		fmt.Println()
	}
}

// fieldsctl is a host-side maintenance tool for the schema registry and
// correction history: list, export and import schemas, and inspect
// per-field accuracy statistics.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/corrections"
	"github.com/fieldlens/fieldlens/internal/schema"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(logger)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := schema.NewStore(cfg.Schemas, logger)
	if err != nil {
		logger.Error("open schema store", "error", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		for _, sc := range store.AllSchemas() {
			kind := "user"
			if sc.IsBuiltIn {
				kind = "built-in"
			}
			fmt.Printf("%s  %-24s %-8s vendor=%q usage=%d avg=%.2f\n",
				sc.ID, sc.Name, kind, sc.VendorIdentifier, sc.UsageCount, sc.AverageConfidence)
		}
	case "export":
		if len(os.Args) != 3 {
			usage(logger)
		}
		id, err := uuid.Parse(os.Args[2])
		if err != nil {
			logger.Error("invalid schema id (must be UUID)", "arg", os.Args[2], "error", err)
			os.Exit(2)
		}
		data, err := store.ExportSchema(id)
		if err != nil {
			logger.Error("export schema", "schema_id", id, "error", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "import":
		if len(os.Args) != 3 {
			usage(logger)
		}
		data, err := os.ReadFile(os.Args[2])
		if err != nil {
			logger.Error("read schema file", "path", os.Args[2], "error", err)
			os.Exit(1)
		}
		imported, err := store.ImportSchema(data)
		if err != nil {
			logger.Error("import schema", "error", err)
			os.Exit(1)
		}
		logger.Info("schema imported", "schema_id", imported.ID, "name", imported.Name)
	case "stats":
		history, err := corrections.NewService(cfg.Corrections, store, logger)
		if err != nil {
			logger.Error("open correction history", "error", err)
			os.Exit(1)
		}
		for _, st := range history.AllStats() {
			fmt.Printf("%-22s extractions=%-6d corrections=%-5d minor=%-5d accuracy=%.2f adjust=%+.3f\n",
				st.FieldType, st.TotalExtractions, st.CorrectionsCount,
				st.MinorCorrectionsCount, st.AccuracyRate, st.SuggestedConfidenceAdjustment)
		}
	default:
		usage(logger)
	}
}

func usage(logger *slog.Logger) {
	logger.Error("usage", "cmd", "fieldsctl <list|export <schema-id>|import <file>|stats>")
	os.Exit(2)
}

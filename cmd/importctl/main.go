// Command importctl loads catalog reference data (ingredients, tags) from CSV
// files into the recipe backend's database. It shares the server's
// configuration, so DB_DRIVER/DB_PATH/DB_DSN select the target store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/config"
	"github.com/tbourn/go-recipe-backend/internal/importer"
	"github.com/tbourn/go-recipe-backend/internal/repo"
	"github.com/tbourn/go-recipe-backend/internal/sysutil"
)

// loadFunc is the shape shared by the CSV importers.
type loadFunc func(ctx context.Context, db *gorm.DB, r io.Reader) (*importer.Report, error)

var verbose bool

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "importctl",
		Short:         "Bulk-load catalog reference data from CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print the per-row report as JSON")

	root.AddCommand(
		importCmd("ingredients <file.csv>", "Import ingredients from CSV rows of (name, measurement_unit)", importer.ImportIngredients),
		importCmd("tags <file.csv>", "Import tags from CSV rows of (name, color, slug)", importer.ImportTags),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("import failed")
		os.Exit(1)
	}
}

func importCmd(use, short string, load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], load)
		},
	}
}

func runImport(ctx context.Context, path string, load loadFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.SetLogLevel(cfg.LogLevel)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	target := cfg.DBPath
	if cfg.DBDriver == "postgres" {
		target = cfg.DBDSN
	}
	db, err := repo.Open(cfg.DBDriver, target)
	if err != nil {
		return err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	report, err := load(ctx, db, f)
	if err != nil {
		return err
	}

	log.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Str("file", path).
		Msg("import finished")

	if verbose {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d rows failed", report.Failed, len(report.Rows))
	}
	return nil
}

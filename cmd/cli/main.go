package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"chdash/adapters/excel"
	"chdash/adapters/postgres"
	"chdash/adapters/remote"
	"chdash/internal/config"
	"chdash/internal/dashboard"
	"chdash/internal/dataset"
	"chdash/internal/errors"
	"chdash/internal/migration"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "chdash-cli",
		Short: "Framingham CHD dashboard tooling",
	}

	rootCmd.AddCommand(
		newSummaryCmd(),
		newImportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLoader(timeout time.Duration) *dataset.Loader {
	return dataset.NewLoader(0,
		remote.NewCSVReader(timeout),
		excel.NewFileSource(),
		postgres.NewSource(postgres.ConnectPostgres),
	).WithFetchTimeout(timeout)
}

func newSummaryCmd() *cobra.Command {
	var (
		source  string
		genders []string
		ageMin  int
		ageMax  int
		risk    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Run the aggregation pipeline and print the result as JSON",
		Long: `Load a dataset, apply the dashboard filters and print every panel of the
result as JSON. Omitted filters default to the dataset's observed values.

Example: chdash-cli summary --gender Male --age-min 40 --age-max 60 --risk "Blood Pressure"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for _, g := range genders {
				query.Add("gender", g)
			}
			if cmd.Flags().Changed("age-min") {
				query.Set("age_min", strconv.Itoa(ageMin))
			}
			if cmd.Flags().Changed("age-max") {
				query.Set("age_max", strconv.Itoa(ageMax))
			}
			if risk != "" {
				query.Set("risk", risk)
			}
			return runSummary(cmd.Context(), cmd.OutOrStdout(), newLoader(timeout), source, query)
		},
	}

	cmd.Flags().StringVar(&source, "source", envOr("DATA_SOURCE_URL", config.DefaultSourceURL), "Dataset URL, file path or postgres:// DSN")
	cmd.Flags().StringSliceVar(&genders, "gender", nil, "Gender to include (repeatable)")
	cmd.Flags().IntVar(&ageMin, "age-min", 0, "Lowest age to include")
	cmd.Flags().IntVar(&ageMax, "age-max", 0, "Highest age to include")
	cmd.Flags().StringVar(&risk, "risk", "", "Risk factor: Smoking, Body Weight or Blood Pressure")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Fetch timeout for remote sources")

	return cmd
}

func runSummary(ctx context.Context, out io.Writer, loader dashboard.TableLoader, source string, query url.Values) error {
	view, err := dashboard.NewService(loader, source, nil, nil).Compute(ctx, query)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func newImportCmd() *cobra.Command {
	var (
		source      string
		databaseURL string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a dataset into the framingham_subjects table",
		Long: `Migrate the schema, then replace the contents of framingham_subjects with
the subjects read from --source. Serve the table afterwards with
DATA_SOURCE_URL set to the same DSN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.ConfigInvalid("--database-url or DATABASE_URL is required")
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), newLoader(timeout), source, databaseURL)
		},
	}

	cmd.Flags().StringVar(&source, "source", envOr("DATA_SOURCE_URL", config.DefaultSourceURL), "Dataset URL or file path")
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres DSN")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Fetch timeout for remote sources")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, loader *dataset.Loader, source, databaseURL string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	table, err := loader.Load(ctx, source)
	if err != nil {
		return err
	}

	db, err := postgres.ConnectPostgres(ctx, databaseURL)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer db.Close()

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return err
	}
	if err := postgres.NewSubjectRepository(db).ReplaceAll(ctx, table.Rows()); err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d subjects from %s\n", table.Len(), source)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

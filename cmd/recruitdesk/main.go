package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/RecruitDesk/internal/app"
	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/auth"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
	"github.com/dharsanguruparan/RecruitDesk/internal/database"
	"github.com/dharsanguruparan/RecruitDesk/internal/export"
	"github.com/dharsanguruparan/RecruitDesk/internal/ingest"
	"github.com/dharsanguruparan/RecruitDesk/internal/processing"
	"github.com/dharsanguruparan/RecruitDesk/internal/s3storage"
)

var composeFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "recruitdesk: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recruitdesk",
		Short: "RecruitDesk admin and development CLI",
		Long: `recruitdesk prepares the database and object store, mints development tokens,
ingests or exports candidates from the command line, and drives the docker compose stack.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&composeFile, "compose-file", "f", "docker-compose.yml", "Compose file to use for stack commands")
	cmd.AddCommand(
		newMigrateCmd(),
		newBucketsCmd(),
		newTokenCmd(),
		newIngestCmd(),
		newExportCmd(),
		newStackCmd(),
		newTestCmd(),
	)
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app.SetupLogging(cfg)
	return cfg, nil
}

func newMigrateCmd() *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the enum types, tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), database.SchemaSQL())
				return nil
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := database.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the schema SQL instead of applying it")
	return cmd
}

func newBucketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "Create the resume bucket if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := s3storage.New(cfg)
			if err != nil {
				return err
			}
			if err := store.EnsureBucket(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bucket %q ready\n", cfg.ResumeBucket)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var user string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := auth.NewAuthenticator(cfg.JWTSecret, nil).IssueToken(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newIngestCmd() *cobra.Command {
	var user string
	var workers int
	cmd := &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Upload resumes and print the extracted profiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]ingest.Upload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				uploads = append(uploads, ingest.Upload{
					FileName:    filepath.Base(path),
					ContentType: "application/pdf",
					Data:        data,
				})
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if workers <= 0 {
				workers = cfg.WorkerConcurrency
			}
			ctx := auth.WithUserID(cmd.Context(), user)
			outcomes := processing.New(a.Resumes, workers).Run(ctx, uploads)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", o.FileName, apperr.Message(o.Err))
					continue
				}
				if err := enc.Encode(o.Result); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d resumes failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Owner of the uploaded resumes")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent ingestions (defaults to RECRUITDESK_WORKERS)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExportCmd() *cobra.Command {
	var user, out, lang string
	var filter export.Filter
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's candidates to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := auth.WithUserID(cmd.Context(), user)
			file, err := a.Exports.Export(ctx, filter, export.Options{DateLayout: export.DateLayout(lang)})
			if err != nil {
				return err
			}
			if out == "" {
				out = file.Name
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d candidates to %s\n", file.Count, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Owner whose candidates are exported")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (defaults to the generated file name)")
	cmd.Flags().StringVar(&lang, "lang", "en-US", "Locale for date cells")
	cmd.Flags().StringSliceVar(&filter.IDs, "ids", nil, "Only these candidate ids")
	cmd.Flags().StringVar(&filter.Name, "name", "", "Name contains")
	cmd.Flags().StringVar(&filter.JobType, "job-type", "", "Exact job type")
	cmd.Flags().StringVar(&filter.CurrentCompany, "company", "", "Current company contains")
	cmd.Flags().StringVar(&filter.School, "school", "", "School contains")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Exact status")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Drive the docker compose stack (postgres, minio, redis, server, worker)",
	}
	cmd.AddCommand(newUpCmd(), newDownCmd(), newLogsCmd())
	return cmd
}

func newUpCmd() *cobra.Command {
	var detach bool
	var skipBuild bool
	cmd := &cobra.Command{
		Use:   "up [service...]",
		Short: "Start the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			composeArgs := []string{"compose", "-f", composeFile, "up"}
			if !skipBuild {
				composeArgs = append(composeArgs, "--build")
			}
			if detach {
				composeArgs = append(composeArgs, "-d")
			}
			composeArgs = append(composeArgs, args...)
			return runCommand(cmd.Context(), "docker", composeArgs...)
		},
	}
	cmd.Flags().BoolVarP(&detach, "detached", "d", true, "Run docker compose in detached mode")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Skip rebuilding images before starting")
	return cmd
}

func newDownCmd() *cobra.Command {
	var removeVolumes bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			composeArgs := []string{"compose", "-f", composeFile, "down"}
			if removeVolumes {
				composeArgs = append(composeArgs, "-v")
			}
			return runCommand(cmd.Context(), "docker", composeArgs...)
		},
	}
	cmd.Flags().BoolVarP(&removeVolumes, "volumes", "v", false, "Remove stack volumes")
	return cmd
}

func newLogsCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs [service...]",
		Short: "Show service logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			composeArgs := []string{"compose", "-f", composeFile, "logs"}
			if follow {
				composeArgs = append(composeArgs, "--follow")
			}
			composeArgs = append(composeArgs, args...)
			return runCommand(cmd.Context(), "docker", composeArgs...)
		},
	}
	cmd.Flags().BoolVar(&follow, "follow", false, "Stream logs continuously")
	return cmd
}

func newTestCmd() *cobra.Command {
	var race bool
	var integration string
	cmd := &cobra.Command{
		Use:   "test [packages]",
		Short: "Run Go tests (defaults to ./...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs := args
			if len(pkgs) == 0 {
				pkgs = []string{"./..."}
			}
			goArgs := []string{"test"}
			if race {
				goArgs = append(goArgs, "-race")
			}
			goArgs = append(goArgs, pkgs...)
			if integration != "" {
				os.Setenv("RECRUITDESK_TEST_DATABASE_URL", integration)
			}
			return runCommand(cmd.Context(), "go", goArgs...)
		},
	}
	cmd.Flags().BoolVar(&race, "race", false, "Enable Go race detector")
	cmd.Flags().StringVar(&integration, "database", "", "Postgres URL for repository integration tests")
	return cmd
}

func runCommand(ctx context.Context, name string, args ...string) error {
	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin
	return execCmd.Run()
}

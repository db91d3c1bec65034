package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/database"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository/postgres"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/email"
	"github.com/itaymdigi/coldtherapylanding/pkg/hash"
	"github.com/itaymdigi/coldtherapylanding/pkg/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "studioctl",
		Short:         "Administrative tasks for the cold therapy studio backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newUsersCommand())
	cmd.AddCommand(newStorageCommand())
	cmd.AddCommand(newPackagesCommand())
	cmd.AddCommand(newMaintenanceCommand())
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withDB loads configuration, opens the database and hands both to fn.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error) error {
	ctx := commandContext(cmd)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, cfg, db)
}

func groupCommand(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(children...)
	return cmd
}

func newMigrateCommand() *cobra.Command {
	step := func(use, short string, fn func(context.Context, *sqlx.DB) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd, func(ctx context.Context, _ *config.Config, db *sqlx.DB) error {
					return fn(ctx, db)
				})
			},
		}
	}

	return groupCommand("migrate", "Database schema migrations",
		step("up", "Apply all pending migrations", database.Migrate),
		step("down", "Roll back the most recent migration", database.Rollback),
		step("status", "Print the state of every migration", database.Status),
	)
}

func newUsersCommand() *cobra.Command {
	var (
		emailAddr string
		password  string
	)

	resetPassword := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a user's password and sign out all of their sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error {
				auth := service.NewAuthService(
					postgres.NewUserRepository(db),
					postgres.NewSessionTokenRepository(db),
					hash.NewHasher(hash.DefaultParams),
					email.NewLogMailer(),
					metrics.New(),
					cfg,
				)
				revoked, err := auth.SetPassword(ctx, emailAddr, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s, %d session(s) revoked\n", emailAddr, revoked)
				return nil
			})
		},
	}
	resetPassword.Flags().StringVar(&emailAddr, "email", "", "Account email address")
	resetPassword.Flags().StringVar(&password, "password", "", "New password (at least 8 characters)")
	_ = resetPassword.MarkFlagRequired("email")
	_ = resetPassword.MarkFlagRequired("password")

	repairCounters := &cobra.Command{
		Use:   "repair-counters",
		Short: "Recompute total sessions and duration from the practice log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *sqlx.DB) error {
				n, err := maintenanceService(db).RepairCounters(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d user(s) repaired\n", n)
				return nil
			})
		},
	}

	return groupCommand("users", "User account maintenance", resetPassword, repairCounters)
}

func newStorageCommand() *cobra.Command {
	ensureBucket := &cobra.Command{
		Use:   "ensure-bucket",
		Short: "Create the media bucket if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			client, err := storage.NewClient(ctx, storage.Config{
				Endpoint:       cfg.Storage.Endpoint,
				Region:         cfg.Storage.Region,
				AccessKey:      cfg.Storage.AccessKey,
				SecretKey:      cfg.Storage.SecretKey,
				Bucket:         cfg.Storage.Bucket,
				ForcePathStyle: cfg.Storage.ForcePathStyle,
			})
			if err != nil {
				return fmt.Errorf("s3 client: %w", err)
			}
			created, err := client.EnsureBucket(ctx)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "bucket %s created\n", client.Bucket())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "bucket %s already exists\n", client.Bucket())
			}
			return nil
		},
	}

	return groupCommand("storage", "Object storage setup", ensureBucket)
}

func newPackagesCommand() *cobra.Command {
	var file string

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert the price catalogue from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			return withDB(cmd, func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error {
				catalog := service.NewCatalogService(postgres.NewPackageRepository(db), cfg.Payments.Currency)
				n, err := catalog.Import(ctx, f)
				if err != nil {
					return fmt.Errorf("imported %d package(s) before failing: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d package(s) imported\n", n)
				return nil
			})
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "Path to packages.yaml")
	_ = importCmd.MarkFlagRequired("file")

	return groupCommand("packages", "Price catalogue management", importCmd)
}

func newMaintenanceCommand() *cobra.Command {
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Expire ended subscriptions and delete expired session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *sqlx.DB) error {
				result, err := maintenanceService(db).Sweep(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d subscription(s) expired, %d token(s) deleted\n",
					result.ExpiredSubscriptions, result.DeletedTokens)
				return nil
			})
		},
	}

	return groupCommand("maintenance", "Periodic housekeeping", prune)
}

func maintenanceService(db *sqlx.DB) *service.MaintenanceService {
	return service.NewMaintenanceService(
		postgres.NewSubscriptionRepository(db),
		postgres.NewSessionTokenRepository(db),
		postgres.NewUserRepository(db),
		metrics.New(),
	)
}

// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/reset"
	"github.com/catclube/registry/internal/server"
	"github.com/catclube/registry/internal/storage"
	"github.com/catclube/registry/internal/user"
	"github.com/catclube/registry/migrations"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "catclubctl",
	Short:         "Operator tasks for the cat club registry",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "", "path to an optional YAML config file",
	)

	rootCmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		promoteAdminCmd(),
		purgeTokensCmd(),
		keygenCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

// openBackend connects to the configured database. The memory driver is
// rejected since nothing it writes outlives the command.
func openBackend(ctx context.Context) (*config.Config, *storage.Backend, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver != config.StorageDriverPostgres {
		return nil, nil, fmt.Errorf(
			"catclubctl needs DATABASE_DRIVER=%s, got %q",
			config.StorageDriverPostgres, cfg.Database.Driver,
		)
	}

	backend, err := storage.Open(ctx, cfg.Database, false)
	if err != nil {
		return nil, nil, err
	}
	return cfg, backend, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, backend, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close() //nolint:errcheck

			return migrations.Apply(cmd.Context(), backend.DB.DB)
		},
	}
}

func seedCmd() *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample breeds, colors and a demo administrator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, backend, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close() //nolint:errcheck

			validate, err := server.NewValidator()
			if err != nil {
				return err
			}

			report, err := seed(cmd.Context(), backend, validate, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"breeds added: %d\ncolors added: %d\nadmin created: %t\n",
				report.Breeds, report.Colors, report.AdminCreated,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", defaultAdminEmail, "demo administrator email")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", defaultAdminPassword, "demo administrator password")
	cmd.Flags().BoolVar(&opts.SkipAdmin, "skip-admin", false, "do not create the demo administrator")

	return cmd
}

func promoteAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote-admin <email>",
		Short: "Grant administrator rights to a registered member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, backend, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close() //nolint:errcheck

			validate, err := server.NewValidator()
			if err != nil {
				return err
			}

			promoted, err := user.NewService(backend.Users, validate).SetAdmin(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("promote %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an administrator\n", promoted.Email)
			return nil
		},
	}
}

func purgeTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete password reset tokens that can no longer be redeemed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, backend, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close() //nolint:errcheck

			svc := reset.NewService(
				backend.ResetTx,
				backend.ResetTokens,
				backend.Users,
				nil,
				cfg.Reset,
			)

			removed, err := svc.Purge(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("reset tokens purged", "count", removed)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d tokens\n", removed)
			return nil
		},
	}
}

func keygenCmd() *cobra.Command {
	var privatePath, publicPath string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Write a new ES256 key pair for signing sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")

	return cmd
}

// arelyzctl is the admin CLI: seed operators, inspect the arqueo history and
// export receipts without the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"arelyz/internal/config"
	"arelyz/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "arelyzctl",
	Short:         "Administración de Arelyz Salon (usuarios, historial de arqueos, trabajos fallidos)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := zerolog.InfoLevel
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(level)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
	rootCmd.AddCommand(seedUserCmd, historialCmd, exportarCmd, dlqCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// connect loads the config and opens the database (migrating it).
func connect() (*config.Config, *gorm.DB, *time.Location, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres: %w", err)
	}
	return cfg, db, loc, nil
}

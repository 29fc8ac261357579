package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ponyo877/pushy/server/adaptor"
	"github.com/ponyo877/pushy/server/repository"
	"github.com/ponyo877/pushy/server/usecase"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pushy",
	Short: "Minimal publish/subscribe broker",
	Long: `pushy accepts line-oriented text connections. Clients register a channel
with /reg, authenticate with /id, follow other channels with /sub and publish
to their followers with /pub.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	bindFlags(rootCmd)
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	rp := repository.NewRepository(db)
	if err := rp.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	uc := usecase.NewUsecase(rp)

	ln, err := adaptor.Listen(cfg)
	if err != nil {
		return err
	}
	ad := adaptor.NewAdaptor(uc, cfg, logger)
	return ad.Serve(ctx, ln)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "pushy:", err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/frahmantamala/business-management/internal/revalidate"
	"github.com/frahmantamala/business-management/pkg/logger"
	"github.com/spf13/cobra"
)

var revalidateCmd = &cobra.Command{
	Use:   "revalidate",
	Short: "Stale path commands",
	Long:  `Broadcast stale paths to every running instance, or watch the broadcasts`,
}

var revalidatePublishCmd = &cobra.Command{
	Use:   "publish [path...]",
	Short: "Mark paths stale on every instance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRevalidator(func(ctx context.Context, svc *revalidate.Service, bus *events.EventBus) error {
			svc.Revalidate(ctx, args...)
			bus.Wait()
			logger.LoggerWrapper().Info("Stale paths published", "paths", args)
			return nil
		})
	},
}

var revalidateWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print stale paths announced by other instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRevalidator(func(ctx context.Context, svc *revalidate.Service, bus *events.EventBus) error {
			lg := logger.LoggerWrapper()
			bus.Subscribe(events.EventTypePathsStale, func(ctx context.Context, e events.Event) error {
				if stale, ok := e.(*events.PathsStaleEvent); ok {
					lg.Info("Stale paths received", "origin", stale.Origin, "paths", stale.Paths)
				}
				return nil
			})

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return svc.Listen(ctx)
		})
	},
}

func withRevalidator(fn func(ctx context.Context, svc *revalidate.Service, bus *events.EventBus) error) error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled() {
		return fmt.Errorf("redis is not configured")
	}
	lg := logger.Configure(os.Stdout, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	client := revalidate.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer client.Close()
	broker := revalidate.NewRedisBroker(client, cfg.Redis.Channel)

	ctx := context.Background()
	if err := broker.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	bus := events.NewEventBus(lg)
	return fn(ctx, revalidate.NewService(bus, broker, lg), bus)
}

func init() {
	revalidateCmd.AddCommand(revalidatePublishCmd)
	revalidateCmd.AddCommand(revalidateWatchCmd)

	rootCmd.AddCommand(revalidateCmd)
}

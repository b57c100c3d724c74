package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rollkit/disputes/chain"
	"github.com/rollkit/disputes/chain/memchain"
	"github.com/rollkit/disputes/config"
	"github.com/rollkit/disputes/coordinator"
	"github.com/rollkit/disputes/libs/service"
	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/ordering"
	"github.com/rollkit/disputes/rpc"
)

// NewRunCmd returns the command that runs the node against a simulated relay chain.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"start", "node"},
		Short:   "Run the dispute coordinator against a simulated relay chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := cfg.GetViperConfig(viper.GetViper()); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := log.NewLogger(cmd.OutOrStdout(), cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			// Stop upon receiving SIGTERM or CTRL-C.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, cfg, logger)
		},
	}

	config.AddFlags(cmd)
	return cmd
}

// metricsProvider returns Prometheus backed Metrics if Prometheus is enabled.
// Otherwise, it returns no-op Metrics.
func metricsProvider(conf *config.InstrumentationConfig) *ordering.Metrics {
	if conf.IsPrometheusEnabled() {
		return ordering.PrometheusMetrics(conf.Namespace, "chain_id", "simulated")
	}
	return ordering.NopMetrics()
}

func runNode(ctx context.Context, cfg config.Config, logger log.Logger) error {
	relayChain, err := memchain.NewInMemory(ctx)
	if err != nil {
		return fmt.Errorf("failed to create relay chain: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	channels := chain.NewChannels(cfg.Ordering.SignalBuffer)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- chain.Serve(ctx, channels, relayChain, logger.With("module", "chain"))
	}()
	defer func() {
		cancel()
		<-serveErr
	}()

	genesis := relayChain.Genesis()
	coord, err := coordinator.New(ctx, cfg.Ordering, chain.NewClient(channels), genesis.ActivatedLeaf(),
		logger.With("module", "coordinator"), metricsProvider(cfg.Instrumentation))
	if err != nil {
		return fmt.Errorf("failed to create dispute coordinator: %w", err)
	}

	services := []service.Service{coord}
	if cfg.RPC.IsEnabled() {
		services = append(services, rpc.NewServer(coord, cfg.RPC, logger.With("module", "rpc")))
	}
	if cfg.Instrumentation.IsPrometheusEnabled() {
		services = append(services, rpc.NewMetricsServer(cfg.Instrumentation, logger.With("module", "metrics")))
	}
	for i, s := range services {
		if err := s.Start(ctx); err != nil {
			stopServices(services[:i], logger)
			return fmt.Errorf("failed to start %s: %w", s, err)
		}
	}
	defer stopServices(services, logger)
	logger.Info("Started node")

	return newSimulator(relayChain, coord, cfg.Sim, logger.With("module", "sim")).run(ctx)
}

func stopServices(services []service.Service, logger log.Logger) {
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(context.Background()); err != nil {
			logger.Error("unable to stop service", "service", services[i], "error", err)
		}
	}
}

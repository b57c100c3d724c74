package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rollkit/disputes/log"
)

const (
	// FlagLogLevel is a flag for the log level
	FlagLogLevel = "log_level"
	// FlagLogFormat is a flag for the log format
	FlagLogFormat = "log_format"
	// FlagMaxAncestryDepth is a flag for the maximum number of ancestors walked per leaf
	FlagMaxAncestryDepth = "ordering.max_ancestry_depth"
	// FlagRelayParentCacheSize is a flag for the size of the relay parent number cache
	FlagRelayParentCacheSize = "ordering.relay_parent_cache_size"
	// FlagSignalBuffer is a flag for the size of the coordinator signal queue
	FlagSignalBuffer = "ordering.signal_buffer"
	// FlagRPCListenAddress is a flag for the RPC listen address
	FlagRPCListenAddress = "rpc.laddr"
	// FlagRPCCORSAllowedOrigins is a flag for the origins allowed to query the RPC server
	FlagRPCCORSAllowedOrigins = "rpc.cors_allowed_origins"
	// FlagRPCMaxOpenConnections is a flag for the maximum number of RPC connections
	FlagRPCMaxOpenConnections = "rpc.max_open_connections"
	// FlagPrometheus is a flag for enabling Prometheus metrics
	FlagPrometheus = "instrumentation.prometheus"
	// FlagPrometheusListenAddr is a flag for the Prometheus listen address
	FlagPrometheusListenAddr = "instrumentation.prometheus_listen_addr"
	// FlagBlockTime is a flag for the simulated relay chain block time
	FlagBlockTime = "sim.block_time"
	// FlagForkChance is a flag for the probability that a simulated block forks
	FlagForkChance = "sim.fork_chance"
	// FlagCandidatesPerBlock is a flag for the number of candidates included per simulated block
	FlagCandidatesPerBlock = "sim.candidates_per_block"
	// FlagFinalityLag is a flag for the distance between the best and the finalized simulated block
	FlagFinalityLag = "sim.finality_lag"
	// FlagBlocks is a flag for the number of simulated blocks, 0 runs until interrupted
	FlagBlocks = "sim.blocks"
)

// Config stores the dispute ordering node configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Ordering        OrderingConfig         `mapstructure:"ordering"`
	RPC             RPCConfig              `mapstructure:"rpc"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
	Sim             SimConfig              `mapstructure:"sim"`
}

// OrderingConfig consists of all parameters required by the ordering provider and the coordinator.
type OrderingConfig struct {
	// MaxAncestryDepth bounds the ancestry walked and retained for every leaf.
	MaxAncestryDepth uint32 `mapstructure:"max_ancestry_depth"`
	// RelayParentCacheSize is the number of relay parent block numbers kept after eviction.
	RelayParentCacheSize int `mapstructure:"relay_parent_cache_size"`
	// SignalBuffer is the capacity of the coordinator signal queue.
	SignalBuffer int `mapstructure:"signal_buffer"`
}

// SimConfig drives the simulated relay chain of the run command.
type SimConfig struct {
	// BlockTime defines how often new blocks are produced
	BlockTime          time.Duration `mapstructure:"block_time"`
	ForkChance         float64       `mapstructure:"fork_chance"`
	CandidatesPerBlock int           `mapstructure:"candidates_per_block"`
	FinalityLag        uint32        `mapstructure:"finality_lag"`
	Blocks             uint64        `mapstructure:"blocks"`
}

// GetViperConfig reads configuration parameters from Viper instance.
func (c *Config) GetViperConfig(v *viper.Viper) error {
	c.LogLevel = v.GetString(FlagLogLevel)
	c.LogFormat = v.GetString(FlagLogFormat)
	c.Ordering.MaxAncestryDepth = v.GetUint32(FlagMaxAncestryDepth)
	c.Ordering.RelayParentCacheSize = v.GetInt(FlagRelayParentCacheSize)
	c.Ordering.SignalBuffer = v.GetInt(FlagSignalBuffer)
	c.RPC.ListenAddress = v.GetString(FlagRPCListenAddress)
	c.RPC.CORSAllowedOrigins = v.GetStringSlice(FlagRPCCORSAllowedOrigins)
	c.RPC.MaxOpenConnections = v.GetInt(FlagRPCMaxOpenConnections)
	if c.Instrumentation == nil {
		c.Instrumentation = DefaultInstrumentationConfig()
	}
	c.Instrumentation.Prometheus = v.GetBool(FlagPrometheus)
	c.Instrumentation.PrometheusListenAddr = v.GetString(FlagPrometheusListenAddr)
	c.Sim.BlockTime = v.GetDuration(FlagBlockTime)
	c.Sim.ForkChance = v.GetFloat64(FlagForkChance)
	c.Sim.CandidatesPerBlock = v.GetInt(FlagCandidatesPerBlock)
	c.Sim.FinalityLag = v.GetUint32(FlagFinalityLag)
	c.Sim.Blocks = v.GetUint64(FlagBlocks)
	return c.ValidateBasic()
}

// AddFlags adds dispute ordering specific configuration options to cobra Command.
func AddFlags(cmd *cobra.Command) {
	def := DefaultConfig()
	cmd.Flags().Uint32(FlagMaxAncestryDepth, def.Ordering.MaxAncestryDepth, "maximum number of ancestors indexed per leaf")
	cmd.Flags().Int(FlagRelayParentCacheSize, def.Ordering.RelayParentCacheSize, "number of relay parent block numbers to cache")
	cmd.Flags().Int(FlagSignalBuffer, def.Ordering.SignalBuffer, "capacity of the coordinator signal queue")
	cmd.Flags().String(FlagRPCListenAddress, def.RPC.ListenAddress, "RPC listen address, empty disables the RPC server")
	cmd.Flags().StringSlice(FlagRPCCORSAllowedOrigins, def.RPC.CORSAllowedOrigins, "origins allowed to query the RPC server")
	cmd.Flags().Int(FlagRPCMaxOpenConnections, def.RPC.MaxOpenConnections, "maximum number of simultaneous RPC connections (0 - unlimited)")
	cmd.Flags().Bool(FlagPrometheus, def.Instrumentation.Prometheus, "serve Prometheus metrics")
	cmd.Flags().String(FlagPrometheusListenAddr, def.Instrumentation.PrometheusListenAddr, "Prometheus listen address")
	cmd.Flags().Duration(FlagBlockTime, def.Sim.BlockTime, "simulated relay chain block time")
	cmd.Flags().Float64(FlagForkChance, def.Sim.ForkChance, "probability that a simulated block starts a fork")
	cmd.Flags().Int(FlagCandidatesPerBlock, def.Sim.CandidatesPerBlock, "candidates included in every simulated block")
	cmd.Flags().Uint32(FlagFinalityLag, def.Sim.FinalityLag, "distance between the best and the finalized simulated block")
	cmd.Flags().Uint64(FlagBlocks, def.Sim.Blocks, "number of blocks to simulate (0 - until interrupted)")
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (c *Config) ValidateBasic() error {
	switch c.LogFormat {
	case "", log.FormatPlain, log.FormatJSON:
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	if c.Ordering.MaxAncestryDepth == 0 {
		return errors.New("max_ancestry_depth must be positive")
	}
	if c.Ordering.RelayParentCacheSize <= 0 {
		return errors.New("relay_parent_cache_size must be positive")
	}
	if c.Ordering.SignalBuffer < 0 {
		return errors.New("signal_buffer can't be negative")
	}
	if err := c.RPC.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [rpc] section: %w", err)
	}
	if c.Instrumentation != nil {
		if err := c.Instrumentation.ValidateBasic(); err != nil {
			return fmt.Errorf("error in [instrumentation] section: %w", err)
		}
	}
	if c.Sim.ForkChance < 0 || c.Sim.ForkChance > 1 {
		return errors.New("fork_chance must be between 0 and 1")
	}
	if c.Sim.CandidatesPerBlock < 0 {
		return errors.New("candidates_per_block can't be negative")
	}
	return nil
}

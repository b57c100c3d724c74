package config

import (
	"time"

	"github.com/rollkit/disputes/log"
)

const (
	// Version is the current version of the dispute ordering node
	// Please keep updated with each new release
	Version = "0.1.0"
	// DefaultRPCListenAddress is the default address of the RPC server
	DefaultRPCListenAddress = "127.0.0.1:26657"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: log.FormatPlain,
		Ordering: OrderingConfig{
			MaxAncestryDepth:     256,
			RelayParentCacheSize: 1024,
			SignalBuffer:         64,
		},
		RPC: RPCConfig{
			ListenAddress:      DefaultRPCListenAddress,
			CORSAllowedOrigins: []string{"*"},
			MaxOpenConnections: 900,
		},
		Instrumentation: DefaultInstrumentationConfig(),
		Sim: SimConfig{
			BlockTime:          1 * time.Second,
			ForkChance:         0.1,
			CandidatesPerBlock: 2,
			FinalityLag:        3,
		},
	}
}

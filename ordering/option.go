package ordering

import (
	"github.com/rollkit/disputes/log"
)

const (
	// DefaultMaxAncestryDepth is the default number of ancestors walked and retained per leaf.
	DefaultMaxAncestryDepth uint32 = 256

	// DefaultRelayParentCacheSize is the default number of relay parent block numbers cached.
	DefaultRelayParentCacheSize = 1024
)

// Option is a function that configures the Provider.
type Option func(*Provider)

// WithLogger sets the logger used by the Provider.
func WithLogger(logger log.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics reported by the Provider.
func WithMetrics(metrics *Metrics) Option {
	return func(p *Provider) {
		p.metrics = metrics
	}
}

// WithMaxAncestryDepth bounds the ancestry walk of every activated leaf.
// It also bounds retention: a block more than depth parent links below every
// tracked leaf is evicted, even though those leaves still descend from it.
func WithMaxAncestryDepth(depth uint32) Option {
	return func(p *Provider) {
		p.maxDepth = depth
	}
}

// WithRelayParentCacheSize sets the size of the relay parent block number cache.
func WithRelayParentCacheSize(size int) Option {
	return func(p *Provider) {
		p.cacheSize = size
	}
}

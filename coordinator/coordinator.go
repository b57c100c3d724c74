package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/rollkit/disputes/chain"
	"github.com/rollkit/disputes/config"
	"github.com/rollkit/disputes/libs/service"
	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/ordering"
	"github.com/rollkit/disputes/types"
)

// ErrConcluded is returned when sending a signal to a Coordinator whose signal loop has ended,
// either on ConcludeSignal or because the Coordinator was stopped.
var ErrConcluded = errors.New("coordinator concluded")

// Coordinator owns the ordering provider of the node.
//
// Signals are handled one at a time, in the order they were sent. Queries are
// answered from the provider's index and may be issued from any goroutine.
type Coordinator struct {
	service.BaseService

	provider *ordering.Provider
	logger   log.Logger

	signals   chan Signal
	processed chan Processed
	concluded chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
}

// New creates a Coordinator and indexes the ancestry of the initial leaf.
func New(
	ctx context.Context,
	conf config.OrderingConfig,
	source chain.Source,
	initial types.ActivatedLeaf,
	logger log.Logger,
	metrics *ordering.Metrics,
) (*Coordinator, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if metrics == nil {
		metrics = ordering.NopMetrics()
	}
	provider, err := ordering.New(ctx, source, initial,
		ordering.WithLogger(logger.With("module", "ordering")),
		ordering.WithMetrics(metrics),
		ordering.WithMaxAncestryDepth(conf.MaxAncestryDepth),
		ordering.WithRelayParentCacheSize(conf.RelayParentCacheSize),
	)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		provider:  provider,
		logger:    logger,
		signals:   make(chan Signal, conf.SignalBuffer),
		processed: make(chan Processed, conf.SignalBuffer+1),
		concluded: make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	c.BaseService = *service.NewBaseService(logger, "DisputeCoordinator", c)
	return c, nil
}

// OnStart starts the signal loop. The loop ends when ctx is cancelled or on ConcludeSignal.
// A Coordinator whose loop has ended cannot be started again.
func (c *Coordinator) OnStart(ctx context.Context) error {
	select {
	case <-c.stopped:
		return ErrConcluded
	default:
	}
	go c.loop(ctx)
	return nil
}

// Send enqueues a signal. It blocks while the queue is full.
func (c *Coordinator) Send(ctx context.Context, sig Signal) error {
	select {
	case <-c.stopped:
		return ErrConcluded
	default:
	}
	select {
	case c.signals <- sig:
		return nil
	case <-c.stopped:
		return ErrConcluded
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processed returns a channel receiving the outcome of every handled signal.
// Outcomes are dropped when nobody keeps up with the channel.
func (c *Coordinator) Processed() <-chan Processed {
	return c.processed
}

// Concluded is closed once a ConcludeSignal was handled.
func (c *Coordinator) Concluded() <-chan struct{} {
	return c.concluded
}

func (c *Coordinator) loop(ctx context.Context) {
	defer c.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-c.signals:
			err := c.handle(ctx, sig)
			select {
			case c.processed <- Processed{Signal: sig, Err: err}:
			default:
			}
			if _, ok := sig.(ConcludeSignal); ok {
				c.logger.Info("received conclude signal")
				c.stop()
				close(c.concluded)
				return
			}
		}
	}
}

func (c *Coordinator) stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

func (c *Coordinator) handle(ctx context.Context, sig Signal) error {
	switch s := sig.(type) {
	case ActiveLeavesSignal:
		if s.Update.IsEmpty() {
			return nil
		}
		if err := c.provider.ProcessActiveLeavesUpdate(ctx, s.Update); err != nil {
			c.logger.Error("ordering information unavailable for some leaves", "error", err)
			return err
		}
	case BlockFinalizedSignal:
		if err := c.provider.ProcessFinalizedBlock(s.Finalized); err != nil {
			c.logger.Error("failed to process finalized block", "number", s.Finalized.Number, "error", err)
			return err
		}
	}
	return nil
}

// CandidateComparator returns the comparator of the candidate, or nil if its inclusion is not known.
func (c *Coordinator) CandidateComparator(receipt *types.CandidateReceipt) (*ordering.CandidateComparator, error) {
	return c.provider.CandidateComparator(receipt)
}

// ComparatorByHash returns the comparator of the candidate, or nil if its inclusion is not known.
func (c *Coordinator) ComparatorByHash(hash types.CandidateHash) (*ordering.CandidateComparator, error) {
	return c.provider.ComparatorByHash(hash)
}

// Prioritize orders disputed candidates from most to least urgent.
// Candidates of unknown inclusion come last.
func (c *Coordinator) Prioritize(receipts []types.CandidateReceipt) ([]types.CandidateReceipt, error) {
	return c.provider.SortCandidates(receipts)
}

// Leaves returns the leaves tracked by the ordering provider.
func (c *Coordinator) Leaves() []types.HashNumber {
	return c.provider.Leaves()
}

// Stats returns the size of the inclusion index.
func (c *Coordinator) Stats() ordering.Stats {
	return c.provider.Stats()
}

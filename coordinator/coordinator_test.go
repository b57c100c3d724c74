package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rollkit/disputes/chain"
	"github.com/rollkit/disputes/chain/memchain"
	"github.com/rollkit/disputes/config"
	test "github.com/rollkit/disputes/log/test"
	"github.com/rollkit/disputes/ordering"
	"github.com/rollkit/disputes/test/mocks"
	"github.com/rollkit/disputes/types"
)

func waitProcessed(t *testing.T, c *Coordinator) Processed {
	t.Helper()
	select {
	case p := <-c.Processed():
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not processed")
	}
	return Processed{}
}

func startCoordinator(t *testing.T, source chain.Source, initial types.ActivatedLeaf) *Coordinator {
	t.Helper()
	c, err := New(context.Background(), config.DefaultConfig().Ordering, source, initial, test.NewTestLogger(t), nil)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() {
		if c.IsRunning() {
			require.NoError(t, c.Stop(context.Background()))
		}
	})
	return c
}

func TestCoordinatorProcessesSignalsInOrder(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mc, err := memchain.NewInMemory(ctx)
	require.NoError(err)

	genesis := mc.Genesis()
	c := startCoordinator(t, mc, genesis.ActivatedLeaf())

	var receipts []types.CandidateReceipt
	var signals []Signal
	parent := &genesis
	for i := 0; i < 5; i++ {
		r := types.GetRandomCandidateReceipt(parent.Hash)
		h, err := mc.BuildBlock(ctx, parent.Hash, []types.CandidateEvent{types.NewIncludedEvent(r)})
		require.NoError(err)
		receipts = append(receipts, r)
		signals = append(signals, ActiveLeavesSignal{Update: types.ActiveLeavesUpdate{
			Activated:   []types.ActivatedLeaf{h.ActivatedLeaf()},
			Deactivated: []types.Hash{parent.Hash},
		}})
		parent = h
	}
	for _, sig := range signals {
		require.NoError(c.Send(ctx, sig))
	}
	for _, sig := range signals {
		p := waitProcessed(t, c)
		require.NoError(p.Err)
		require.Equal(sig, p.Signal)
	}

	for i, r := range receipts {
		cmp, err := c.CandidateComparator(&r)
		require.NoError(err)
		require.NotNil(cmp)
		require.Equal(types.BlockNumber(i), cmp.RelayParentBlockNumber)
	}
	require.Equal([]types.HashNumber{parent.HashNumber()}, c.Leaves())

	reversed := []types.CandidateReceipt{receipts[4], receipts[2], receipts[0]}
	prioritized, err := c.Prioritize(reversed)
	require.NoError(err)
	require.Equal([]types.CandidateReceipt{receipts[0], receipts[2], receipts[4]}, prioritized)

	finalized, err := mc.Finalize(ctx, parent.Parent)
	require.NoError(err)
	require.NoError(c.Send(ctx, BlockFinalizedSignal{Finalized: finalized}))
	require.NoError(waitProcessed(t, c).Err)
	require.Equal(types.BlockNumber(4), c.Stats().Finalized)
	require.Equal(2, c.Stats().IndexedBlocks)

	hash, err := receipts[0].Hash()
	require.NoError(err)
	cmp, err := c.ComparatorByHash(hash)
	require.NoError(err)
	require.Nil(cmp)
}

func TestCoordinatorKeepsRunningAfterFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	h0 := types.BlockNumberHash(0)
	h1 := types.BlockNumberHash(1)
	candidate := types.GetCandidateReceipt(1, h0)

	source := &mocks.MockChainSource{}
	source.On("CandidateEvents", h0).Return(nil, nil).Once()
	c := startCoordinator(t, source, types.GetActivatedLeaf(0))

	source.On("Ancestors", h1, uint32(1)).Return(nil, chain.ErrResponseDropped).Once()
	require.NoError(c.Send(ctx, ActiveLeavesSignal{Update: types.StartWork(types.GetActivatedLeaf(1))}))
	p := waitProcessed(t, c)
	require.ErrorIs(p.Err, chain.ErrResponseDropped)
	var leafErr *ordering.LeafUpdateError
	require.ErrorAs(p.Err, &leafErr)

	source.On("Ancestors", h1, uint32(1)).Return([]types.Hash{h0}, nil).Once()
	source.On("CandidateEvents", h1).Return([]types.CandidateEvent{types.NewIncludedEvent(candidate)}, nil).Once()
	require.NoError(c.Send(ctx, ActiveLeavesSignal{Update: types.StartWork(types.GetActivatedLeaf(1))}))
	require.NoError(waitProcessed(t, c).Err)

	cmp, err := c.CandidateComparator(&candidate)
	require.NoError(err)
	require.NotNil(cmp)
	require.Equal(types.BlockNumber(0), cmp.RelayParentBlockNumber)
	source.AssertExpectations(t)
	source.AssertNotCalled(t, "BlockNumber", mock.Anything)
}

func TestCoordinatorConclude(t *testing.T) {
	ctx := context.Background()
	source := &mocks.MockChainSource{}
	source.On("CandidateEvents", mock.Anything).Return(nil, nil)
	c := startCoordinator(t, source, types.GetActivatedLeaf(0))

	require.NoError(t, c.Send(ctx, ConcludeSignal{}))
	p := waitProcessed(t, c)
	assert.Equal(t, ConcludeSignal{}, p.Signal)
	<-c.Concluded()

	assert.ErrorIs(t, c.Send(ctx, ActiveLeavesSignal{}), ErrConcluded)
}

func TestCoordinatorSendAfterStop(t *testing.T) {
	ctx := context.Background()
	source := &mocks.MockChainSource{}
	source.On("CandidateEvents", mock.Anything).Return(nil, nil)
	c := startCoordinator(t, source, types.GetActivatedLeaf(0))

	require.NoError(t, c.Stop(ctx))
	require.Eventually(t, func() bool {
		return errors.Is(c.Send(ctx, ActiveLeavesSignal{}), ErrConcluded)
	}, 5*time.Second, 10*time.Millisecond)

	// nothing left that would drain the queue
	for i := 0; i < config.DefaultConfig().Ordering.SignalBuffer+1; i++ {
		assert.ErrorIs(t, c.Send(ctx, ActiveLeavesSignal{}), ErrConcluded)
	}
	assert.ErrorIs(t, c.Start(ctx), ErrConcluded)
	select {
	case <-c.Concluded():
		t.Fatal("stopped coordinator must not report a conclude signal")
	default:
	}
}

func TestCoordinatorSendHonoursContext(t *testing.T) {
	source := &mocks.MockChainSource{}
	source.On("CandidateEvents", mock.Anything).Return(nil, nil)
	conf := config.DefaultConfig().Ordering
	conf.SignalBuffer = 0

	// not started, nobody receives
	c, err := New(context.Background(), conf, source, types.GetActivatedLeaf(0), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Send(ctx, ActiveLeavesSignal{}), context.DeadlineExceeded)
}

func TestCoordinatorInitialFailure(t *testing.T) {
	source := &mocks.MockChainSource{}
	source.On("CandidateEvents", mock.Anything).Return(nil, chain.ErrClosed)

	c, err := New(context.Background(), config.DefaultConfig().Ordering, source, types.GetActivatedLeaf(0), nil, nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, chain.ErrClosed)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rollkit/disputes/chain/memchain"
	"github.com/rollkit/disputes/config"
	"github.com/rollkit/disputes/coordinator"
	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/types"
)

const (
	maxDisputes   = 64
	disputeSample = 4
	numParas      = 8
)

// simulator produces relay chain blocks, occasionally forking, and feeds the
// resulting leaf updates and finality to the coordinator.
type simulator struct {
	chain  *memchain.Chain
	coord  *coordinator.Coordinator
	conf   config.SimConfig
	logger log.Logger
	rnd    *rand.Rand

	// candidates the simulator pretends are disputed
	disputes []types.CandidateReceipt
}

func newSimulator(chain *memchain.Chain, coord *coordinator.Coordinator, conf config.SimConfig, logger log.Logger) *simulator {
	return &simulator{
		chain:  chain,
		coord:  coord,
		conf:   conf,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
	}
}

func (s *simulator) run(ctx context.Context) error {
	ticker := time.NewTicker(s.conf.BlockTime)
	defer ticker.Stop()

	for produced := uint64(0); s.conf.Blocks == 0 || produced < s.conf.Blocks; produced++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := s.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// step builds one block, reports it to the coordinator and waits until it is handled.
func (s *simulator) step(ctx context.Context) error {
	best := s.chain.BestLeaf()
	finalized := s.chain.Finalized()

	parent, err := s.chain.Header(ctx, best.Hash)
	if err != nil {
		return err
	}
	if s.rnd.Float64() < s.conf.ForkChance && parent.Number > finalized.Number {
		if parent, err = s.chain.Header(ctx, parent.Parent); err != nil {
			return err
		}
	}
	wasLeaf := s.isLeaf(parent.Hash)

	header, err := s.chain.BuildBlock(ctx, parent.Hash, s.candidateEvents(parent.Hash))
	if err != nil {
		return fmt.Errorf("failed to build block: %w", err)
	}
	update := types.StartWork(header.ActivatedLeaf())
	if wasLeaf {
		update.Deactivated = append(update.Deactivated, parent.Hash)
	}
	if err := s.send(ctx, coordinator.ActiveLeavesSignal{Update: update}); err != nil {
		return err
	}

	if err := s.finalize(ctx); err != nil {
		return err
	}
	s.prioritize()
	return nil
}

// finalize finalizes the ancestor of the best block FinalityLag blocks below it,
// and deactivates leaves that can no longer become final.
func (s *simulator) finalize(ctx context.Context) error {
	best := s.chain.BestLeaf()
	if best.Number <= types.BlockNumber(s.conf.FinalityLag) {
		return nil
	}
	target := best.Number - types.BlockNumber(s.conf.FinalityLag)
	if target <= s.chain.Finalized().Number {
		return nil
	}

	header, err := s.chain.Header(ctx, best.Hash)
	if err != nil {
		return err
	}
	for header.Number > target {
		if header, err = s.chain.Header(ctx, header.Parent); err != nil {
			return err
		}
	}
	finalized, err := s.chain.Finalize(ctx, header.Hash)
	if errors.Is(err, memchain.ErrNotDescendant) {
		s.logger.Debug("best block abandoned the finalized chain", "best", best.Hash)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to finalize block: %w", err)
	}
	if err := s.send(ctx, coordinator.BlockFinalizedSignal{Finalized: finalized}); err != nil {
		return err
	}

	var stale []types.Hash
	for _, leaf := range s.chain.Leaves() {
		if leaf.Hash != best.Hash && leaf.Number <= finalized.Number {
			stale = append(stale, leaf.Hash)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return s.send(ctx, coordinator.ActiveLeavesSignal{Update: types.StopWork(stale...)})
}

func (s *simulator) send(ctx context.Context, sig coordinator.Signal) error {
	if err := s.coord.Send(ctx, sig); err != nil {
		return err
	}
	select {
	case p := <-s.coord.Processed():
		if p.Err != nil {
			s.logger.Error("signal failed", "error", p.Err)
		}
	case <-ctx.Done():
	}
	return nil
}

func (s *simulator) candidateEvents(relayParent types.Hash) []types.CandidateEvent {
	var events []types.CandidateEvent
	for i := 0; i < s.conf.CandidatesPerBlock; i++ {
		receipt := types.GetRandomCandidateReceipt(relayParent)
		receipt.Descriptor.ParaID = types.ParaID(s.rnd.Intn(numParas))
		events = append(events, types.CandidateEvent{
			Kind:      types.CandidateEventBacked,
			Receipt:   types.GetRandomCandidateReceipt(relayParent),
			CoreIndex: uint32(i),
		})
		events = append(events, types.CandidateEvent{
			Kind:      types.CandidateEventIncluded,
			Receipt:   receipt,
			CoreIndex: uint32(i),
		})
		s.disputes = append(s.disputes, receipt)
	}
	if len(s.disputes) > maxDisputes {
		s.disputes = s.disputes[len(s.disputes)-maxDisputes:]
	}
	return events
}

// prioritize orders a random sample of disputed candidates and logs the most urgent one.
func (s *simulator) prioritize() {
	if len(s.disputes) == 0 {
		return
	}
	sample := make([]types.CandidateReceipt, 0, disputeSample)
	for i := 0; i < disputeSample; i++ {
		sample = append(sample, s.disputes[s.rnd.Intn(len(s.disputes))])
	}
	ordered, err := s.coord.Prioritize(sample)
	if err != nil {
		s.logger.Error("failed to prioritize disputes", "error", err)
		return
	}
	cmp, err := s.coord.CandidateComparator(&ordered[0])
	if err != nil {
		s.logger.Error("failed to get comparator", "error", err)
		return
	}
	if cmp == nil {
		s.logger.Debug("most urgent dispute not yet known", "candidate_relay_parent", ordered[0].RelayParent())
		return
	}
	s.logger.Info("most urgent dispute",
		"candidate", cmp.CandidateHash,
		"relay_parent_number", cmp.RelayParentBlockNumber,
		"included_at", cmp.InclusionBlock.Number,
	)
}

func (s *simulator) isLeaf(hash types.Hash) bool {
	for _, leaf := range s.chain.Leaves() {
		if leaf.Hash == hash {
			return true
		}
	}
	return false
}

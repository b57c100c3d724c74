package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rollkit/disputes/chain"
	"github.com/rollkit/disputes/types"
)

// MockChainSource is a mock for the chain.Source interface
type MockChainSource struct {
	mock.Mock
}

var _ chain.Source = &MockChainSource{}

func (m *MockChainSource) BlockNumber(ctx context.Context, hash types.Hash) (types.BlockNumber, bool, error) {
	args := m.Called(hash)
	return args.Get(0).(types.BlockNumber), args.Bool(1), args.Error(2)
}

func (m *MockChainSource) Ancestors(ctx context.Context, hash types.Hash, k uint32) ([]types.Hash, error) {
	args := m.Called(hash, k)
	ancestors, _ := args.Get(0).([]types.Hash)
	return ancestors, args.Error(1)
}

func (m *MockChainSource) CandidateEvents(ctx context.Context, relayParent types.Hash) ([]types.CandidateEvent, error) {
	args := m.Called(relayParent)
	events, _ := args.Get(0).([]types.CandidateEvent)
	return events, args.Error(1)
}

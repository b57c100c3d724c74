package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rollkit/disputes/config"
	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/ordering"
	"github.com/rollkit/disputes/types"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) ComparatorByHash(hash types.CandidateHash) (*ordering.CandidateComparator, error) {
	args := m.Called(hash)
	cmp, _ := args.Get(0).(*ordering.CandidateComparator)
	return cmp, args.Error(1)
}

func (m *mockQuerier) Leaves() []types.HashNumber {
	return m.Called().Get(0).([]types.HashNumber)
}

func (m *mockQuerier) Stats() ordering.Stats {
	return m.Called().Get(0).(ordering.Stats)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestComparatorEndpoint(t *testing.T) {
	known := types.CandidateHash(types.GetRandomHash())
	unknown := types.CandidateHash(types.GetRandomHash())
	block := types.GetRandomHash()

	q := &mockQuerier{}
	q.On("ComparatorByHash", known).Return(&ordering.CandidateComparator{
		RelayParentBlockNumber: 7,
		Position:               2,
		CandidateHash:          known,
		InclusionBlock:         types.HashNumber{Hash: block, Number: 9},
	}, nil)
	q.On("ComparatorByHash", unknown).Return(nil, nil)
	q.On("ComparatorByHash", mock.Anything).Return(nil, ordering.ErrNotInitialized)

	h := NewServer(q, config.DefaultConfig().RPC, nil).Handler()

	rec := get(t, h, "/comparator/0x"+known.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	var resp ComparatorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ComparatorResponse{
		CandidateHash:          known,
		RelayParentBlockNumber: 7,
		Position:               2,
		InclusionBlock:         block,
		InclusionBlockNumber:   9,
	}, resp)

	rec = get(t, h, "/comparator/"+unknown.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), errUnknownCandidate.Error())

	rec = get(t, h, "/comparator/zz")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/comparator/"+types.GetRandomHash().String())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	leaf := types.HashNumber{Hash: types.GetRandomHash(), Number: 12}
	q := &mockQuerier{}
	q.On("Leaves").Return([]types.HashNumber{leaf})
	q.On("Stats").Return(ordering.Stats{IndexedBlocks: 5, IndexedCandidates: 8, TrackedLeaves: 1, Finalized: 10})

	rec := get(t, NewServer(q, config.RPCConfig{}, log.NewNopLogger()).Handler(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.IndexedBlocks)
	assert.Equal(t, types.BlockNumber(10), resp.Finalized)
	assert.Equal(t, []Leaf{{Hash: leaf.Hash, Number: 12}}, resp.Leaves)
	assert.Contains(t, rec.Body.String(), `"indexed_candidates":8`)
}

func TestServerLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	q := &mockQuerier{}
	conf := config.RPCConfig{ListenAddress: "tcp://127.0.0.1:0", MaxOpenConnections: 2}
	srv := NewServer(q, conf, nil)
	require.NoError(srv.Start(ctx))
	addr := srv.Addr()
	require.NotNil(addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Equal("{}", string(body))

	require.NoError(srv.Stop(ctx))
	require.Nil(srv.Addr())
	_, err = http.Get(fmt.Sprintf("http://%s/health", addr))
	require.Error(err)
}

func TestServerWithoutAddress(t *testing.T) {
	srv := NewServer(&mockQuerier{}, config.RPCConfig{}, nil)
	require.NoError(t, srv.Start(context.Background()))
	assert.Nil(t, srv.Addr())
	require.NoError(t, srv.Stop(context.Background()))
}

func TestMetricsServer(t *testing.T) {
	srv := NewMetricsServer(config.DefaultInstrumentationConfig(), nil)
	rec := get(t, srv.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

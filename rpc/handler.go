package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/ordering"
	"github.com/rollkit/disputes/types"
)

// ComparatorResponse is returned by /comparator/{hash}.
type ComparatorResponse struct {
	CandidateHash          types.CandidateHash `json:"candidate_hash"`
	RelayParentBlockNumber types.BlockNumber   `json:"relay_parent_block_number"`
	Position               uint32              `json:"position"`
	InclusionBlock         types.Hash          `json:"inclusion_block"`
	InclusionBlockNumber   types.BlockNumber   `json:"inclusion_block_number"`
}

// Leaf is an active leaf in StatusResponse.
type Leaf struct {
	Hash   types.Hash        `json:"hash"`
	Number types.BlockNumber `json:"number"`
}

// StatusResponse is returned by /status.
type StatusResponse struct {
	ordering.Stats
	Leaves []Leaf `json:"leaves"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errUnknownCandidate = errors.New("candidate inclusion not known")

type handler struct {
	querier Querier
	logger  log.Logger
}

func (h *handler) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/comparator/{hash}", h.comparator).Methods(http.MethodGet)
	router.HandleFunc("/status", h.status).Methods(http.MethodGet)
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	return router
}

func (h *handler) comparator(w http.ResponseWriter, r *http.Request) {
	hash, err := types.HashFromHex(mux.Vars(r)["hash"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	cmp, err := h.querier.ComparatorByHash(types.CandidateHash(hash))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if cmp == nil {
		h.writeError(w, http.StatusNotFound, errUnknownCandidate)
		return
	}
	h.writeResponse(w, ComparatorResponse{
		CandidateHash:          cmp.CandidateHash,
		RelayParentBlockNumber: cmp.RelayParentBlockNumber,
		Position:               cmp.Position,
		InclusionBlock:         cmp.InclusionBlock.Hash,
		InclusionBlockNumber:   cmp.InclusionBlock.Number,
	})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Stats: h.querier.Stats(), Leaves: []Leaf{}}
	for _, l := range h.querier.Leaves() {
		resp.Leaves = append(resp.Leaves, Leaf{Hash: l.Hash, Number: l.Number})
	}
	h.writeResponse(w, resp)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeResponse(w, struct{}{})
}

func (h *handler) writeResponse(w http.ResponseWriter, payload interface{}) {
	h.write(w, http.StatusOK, payload)
}

func (h *handler) writeError(w http.ResponseWriter, code int, err error) {
	h.write(w, code, errorResponse{Error: err.Error()})
}

func (h *handler) write(w http.ResponseWriter, code int, payload interface{}) {
	resp, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(resp); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

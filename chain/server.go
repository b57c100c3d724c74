package chain

import (
	"context"
	"sync"

	"github.com/rollkit/disputes/log"
)

// Serve answers requests arriving on ch using backend, until ctx is done.
// Each request is handled in its own goroutine. Requests still in flight when ctx
// is cancelled get their response channel closed. ch is closed on return.
func Serve(ctx context.Context, ch *Channels, backend Source, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	var wg sync.WaitGroup
	defer ch.Close()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch.done:
			return ErrClosed
		case req := <-ch.BlockNumber:
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, found, err := backend.BlockNumber(ctx, req.Hash)
				respond(ctx, req.Response, BlockNumberResponse{Number: n, Found: found, Err: err})
			}()
		case req := <-ch.Ancestors:
			wg.Add(1)
			go func() {
				defer wg.Done()
				ancestors, err := backend.Ancestors(ctx, req.Hash, req.K)
				respond(ctx, req.Response, AncestorsResponse{Ancestors: ancestors, Err: err})
			}()
		case req := <-ch.CandidateEvents:
			wg.Add(1)
			go func() {
				defer wg.Done()
				events, err := backend.CandidateEvents(ctx, req.RelayParent)
				if err != nil {
					logger.Debug("candidate events request failed", "relay_parent", req.RelayParent, "error", err)
				}
				respond(ctx, req.Response, CandidateEventsResponse{Events: events, Err: err})
			}()
		}
	}
}

// respond sends resp, or drops the response channel if ctx is already done.
func respond[Resp any](ctx context.Context, ch chan<- Resp, resp Resp) {
	if ctx.Err() != nil {
		close(ch)
		return
	}
	ch <- resp
}

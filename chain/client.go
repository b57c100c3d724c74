package chain

import (
	"context"

	"github.com/rollkit/disputes/types"
)

// Client implements Source by sending typed requests over Channels.
type Client struct {
	ch *Channels
}

var _ Source = &Client{}

// NewClient returns a Client sending requests over ch.
func NewClient(ch *Channels) *Client {
	return &Client{ch: ch}
}

// BlockNumber implements ChainAPI.
func (c *Client) BlockNumber(ctx context.Context, hash types.Hash) (types.BlockNumber, bool, error) {
	resp, err := roundTrip(ctx, c.ch, c.ch.BlockNumber, func(r chan<- BlockNumberResponse) BlockNumberRequest {
		return BlockNumberRequest{Hash: hash, Response: r}
	})
	if err != nil {
		return 0, false, err
	}
	return resp.Number, resp.Found, resp.Err
}

// Ancestors implements ChainAPI.
func (c *Client) Ancestors(ctx context.Context, hash types.Hash, k uint32) ([]types.Hash, error) {
	resp, err := roundTrip(ctx, c.ch, c.ch.Ancestors, func(r chan<- AncestorsResponse) AncestorsRequest {
		return AncestorsRequest{Hash: hash, K: k, Response: r}
	})
	if err != nil {
		return nil, err
	}
	return resp.Ancestors, resp.Err
}

// CandidateEvents implements RuntimeAPI.
func (c *Client) CandidateEvents(ctx context.Context, relayParent types.Hash) ([]types.CandidateEvent, error) {
	resp, err := roundTrip(ctx, c.ch, c.ch.CandidateEvents, func(r chan<- CandidateEventsResponse) CandidateEventsRequest {
		return CandidateEventsRequest{RelayParent: relayParent, Response: r}
	})
	if err != nil {
		return nil, err
	}
	return resp.Events, resp.Err
}

// roundTrip sends a single request and waits for its single response.
func roundTrip[Req, Resp any](ctx context.Context, ch *Channels, reqCh chan<- Req, build func(chan<- Resp) Req) (Resp, error) {
	var zero Resp
	respCh := make(chan Resp, 1)
	select {
	case reqCh <- build(respCh):
	case <-ch.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case resp, ok := <-respCh:
		if !ok {
			return zero, ErrResponseDropped
		}
		return resp, nil
	case <-ch.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

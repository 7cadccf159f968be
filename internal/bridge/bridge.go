// Package bridge proxies set-catalog requests from the page-embedded context
// to the privileged background context. The page side may not perform network
// fetches, so it sends a typed request with no payload and awaits a response
// carrying the full table.
package bridge

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/mtgjson"
)

// MessageGetSetData is the type tag of the one request/response pair the
// bridge carries.
const MessageGetSetData = "cardmarket-bulk-import.getSetData"

// Request is the page-side message. Name is always empty for set-data
// requests; the field exists because the wire contract reserves it.
type Request struct {
	Type  string
	Name  string
	reply chan Response
}

// Response carries the full decoded set table back to the page side.
type Response struct {
	Sets []mtgjson.SetEntry
	Err  error
}

// Conn is the page-side handle. It satisfies mtgjson.Provider so the set
// resolver works identically against a direct client or the bridge.
type Conn struct {
	requests chan Request
	done     chan struct{}
}

// Serve starts the privileged side servicing requests against provider and
// returns the page-side connection. The set table is warmed eagerly so the
// first row parse does not pay for the fetch; a failed warm-up is only
// logged, since the caller's own request will surface the error.
func Serve(ctx context.Context, provider mtgjson.Provider) *Conn {
	conn := &Conn{
		requests: make(chan Request),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(conn.done)

		if _, err := provider.GetSetData(ctx); err != nil {
			log.Warn().Err(err).Msg("Set catalog warm-up failed; will retry on demand")
		}

		for {
			select {
			case <-ctx.Done():
				return
			case req, ok := <-conn.requests:
				if !ok {
					return
				}
				conn.handle(ctx, provider, req)
			}
		}
	}()

	return conn
}

func (c *Conn) handle(ctx context.Context, provider mtgjson.Provider, req Request) {
	log.Debug().Str("type", req.Type).Msg("Handling bridge request")

	var resp Response
	switch req.Type {
	case MessageGetSetData:
		resp.Sets, resp.Err = provider.GetSetData(ctx)
	default:
		resp.Err = fmt.Errorf("unknown bridge message type: %s", req.Type)
	}
	req.reply <- resp
}

// GetSetData performs the request/response round trip.
func (c *Conn) GetSetData(ctx context.Context) ([]mtgjson.SetEntry, error) {
	req := Request{
		Type:  MessageGetSetData,
		Name:  "",
		reply: make(chan Response, 1),
	}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("bridge is closed")
	}

	select {
	case resp := <-req.reply:
		return resp.Sets, resp.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close shuts down the privileged side. In-flight requests complete first.
func (c *Conn) Close() {
	close(c.requests)
	<-c.done
}

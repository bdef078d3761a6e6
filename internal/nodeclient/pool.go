package nodeclient

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size set of identical connections to the same endpoint,
// dispatched to round-robin with no per-client latency feedback — a
// conscious choice, since feedback loops would couple clients and harm
// tail latency (see SPEC_FULL.md).
type Pool struct {
	clients []*Client
	next    int
}

// DialPool opens size connections to rpcURL concurrently. If any dial fails,
// it waits for the remaining dials to finish, closes the connections that
// did open, and returns the first error. This is the one place in this codebase that
// genuinely needs "all of these or none," so it uses errgroup rather than a
// hand-rolled sync.WaitGroup and error slice.
func DialPool(ctx context.Context, rpcURL string, size int) (*Pool, error) {
	clients := make([]*Client, size)

	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < size; i++ {
		i := i
		g.Go(func() error {
			c, err := Dial(rpcURL)
			if err != nil {
				return err
			}
			clients[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, c := range clients {
			if c != nil {
				_ = c.Close()
			}
		}
		return nil, fmt.Errorf("dial pool of %d to %s: %w", size, rpcURL, err)
	}

	log.Infof("opened %d rpc connections to %s", size, rpcURL)
	return &Pool{clients: clients}, nil
}

// Size returns the number of connections in the pool.
func (p *Pool) Size() int { return len(p.clients) }

// Primary returns the first connection, used for calls that only need one
// handle (e.g. the orchestrator's initial server-info check).
func (p *Pool) Primary() *Client { return p.clients[0] }

// Next returns the next client in round-robin order.
func (p *Pool) Next() *Client {
	c := p.clients[p.next%len(p.clients)]
	p.next++
	return c
}

// All returns every client in the pool, in dial order. Callers use this to
// build their own dispatch abstraction (e.g. the submission engine's
// round-robin list of its own narrow interface type) without this package
// needing to know about it.
func (p *Pool) All() []*Client {
	out := make([]*Client, len(p.clients))
	copy(out, p.clients)
	return out
}

// Close closes every connection in the pool.
func (p *Pool) Close() error {
	var firstErr error
	for _, c := range p.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

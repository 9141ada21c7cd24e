package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/alanwang67/atomic_register/protocol"
)

// Client dispatches internal register requests to every peer replica
// concurrently. The peer set is fixed at construction and never contains the
// replica's own URL; the local contribution is served in-process by the
// server.
type Client struct {
	urls []string
	http *http.Client
}

// Response is one peer's completed reply. Err collapses transport failures,
// non-2xx statuses, and undecodable bodies into a single outcome; Peer is
// retained for logging only.
type Response struct {
	Peer  string
	State protocol.VersionedValue
	Err   error
}

func New(urls []string) *Client {
	return &Client{
		urls: urls,
		http: &http.Client{},
	}
}

// Collect asks every peer for its current register state. Responses are
// delivered on the returned channel as they arrive; the channel closes once
// every peer has terminated. Cancelling ctx aborts all outstanding requests.
func (c *Client) Collect(ctx context.Context) <-chan Response {
	return c.broadcast(ctx, c.ask)
}

// Announce sends state to every peer for adoption. A 200 reply is an
// acknowledgement; delivery semantics match Collect.
func (c *Client) Announce(ctx context.Context, state protocol.VersionedValue) <-chan Response {
	return c.broadcast(ctx, func(ctx context.Context, url string) (protocol.VersionedValue, error) {
		return c.tell(ctx, url, state)
	})
}

// broadcast fans call out to every peer. The channel is buffered to the peer
// count so senders never block after the caller stops receiving.
func (c *Client) broadcast(ctx context.Context, call func(context.Context, string) (protocol.VersionedValue, error)) <-chan Response {
	out := make(chan Response, len(c.urls))
	var wg sync.WaitGroup
	for _, url := range c.urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			state, err := call(ctx, url)
			out <- Response{Peer: url, State: state, Err: err}
		}(url)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (c *Client) ask(ctx context.Context, base string) (protocol.VersionedValue, error) {
	var state protocol.VersionedValue
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+protocol.LocalPath, nil)
	if err != nil {
		return state, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return state, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return state, fmt.Errorf("peer replied with status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return state, fmt.Errorf("decoding peer state: %v", err)
	}
	return state, nil
}

func (c *Client) tell(ctx context.Context, base string, state protocol.VersionedValue) (protocol.VersionedValue, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return state, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+protocol.LocalPath, bytes.NewReader(body))
	if err != nil {
		return state, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return state, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return state, fmt.Errorf("peer replied with status %s", resp.Status)
	}
	return state, nil
}

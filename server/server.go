package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alanwang67/atomic_register/protocol"
	"github.com/charmbracelet/log"
)

// Read performs the two-phase register read. Phase one collects
// (value, timestamp) pairs from a majority and selects the maximum; phase
// two writes that maximum back to a majority. The write-back is mandatory
// even though the caller already has its answer: it guarantees that reads
// starting later cannot observe an older value at a majority.
func (s *Server) Read(ctx context.Context) (json.RawMessage, error) {
	max, err := s.collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := s.announce(ctx, max); err != nil {
		return nil, fmt.Errorf("read write-back: %w", err)
	}
	return max.Value, nil
}

// Write installs value under a timestamp strictly greater than any
// timestamp present at any majority when the write began. Phase one finds
// the highest timestamp at a majority; phase two imposes the new pair on a
// majority. Concurrent writers on other replicas generate distinct
// timestamps because the tiebreaker is the replica ordinal.
func (s *Server) Write(ctx context.Context, value json.RawMessage) error {
	max, err := s.collect(ctx)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	next := protocol.VersionedValue{
		Value:     value,
		Timestamp: s.register.NextTimestamp(max.Timestamp),
	}
	if err := s.announce(ctx, next); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// collect gathers register states until a majority has replied and returns
// the one with the highest timestamp. The local snapshot is the first
// reply; no loopback request is made to self. Individual peer failures are
// logged and dropped from the tally.
func (s *Server) collect(ctx context.Context) (protocol.VersionedValue, error) {
	max := s.register.Snapshot()
	acks := 1
	if acks >= s.quorum() {
		return max, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for resp := range s.peers.Collect(ctx) {
		if resp.Err != nil {
			log.Errorf("server %d: collect from %s failed: %v", s.Id, resp.Peer, resp.Err)
			continue
		}
		if max.Timestamp.Less(resp.State.Timestamp) {
			max = resp.State
		}
		acks++
		if acks >= s.quorum() {
			return max, nil
		}
	}
	return protocol.VersionedValue{}, fmt.Errorf("collect phase: acks=%d, quorum=%d: %w", acks, s.quorum(), ErrQuorumUnreachable)
}

// announce merges state locally, then pushes it to peers until a majority
// has acknowledged. Writes that reached only a minority before a failure
// are left in place; a later operation observes their timestamp and
// completes them.
func (s *Server) announce(ctx context.Context, state protocol.VersionedValue) error {
	s.register.Merge(state)
	acks := 1
	if acks >= s.quorum() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for resp := range s.peers.Announce(ctx, state) {
		if resp.Err != nil {
			log.Errorf("server %d: announce to %s failed: %v", s.Id, resp.Peer, resp.Err)
			continue
		}
		acks++
		if acks >= s.quorum() {
			return nil
		}
	}
	return fmt.Errorf("announce phase: acks=%d, quorum=%d: %w", acks, s.quorum(), ErrQuorumUnreachable)
}

// Start serves the replica's HTTP surface on addr until the listener fails.
func (s *Server) Start(addr string) error {
	log.Debugf("server %d listening on %s", s.Id, addr)
	return http.ListenAndServe(addr, s.Handler())
}

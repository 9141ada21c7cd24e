package server

import (
	"encoding/json"
	"sync"

	"github.com/alanwang67/atomic_register/protocol"
)

// LocalRegister is the replica's copy of the register contents. It is the
// only shared mutable state in the process; one mutex around the small
// struct is enough because every access is O(1). The mutex is never held
// across network or body I/O.
type LocalRegister struct {
	tiebreaker uint64

	mu    sync.Mutex
	state protocol.VersionedValue
}

// NewLocalRegister boots the register at (null, (0, tiebreaker)). Every
// generated timestamp has Sequence >= 1, so the boot timestamp sorts below
// all of them.
func NewLocalRegister(tiebreaker uint64) *LocalRegister {
	return &LocalRegister{
		tiebreaker: tiebreaker,
		state: protocol.VersionedValue{
			Value:     json.RawMessage("null"),
			Timestamp: protocol.Timestamp{Sequence: 0, Tiebreaker: tiebreaker},
		},
	}
}

// Snapshot returns the current (value, timestamp) pair from a single
// critical section.
func (r *LocalRegister) Snapshot() protocol.VersionedValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Merge adopts incoming if its timestamp is strictly greater than the
// current one, and is a no-op otherwise. The comparison and the replacement
// share one critical section; splitting them would let a stale merge win
// against a concurrent newer one. Returns the post-merge state.
func (r *LocalRegister) Merge(incoming protocol.VersionedValue) protocol.VersionedValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Timestamp.Less(incoming.Timestamp) {
		r.state = incoming
	}
	return r.state
}

// NextTimestamp forms the timestamp for a fresh write: one past the highest
// sequence observed, stamped with this replica's tiebreaker.
func (r *LocalRegister) NextTimestamp(after protocol.Timestamp) protocol.Timestamp {
	return protocol.Timestamp{Sequence: after.Sequence + 1, Tiebreaker: r.tiebreaker}
}

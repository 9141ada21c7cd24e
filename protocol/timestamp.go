package protocol

import (
	"encoding/json"
	"fmt"
)

// Timestamp orders writes across the cluster. The sequence number carries the
// causal order; the tiebreaker is the generating replica's ordinal and breaks
// ties between concurrent writers, so no two replicas ever produce an equal
// timestamp.
type Timestamp struct {
	Sequence   uint64
	Tiebreaker uint64
}

// Less reports whether t is strictly smaller than other, comparing
// (Sequence, Tiebreaker) lexicographically.
func (t Timestamp) Less(other Timestamp) bool {
	if t.Sequence != other.Sequence {
		return t.Sequence < other.Sequence
	}
	return t.Tiebreaker < other.Tiebreaker
}

func (t Timestamp) String() string {
	return fmt.Sprintf("(%d, %d)", t.Sequence, t.Tiebreaker)
}

// Timestamps travel as a two-element JSON array [sequence, tiebreaker] so
// that the wire order matches the in-memory order.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint64{t.Sequence, t.Tiebreaker})
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var pair [2]uint64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("timestamp must be [sequence, tiebreaker]: %v", err)
	}
	t.Sequence = pair[0]
	t.Tiebreaker = pair[1]
	return nil
}

package protocol

import (
	"encoding/json"
	"fmt"
)

// VersionedValue pairs the register contents with the timestamp they were
// written at. The two fields are read and replaced together; nothing ever
// observes a value next to a timestamp it was not written with.
type VersionedValue struct {
	Value     json.RawMessage
	Timestamp Timestamp
}

// Replicas exchange register state as [value, [sequence, tiebreaker]].
func (v VersionedValue) MarshalJSON() ([]byte, error) {
	ts, err := json.Marshal(v.Timestamp)
	if err != nil {
		return nil, err
	}
	value := v.Value
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	return json.Marshal([2]json.RawMessage{value, ts})
}

func (v *VersionedValue) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("register state must be [value, timestamp], got %d elements", len(parts))
	}
	var ts Timestamp
	if err := json.Unmarshal(parts[1], &ts); err != nil {
		return err
	}
	v.Value = parts[0]
	v.Timestamp = ts
	return nil
}

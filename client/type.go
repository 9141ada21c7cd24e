package client

import (
	"net/http"
	"time"

	"github.com/alanwang67/atomic_register/protocol"
)

// Client talks to the register cluster over the external surface. Any
// replica can serve any operation; the client fails over to the next
// replica when one is unreachable or cannot assemble a quorum.
type Client struct {
	Id       uint64             // Unique ID of the client
	Replicas []protocol.Replica // Cluster members, tried in order
	http     *http.Client
}

// OpResult records the outcome of one workload instruction.
type OpResult struct {
	Index   int
	Latency time.Duration
	Err     error
}

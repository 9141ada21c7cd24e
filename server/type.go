package server

import (
	"errors"

	"github.com/alanwang67/atomic_register/peer"
)

// ErrQuorumUnreachable reports that a majority of replicas could not be
// assembled for a phase of an operation.
var ErrQuorumUnreachable = errors.New("quorum unreachable")

// Server is one replica of the register cluster.
type Server struct {
	Id   uint64 // replica ordinal, doubles as the timestamp tiebreaker
	Self string // this replica's URL, for logging

	peers    *peer.Client
	register *LocalRegister
	total    int // cluster size, peers plus self
}

// New constructs a replica from its ordinal, its own URL, and the URLs of
// every other cluster member. An empty peer list is single-replica mode,
// where every majority is the replica itself.
func New(id uint64, self string, peers []string) *Server {
	return &Server{
		Id:       id,
		Self:     self,
		peers:    peer.New(peers),
		register: NewLocalRegister(id),
		total:    len(peers) + 1,
	}
}

// quorum is the majority threshold over the whole cluster, self included.
func (s *Server) quorum() int {
	return s.total/2 + 1
}

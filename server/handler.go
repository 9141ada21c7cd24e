package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alanwang67/atomic_register/protocol"
	"github.com/charmbracelet/log"
)

// Handler routes the external client surface and the internal peer surface.
// Each request runs in its own goroutine, so an external operation's
// fan-out to peers can be serviced concurrently with the request that
// spawned it, including the single-replica case.
func (s *Server) Handler() http.Handler {
	route := func(get, post http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				get(w, r)
			case http.MethodPost:
				post(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc(protocol.RegisterPath, route(s.handleRead, s.handleWrite))
	mux.HandleFunc(protocol.LocalPath, route(s.handleLocalRead, s.handleLocalWrite))
	return mux
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	value, err := s.Read(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(value)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "request body is not valid JSON", http.StatusBadRequest)
		return
	}
	if err := s.Write(r.Context(), body); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLocalRead(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.register.Snapshot()); err != nil {
		log.Errorf("server %d: encoding local state: %v", s.Id, err)
	}
}

func (s *Server) handleLocalWrite(w http.ResponseWriter, r *http.Request) {
	var state protocol.VersionedValue
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		http.Error(w, "request body is not a register state", http.StatusBadRequest)
		return
	}
	s.register.Merge(state)
	w.WriteHeader(http.StatusOK)
}

// fail maps an operation failure to a status code. Quorum loss is the
// expected failure mode and reports as unavailable; anything else is an
// internal error.
func (s *Server) fail(w http.ResponseWriter, err error) {
	log.Errorf("server %d: %v", s.Id, err)
	if errors.Is(err, ErrQuorumUnreachable) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

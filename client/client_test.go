package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alanwang67/atomic_register/protocol"
	"github.com/alanwang67/atomic_register/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replicaStub(t *testing.T, handler http.HandlerFunc) protocol.Replica {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return protocol.Replica{URL: srv.URL}
}

func TestGetReturnsRegisterValue(t *testing.T) {
	rep := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, protocol.RegisterPath, r.URL.Path)
		io.WriteString(w, `"hello"`)
	})

	c := New(0, []protocol.Replica{rep})
	value, err := c.Get(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(value))
}

func TestGetFailsOverToNextReplica(t *testing.T) {
	down := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no quorum", http.StatusServiceUnavailable)
	})
	up := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `42`)
	})

	c := New(0, []protocol.Replica{down, up})
	value, err := c.Get(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `42`, string(value))
}

func TestGetFailsWhenEveryReplicaFails(t *testing.T) {
	down := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no quorum", http.StatusServiceUnavailable)
	})

	c := New(0, []protocol.Replica{down, down})
	_, err := c.Get(context.Background())
	assert.Error(t, err)
}

func TestPutSendsValueToReplica(t *testing.T) {
	bodies := make(chan string, 1)
	rep := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, protocol.RegisterPath, r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies <- string(body)
	})

	c := New(0, []protocol.Replica{rep})
	err := c.Put(context.Background(), json.RawMessage(`{"k":1}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"k":1}`, <-bodies)
}

func TestRunExecutesWorkload(t *testing.T) {
	var mu sync.Mutex
	var reads, writes int
	rep := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			reads++
			io.WriteString(w, `null`)
		case http.MethodPost:
			writes++
		}
	})

	c := New(0, []protocol.Replica{rep})
	results := c.Run(context.Background(), []workload.Instruction{
		{Type: workload.InstructionTypeWrite, Value: json.RawMessage(`1`)},
		{Type: workload.InstructionTypeRead},
		{Type: workload.InstructionTypeRead},
	})

	require.Len(t, results, 3)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, writes)
	assert.Equal(t, 2, reads)
}

func TestRunRecordsFailures(t *testing.T) {
	down := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no quorum", http.StatusServiceUnavailable)
	})

	c := New(0, []protocol.Replica{down})
	results := c.Run(context.Background(), []workload.Instruction{
		{Type: workload.InstructionTypeRead},
	})

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestInteractiveReadAndWrite(t *testing.T) {
	rep := replicaStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			io.WriteString(w, `"stored"`)
		}
	})

	c := New(0, []protocol.Replica{rep})
	in := strings.NewReader("write \"stored\"\nread\nquit\n")
	var out strings.Builder

	err := c.RunInteractive(context.Background(), in, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ok")
	assert.Contains(t, out.String(), `"stored"`)
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alanwang67/atomic_register/protocol"
	"github.com/alanwang67/atomic_register/workload"
	"github.com/charmbracelet/log"
)

// New creates a new Client with the given ID and cluster membership.
func New(id uint64, replicas []protocol.Replica) *Client {
	log.Debugf("client %d created", id)
	return &Client{
		Id:       id,
		Replicas: replicas,
		http:     &http.Client{},
	}
}

// Get reads the register, trying each replica until one completes the
// operation.
func (c *Client) Get(ctx context.Context) (json.RawMessage, error) {
	var lastErr error
	for _, rep := range c.Replicas {
		value, err := c.get(ctx, rep)
		if err != nil {
			log.Errorf("client %d: read via replica %d failed: %v", c.Id, rep.Id, err)
			lastErr = err
			continue
		}
		return value, nil
	}
	return nil, fmt.Errorf("read failed on every replica, last error: %v", lastErr)
}

// Put writes value to the register, trying each replica until one completes
// the operation.
func (c *Client) Put(ctx context.Context, value json.RawMessage) error {
	var lastErr error
	for _, rep := range c.Replicas {
		if err := c.put(ctx, rep, value); err != nil {
			log.Errorf("client %d: write via replica %d failed: %v", c.Id, rep.Id, err)
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("write failed on every replica, last error: %v", lastErr)
}

func (c *Client) get(ctx context.Context, rep protocol.Replica) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rep.URL+protocol.RegisterPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("replica replied with status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) put(ctx context.Context, rep protocol.Replica, value json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rep.URL+protocol.RegisterPath, bytes.NewReader(value))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("replica replied with status %s", resp.Status)
	}
	return nil
}

// Run executes a series of instructions against the cluster and returns the
// per-operation outcomes.
func (c *Client) Run(ctx context.Context, instructions []workload.Instruction) []OpResult {
	log.Debugf("client %d running %d instructions", c.Id, len(instructions))

	var successfulOps, failedOps uint64
	var totalLatency time.Duration
	results := make([]OpResult, 0, len(instructions))

	for i, instr := range instructions {
		start := time.Now()

		var err error
		switch instr.Type {
		case workload.InstructionTypeRead:
			_, err = c.Get(ctx)
		case workload.InstructionTypeWrite:
			err = c.Put(ctx, instr.Value)
		default:
			log.Warnf("client %d: unknown instruction type %q", c.Id, instr.Type)
			continue
		}

		elapsed := time.Since(start)
		totalLatency += elapsed
		if err != nil {
			log.Errorf("client %d: instruction %d failed: %v", c.Id, i+1, err)
			failedOps++
		} else {
			successfulOps++
		}
		results = append(results, OpResult{Index: i, Latency: elapsed, Err: err})

		if instr.Delay > 0 {
			time.Sleep(instr.Delay)
		}
	}

	totalOps := successfulOps + failedOps
	var avgLatency time.Duration
	if totalOps > 0 {
		avgLatency = totalLatency / time.Duration(totalOps)
	}
	log.Infof("client %d completed workload. Total Ops: %d, Success: %d, Failed: %d, Avg Latency: %v",
		c.Id, totalOps, successfulOps, failedOps, avgLatency)

	return results
}

package workload

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"
)

// InstructionType constants define the types of operations.
const (
	InstructionTypeRead  = "read"
	InstructionTypeWrite = "write"
)

// Instruction represents a single operation in the workload.
type Instruction struct {
	Type  string          `json:"type"`            // "read" or "write"
	Value json.RawMessage `json:"value,omitempty"` // JSON document to write (only for writes)
	Delay time.Duration   `json:"delay,omitempty"` // Optional pause after the instruction completes
}

// Generator produces workloads based on specified parameters.
type Generator struct {
	ReadPercentage   float64       // Percentage of read operations (e.g., 0.8 for 80% reads)
	ZipfianS         float64       // S parameter for Zipfian distribution (skewness)
	ZipfianV         uint64        // Largest value the Zipfian distribution draws (its imax; its v parameter is 1)
	OperationCount   int           // Total number of operations to generate
	MaxWriteValue    uint64        // Write values are taken modulo this bound (exclusive upper limit)
	InstructionDelay time.Duration // Optional delay between instructions
}

// NewGenerator creates a Generator with default parameters.
func NewGenerator() *Generator {
	return &Generator{
		ReadPercentage:   0.8,
		ZipfianS:         1.01,
		ZipfianV:         1000000,
		OperationCount:   1000,
		MaxWriteValue:    1000000,
		InstructionDelay: 0,
	}
}

// Generate creates a workload based on the generator's parameters. Write
// values are JSON numbers drawn from a Zipfian distribution.
func (g *Generator) Generate() []Instruction {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	zipf := rand.NewZipf(rng, g.ZipfianS, 1, g.ZipfianV)

	instructions := make([]Instruction, 0, g.OperationCount)
	for i := 0; i < g.OperationCount; i++ {
		instr := Instruction{
			Type:  InstructionTypeRead,
			Delay: g.InstructionDelay,
		}
		if rng.Float64() >= g.ReadPercentage {
			instr.Type = InstructionTypeWrite
			value := zipf.Uint64() % g.MaxWriteValue
			instr.Value = json.RawMessage(strconv.FormatUint(value, 10))
		}
		instructions = append(instructions, instr)
	}
	return instructions
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alanwang67/atomic_register/client"
	"github.com/alanwang67/atomic_register/protocol"
	"github.com/alanwang67/atomic_register/server"
	"github.com/alanwang67/atomic_register/workload"
	"github.com/charmbracelet/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Config structure for parsing the `config.json` file.
type Config struct {
	Replicas []struct {
		Id     uint64 `json:"id"`
		URL    string `json:"url"`
		Listen string `json:"listen"`
	} `json:"replicas"`
	Workload []workload.Instruction `json:"workload"`
}

func main() {
	log.SetLevel(log.DebugLevel)

	if len(os.Args) < 3 {
		fmt.Println("Usage: go run ./cmd [server|client] [id] [optional:interactive|bench]")
		return
	}

	role := os.Args[1]
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("invalid id %q: %v", os.Args[2], err)
	}

	mode := ""
	if len(os.Args) > 3 {
		mode = os.Args[3]
	}

	config, err := loadConfig("config.json")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	switch role {
	case "server":
		startServer(id, config)
	case "client":
		startClient(id, config, mode)
	default:
		fmt.Println("Invalid role. Use 'server' or 'client'.")
	}
}

func loadConfig(path string) (Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, err
	}
	return config, nil
}

func startServer(id uint64, config Config) {
	var self, listen string
	var peers []string
	for _, rep := range config.Replicas {
		if rep.Id == id {
			self = rep.URL
			listen = rep.Listen
			continue
		}
		peers = append(peers, rep.URL)
	}
	if listen == "" {
		log.Fatalf("no replica with id %d in config", id)
	}

	srv := server.New(id, self, peers)
	log.Infof("starting server %d at %s", id, listen)
	if err := srv.Start(listen); err != nil {
		log.Fatalf("server %d failed: %v", id, err)
	}
}

func startClient(id uint64, config Config, mode string) {
	replicas := make([]protocol.Replica, len(config.Replicas))
	for i, rep := range config.Replicas {
		replicas[i] = protocol.Replica{Id: rep.Id, URL: rep.URL}
	}

	cli := client.New(id, replicas)
	ctx := context.Background()

	switch mode {
	case "interactive":
		if err := cli.RunInteractive(ctx, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("client %d failed: %v", id, err)
		}
	case "bench":
		instructions := config.Workload
		if len(instructions) == 0 {
			instructions = workload.NewGenerator().Generate()
		}
		results := cli.Run(ctx, instructions)
		if err := renderCharts(results, "results"); err != nil {
			log.Fatalf("rendering charts: %v", err)
		}
	default:
		cli.Run(ctx, config.Workload)
	}
}

// renderCharts plots per-operation latency and cumulative throughput from a
// bench run into PNG files under dir.
func renderCharts(results []client.OpResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	latency := make(plotter.XYs, 0, len(results))
	throughput := make(plotter.XYs, 0, len(results))
	var elapsed float64
	for i, res := range results {
		ms := float64(res.Latency.Microseconds()) / 1000
		latency = append(latency, plotter.XY{X: float64(i + 1), Y: ms})
		elapsed += res.Latency.Seconds()
		if elapsed > 0 {
			throughput = append(throughput, plotter.XY{X: elapsed, Y: float64(i+1) / elapsed})
		}
	}

	if err := renderChart("Latency", "Operation", "Latency (ms)", latency,
		filepath.Join(dir, "latency.png")); err != nil {
		return err
	}
	return renderChart("Throughput", "Time (s)", "Throughput (operations/s)", throughput,
		filepath.Join(dir, "throughput.png"))
}

func renderChart(title, xLabel, yLabel string, pts plotter.XYs, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

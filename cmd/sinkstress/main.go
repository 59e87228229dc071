// FILE: lixenwraith/sinklog/cmd/sinkstress/main.go
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/compress"
	"github.com/lixenwraith/sinklog/record"
	"golang.org/x/sync/errgroup"
)

const (
	totalBursts    = 200
	logsPerBurst   = 500
	maxMessageSize = 2000
	numWorkers     = 64
)

const configFile = "sinkstress.toml"

// Small rotation size and short retention force the full lifecycle many times per run
var tomlContent = `
[sink]
  level = "DEBUG"
  destination = "./logs/stress.log"
  serialize = "json"
  rotation = "1 MB"
  compression = "zst"
  retention = "5, 20 MB"
  durability = "interval"
  flush_interval_ms = 50
  enqueue = true
  queue_size = 4096
  overflow = "block"
`

var levels = []record.Level{
	record.LevelDebug,
	record.LevelInfo,
	record.LevelWarning,
	record.LevelError,
}

func generateRandomMessage(r *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[r.Intn(len(chars))])
	}
	return sb.String()
}

func logBurst(logger *sinklog.Logger, r *rand.Rand, worker, burst int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[r.Intn(len(levels))]
		logger.Log(level, generateRandomMessage(r, r.Intn(maxMessageSize)+10),
			"wkr", worker,
			"bst", burst,
			"seq", i,
			"rnd", r.Int63(),
		)
	}
}

// countLines reads every file in dir, decompressing archives, and counts records
func countLines(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rc, err := compress.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return total, err
		}
		buf := make([]byte, 64*1024)
		for {
			n, err := rc.Read(buf)
			total += strings.Count(string(buf[:n]), "\n")
			if err != nil {
				break
			}
		}
		rc.Close()
	}
	return total, nil
}

func main() {
	fmt.Println("--- Sink Stress Test ---")

	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	_ = os.RemoveAll("./logs")

	cfg, err := sinklog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := sinklog.NewLogger()
	if _, err := logger.AddConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add sink: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Writing to %s (rotation=%s compression=%s retention=%s)\n",
		cfg.Destination, cfg.Rotation, cfg.Compression, cfg.Retention)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bursts := make(chan int, numWorkers)
	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < numWorkers; w++ {
		w := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)))
			for b := range bursts {
				logBurst(logger, r, w, b)
				if n := completed.Add(1); n%10 == 0 || n == totalBursts {
					fmt.Printf("\rProgress: %d/%d bursts completed", n, totalBursts)
				}
			}
			return nil
		})
	}

	start := time.Now()
	g.Go(func() error {
		defer close(bursts)
		for i := 1; i <= totalBursts; i++ {
			select {
			case bursts <- i:
			case <-gctx.Done():
				fmt.Println("\n[Signal received] Halting burst submission.")
				return nil
			}
		}
		return nil
	})
	_ = g.Wait()
	duration := time.Since(start)

	done := completed.Load()
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", done, totalBursts, duration.Round(time.Millisecond))
	if done > 0 && duration > 0 {
		fmt.Printf("Approximate records/sec: %s\n",
			humanize.Commaf(float64(done*logsPerBurst)/duration.Seconds()))
	}

	for id, st := range logger.Stats() {
		fmt.Printf("Sink %d before close: %v\n", id, st.Summary())
	}

	fmt.Println("Closing logger...")
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Close error: %v\n", err)
	}

	lines, err := countLines(filepath.Dir(cfg.Destination))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to count records: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Records still on disk after retention: %s\n", humanize.Comma(int64(lines)))
}

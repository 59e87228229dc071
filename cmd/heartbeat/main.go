// FILE: lixenwraith/sinklog/cmd/heartbeat/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/sinklog"
)

// Cycles the heartbeat on and off while a rotating file sink receives traffic
func main() {
	cfg, err := sinklog.NewConfigFromDefaults(map[string]any{
		"destination": "./logs/heartbeat.log",
		"level":       "DEBUG",
		"rotation":    "16 KB",
		"compression": "lz4",
		"retention":   "4",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build config: %v\n", err)
		os.Exit(1)
	}

	logger := sinklog.NewLogger()
	if _, err := logger.AddConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add sink: %v\n", err)
		os.Exit(1)
	}
	// Heartbeat records also go to the console
	if _, err := logger.AddConfig(sinklog.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add console sink: %v\n", err)
		os.Exit(1)
	}

	phases := []struct {
		interval    time.Duration
		description string
	}{
		{0, "Heartbeats disabled"},
		{2 * time.Second, "Heartbeat every 2s"},
		{time.Second, "Heartbeat every 1s (restarted)"},
		{0, "Heartbeats disabled (final)"},
	}

	for _, phase := range phases {
		fmt.Printf("\n--- %s ---\n", phase.description)
		if phase.interval > 0 {
			logger.StartHeartbeat(phase.interval)
		} else {
			logger.StopHeartbeat()
		}

		for j := 0; j < 40; j++ {
			logger.Debug("Debug test log", "iteration", j, "phase", phase.description)
			logger.Info("Info test log", "iteration", j)
			logger.Warning("Warning test log", "iteration", j)
			time.Sleep(100 * time.Millisecond)
		}
	}

	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: close failed: %v\n", err)
	}
	fmt.Println("\nHeartbeat program completed; see ./logs")
}

// FILE: lixenwraith/sinklog/example/reconfig/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sinklog"
)

// Swaps file sinks under a logger that is being written to concurrently
func main() {
	dir, err := os.MkdirTemp("", "sinklog-reconfig")
	if err != nil {
		fmt.Printf("MkdirTemp error: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	var count atomic.Int64
	logger := sinklog.NewLogger()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			logger.Info("Test log", "i", i)
			count.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	var current sinklog.HandlerID
	for i := 0; i < 10; i++ {
		cfg := sinklog.DefaultConfig()
		cfg.Destination = filepath.Join(dir, fmt.Sprintf("gen%d.log", i))
		cfg.Rotation = fmt.Sprintf("%d KB", 4*(i+1))
		if i%2 == 1 {
			cfg.Enqueue = true
			cfg.QueueSize = int64(100 * (i + 1))
		}

		id, err := logger.AddConfig(cfg)
		if err != nil {
			fmt.Printf("AddConfig error: %v\n", err)
			continue
		}
		if current != 0 {
			if err := logger.Remove(current); err != nil {
				fmt.Printf("Remove error: %v\n", err)
			}
		}
		current = id
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	close(stop)
	wg.Wait()

	for id, st := range logger.Stats() {
		fmt.Printf("Active sink %d: %v\n", id, st.Summary())
	}
	if err := logger.Close(); err != nil {
		fmt.Printf("Close error: %v\n", err)
	}

	entries, _ := os.ReadDir(dir)
	fmt.Printf("Records attempted: %d, files written: %d\n", count.Load(), len(entries))
}

// FILE: lixenwraith/sinklog/example/raw/main.go
package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/sanitizer"
)

type testPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

// Renders the same record under every serialization mode and sanitize policy
func main() {
	fmt.Println("--- Serialization Modes ---")

	payload := testPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics:   map[string]float64{"latency_ms": 15.7, "cpu_percent": 88.2},
	}
	binary := []byte("binary\ndata\twith\x00null")

	for _, mode := range []string{"template", "json", "raw"} {
		for _, policy := range []sanitizer.PolicyPreset{
			sanitizer.PolicyRaw, sanitizer.PolicyText, sanitizer.PolicyLine, sanitizer.PolicyJSON, sanitizer.PolicyShell,
		} {
			f := formatter.New(sanitizer.New().Policy(policy)).Type(mode)
			sink, err := sinklog.NewStreamSink(os.Stdout, f)
			if err != nil {
				fmt.Printf("%s/%s: %v\n", mode, policy, err)
				continue
			}

			logger := sinklog.NewLogger()
			logger.Add(sink)
			fmt.Printf("\n[%s, sanitize=%s]\n", mode, policy)
			logger.Info("payload received\nsecond line", "bytes", binary, "payload", payload)
			_ = logger.Close()
		}
	}
}

// FILE: lixenwraith/sinklog/benchmark_test.go
package sinklog

import (
	"path/filepath"
	"testing"

	"github.com/lixenwraith/sinklog/formatter"
)

// createBenchLogger creates a logger with one file sink in a temp directory
func createBenchLogger(b *testing.B, opts ...FileOption) *Logger {
	b.Helper()
	sink, err := NewFileSink(filepath.Join(b.TempDir(), "bench.log"), opts...)
	if err != nil {
		b.Fatal(err)
	}
	l := NewLogger()
	l.Add(sink)
	b.Cleanup(func() { l.Close() })
	return l
}

// BenchmarkLoggerInfo benchmarks the performance of standard Info logging
func BenchmarkLoggerInfo(b *testing.B) {
	logger := createBenchLogger(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "i", i)
	}
}

// BenchmarkLoggerJSON benchmarks the performance of JSON formatted logging
func BenchmarkLoggerJSON(b *testing.B) {
	logger := createBenchLogger(b, WithFormatter(formatter.New().Type(formatter.ModeJSON)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "i", i, "key", "value")
	}
}

// BenchmarkLoggerRotating benchmarks logging with frequent size rotation and compression
func BenchmarkLoggerRotating(b *testing.B) {
	logger := createBenchLogger(b, WithRotationSpec("64 KB"), WithCompression("zst"), WithRetentionSpec("5"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "i", i)
	}
}

// BenchmarkConcurrentLogging benchmarks the logger's performance under concurrent load
func BenchmarkConcurrentLogging(b *testing.B) {
	logger := createBenchLogger(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			logger.Info("concurrent benchmark", "i", i)
			i++
		}
	})
}

// BenchmarkDisabledLevel benchmarks the cost of a call below every sink threshold
func BenchmarkDisabledLevel(b *testing.B) {
	l := NewLogger()
	l.Add(&collectSink{}, WithLevel(LevelError))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Debug("filtered", "i", i)
	}
}

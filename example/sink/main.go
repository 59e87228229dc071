// FILE: lixenwraith/sinklog/example/sink/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/record"
)

const logDirectory = "./temp_logs"

// Routes one stream of records to several sinks with their own gates
func main() {
	if err := os.RemoveAll(logDirectory); err != nil {
		fmt.Printf("Warning: could not remove old log directory: %v\n", err)
	}

	logger := sinklog.NewLogger()

	// Everything, rotated and compressed
	all, err := sinklog.NewFileSink(filepath.Join(logDirectory, "all.log"),
		sinklog.WithRotationSpec("64 KB"),
		sinklog.WithCompression("gz"),
		sinklog.WithRetentionSpec("3"),
	)
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}
	logger.Add(all)

	// Errors only, as JSON, synced per record
	errs, err := sinklog.NewFileSink(filepath.Join(logDirectory, "errors.json"),
		sinklog.WithFormatter(formatter.New().Type("json")),
		sinklog.WithDurability(sinklog.DurabilitySync, 0),
	)
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}
	logger.Add(errs, sinklog.WithLevel(record.LevelError))

	// Console shows warnings from the db module only
	console, err := sinklog.NewStreamSink(os.Stdout, formatter.New().Template("{level:<8} | {name} | {message}"))
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}
	logger.Add(console, sinklog.WithFilter(sinklog.AllOf(
		sinklog.LevelRange(record.LevelWarning, record.LevelCritical),
		sinklog.ModuleFilter([]string{"db"}, false),
	)))

	// Alert hook for critical records
	alerts, err := sinklog.NewCallbackSink(func(r *record.Record, line []byte) error {
		fmt.Printf("ALERT: %s", line)
		return nil
	}, formatter.New().Template("{time:HH:mm:ss} {message}"))
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}
	logger.Add(alerts, sinklog.WithLevel(record.LevelCritical))

	db := logger.Named("db").Bind("pool", "primary")
	http := logger.Named("http")
	for i := 0; i < 2000; i++ {
		http.Info("request served", "id", i, "status", 200)
		if i%250 == 0 {
			db.Warning("slow query", "id", i, "ms", 850)
		}
		if i%700 == 0 {
			http.Error("upstream timeout", "id", i)
		}
	}
	db.Critical("replica lost", "replica", "db-2")

	for id, st := range logger.Stats() {
		fmt.Printf("Sink %d: %v\n", id, st.Summary())
	}
	if err := logger.Close(); err != nil {
		fmt.Printf("Close error: %v\n", err)
	}

	entries, _ := os.ReadDir(logDirectory)
	for _, e := range entries {
		fmt.Println(" -", e.Name())
	}
}

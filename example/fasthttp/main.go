// FILE: lixenwraith/sinklog/example/fasthttp/main.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/compat"
	"github.com/lixenwraith/sinklog/record"
	"github.com/valyala/fasthttp"
)

func main() {
	logger, err := sinklog.NewBuilder().
		File("/var/log/fasthttp/server.log").
		LevelString("info").
		Rotation("100 MB").
		Compression("zst").
		Retention("30 days").
		Enqueue(2048, "drop").
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Close()

	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(record.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

// customLevelDetector handles known fasthttp messages before falling back to keyword detection
func customLevelDetector(msg string) (record.Level, bool) {
	if strings.Contains(msg, "connection cannot be served") {
		return record.LevelWarning, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return record.LevelError, true
	}
	return compat.DetectLogLevel(msg)
}

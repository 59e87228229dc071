// FILE: lixenwraith/sinklog/compat/builder.go
package compat

import (
	"github.com/lixenwraith/sinklog"
	"github.com/pkg/errors"
)

// Builder creates adapters for gnet, fasthttp and Fiber sharing one logger.
// The logger is either supplied with WithLogger or created from a Config.
type Builder struct {
	logger *sinklog.Logger
	cfg    *sinklog.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger uses an existing logger for the adapters. WithConfig is then ignored.
func (b *Builder) WithLogger(l *sinklog.Logger) *Builder {
	if l == nil {
		b.err = errors.New("sinklog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig sets the configuration of the logger created when WithLogger is not used.
// Without either, the logger is built from sinklog.DefaultConfig.
func (b *Builder) WithConfig(cfg *sinklog.Config) *Builder {
	b.cfg = cfg
	return b
}

func (b *Builder) getLogger() (*sinklog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.logger != nil {
		return b.logger, nil
	}

	cfg := b.cfg
	if cfg == nil {
		cfg = sinklog.DefaultConfig()
	}
	l := sinklog.NewLogger()
	if _, err := l.AddConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "sinklog/compat: build logger")
	}

	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that records key=value placeholders as extra fields
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewStructuredGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// BuildFiber creates a Fiber adapter
func (b *Builder) BuildFiber(opts ...FiberOption) (*FiberAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFiberAdapter(l, opts...), nil
}

// GetLogger returns the underlying logger, creating it if needed
func (b *Builder) GetLogger() (*sinklog.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	appLogger, err := sinklog.NewBuilder().
//		File("/var/log/app/server.log").
//		Rotation("100 MB").
//		Compression("gz").
//		Retention("10 days").
//		Build()
//	if err != nil { /* handle error */ }
//	defer appLogger.Close()
//
//	builder := compat.NewBuilder().WithLogger(appLogger)
//	gnetLogger, _ := builder.BuildGnet()
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//	go server.ListenAndServe(":8080")

// FILE: lixenwraith/sinklog/example/gnet/main.go
package main

import (
	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/compat"
	"github.com/panjf2000/gnet/v2"
)

type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	logger, err := sinklog.NewBuilder().
		File("/var/log/gnet/server.log").
		LevelString("debug").
		Serialize("json").
		Rotation("50 MB, daily").
		Compression("gz").
		Retention("14").
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Close()

	gnetAdapter, err := compat.NewBuilder().WithLogger(logger).BuildStructuredGnet()
	if err != nil {
		panic(err)
	}

	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}

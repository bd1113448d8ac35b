package http

import (
	"net"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// CREATED the server instance was created
	CREATED = uint8(iota)
	// STARTING the server instance is starting
	STARTING
	// READY the server instance is ready
	READY
	// RESTARTING the server instance is restarting
	RESTARTING
	// CLOSED the server instance was stopped
	CLOSED
)

const (
	// CLOSE close signal
	CLOSE = uint8(iota)
	// RESTART restart signal
	RESTART
	// ERROR error signal
	ERROR
)

// Option configures the ingest/retrieval HTTP server.
type Option struct {
	Port    int           `json:"port,omitempty"`
	Host    string        `json:"host,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Server wraps a gin.Engine with the start/stop/restart lifecycle the
// rest of this package's siblings use, plus gzip response compression.
type Server struct {
	router *gin.Engine
	addr   net.Addr
	signal chan uint8
	event  chan uint8
	status uint8
	option *Option
}

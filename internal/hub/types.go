package hub

import (
	"errors"
	"time"
)

// Errors
var (
	ErrQueueFull = errors.New("subscriber send queue full")
	ErrClosed    = errors.New("subscriber closed")
)

// Conn is the write side of a WebSocket connection.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Config configures subscriber writers.
type Config struct {
	WriteTimeout  time.Duration // Write deadline for each frame
	PingInterval  time.Duration // Keepalive ping period, 0 disables pings
	SendQueueSize int           // Max frames buffered per subscriber
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:  10 * time.Second,
		PingInterval:  30 * time.Second,
		SendQueueSize: 256,
	}
}

// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"
)

// ServerStarter starts the API server and blocks until it stops
type ServerStarter interface {
	StartServer(ctx context.Context, config ServerConfig, runs RunStore, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}

// Package di provides dependency injection container
package di

import (
	"log/slog"

	"github.com/ssargent/blockfile/pkg/api"
	"github.com/ssargent/blockfile/pkg/catalog"
)

// CatalogOpener opens the run catalog stored in dir
type CatalogOpener func(dir string, logger *slog.Logger) (*catalog.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	catalogOpener CatalogOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		catalogOpener: catalog.Open,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenCatalog opens the run catalog through the configured opener
func (c *Container) OpenCatalog(dir string, logger *slog.Logger) (*catalog.Catalog, error) {
	return c.catalogOpener(dir, logger)
}

// SetCatalogOpener allows overriding how the catalog is opened (for testing)
func (c *Container) SetCatalogOpener(opener CatalogOpener) {
	c.catalogOpener = opener
}

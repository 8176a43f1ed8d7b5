package di

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blockfile/pkg/api"
	"github.com/ssargent/blockfile/pkg/catalog"
)

type stubStarter struct{}

func (stubStarter) StartServer(context.Context, api.ServerConfig, api.RunStore, *slog.Logger) error {
	return nil
}

type stubFactory struct{}

func (stubFactory) CreateServerStarter() api.ServerStarter {
	return stubStarter{}
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()
	assert.NotNil(t, c.GetServerFactory())
	assert.NotNil(t, c.GetServerFactory().CreateServerStarter())

	cat, err := c.OpenCatalog(t.TempDir(), nil)
	require.NoError(t, err)
	assert.NoError(t, cat.Close())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()

	c.SetServerFactory(stubFactory{})
	_, ok := c.GetServerFactory().CreateServerStarter().(stubStarter)
	assert.True(t, ok)

	errBoom := errors.New("boom")
	c.SetCatalogOpener(func(string, *slog.Logger) (*catalog.Catalog, error) {
		return nil, errBoom
	})
	_, err := c.OpenCatalog("ignored", nil)
	assert.ErrorIs(t, err, errBoom)
}

// Package di provides dependency injection container
package di

import (
	"log/slog"

	"github.com/ssargent/maplink/pkg/config"
	"github.com/ssargent/maplink/pkg/convert"
	"github.com/ssargent/maplink/pkg/metrics"
	"github.com/ssargent/maplink/pkg/storage"
)

// Container holds all the dependencies for the application
type Container struct {
	storage convert.Storage
	metrics *metrics.Metrics
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		storage: storage.NewFileStorage(0644),
		metrics: metrics.New(),
	}
}

// GetStorage returns the storage used for inputs and outputs
func (c *Container) GetStorage() convert.Storage {
	return c.storage
}

// SetStorage allows overriding the storage (for testing)
func (c *Container) SetStorage(s convert.Storage) {
	c.storage = s
}

// GetMetrics returns the run metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// NewConverter builds a converter for cfg from the container's dependencies
func (c *Container) NewConverter(cfg *config.Config, logger *slog.Logger) *convert.Converter {
	return convert.NewConverter(cfg, c.storage, c.metrics, logger)
}

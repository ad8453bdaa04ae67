package datasource

import (
	"sync"

	"github.com/friendsofgo/errors"
	"github.com/go-logr/logr"
)

// Factory builds data sources wired to a driver and the registered
// extensions. It is safe for concurrent use.
type Factory struct {
	manager *DriverFactoryManager
	logger  logr.Logger

	mu         sync.RWMutex
	extensions []Extension
	pagination *PaginationConfig
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithFactoryLogger sets the logger handed to every data source.
func WithFactoryLogger(logger logr.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithDefaultPagination sets the pagination defaults of every data source.
func WithDefaultPagination(config *PaginationConfig) FactoryOption {
	return func(f *Factory) {
		if config != nil {
			c := *config
			f.pagination = &c
		}
	}
}

// NewFactory creates a Factory over manager. Extensions are applied, in
// order, to every data source the factory creates.
func NewFactory(manager *DriverFactoryManager, extensions []Extension, opts ...FactoryOption) (*Factory, error) {
	if manager == nil {
		return nil, configErr("factory", "", errors.Wrap(ErrInvalidOption, "driver factory manager is nil"))
	}
	f := &Factory{
		manager:    manager,
		logger:     logr.Discard(),
		pagination: NewPaginationConfig(),
	}
	for _, ext := range extensions {
		if ext == nil {
			continue
		}
		f.extensions = append(f.extensions, ext)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// AddExtension registers an extension for data sources created afterwards.
func (f *Factory) AddExtension(ext Extension) {
	if ext == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extensions = append(f.extensions, ext)
}

// Extensions returns the registered extensions in registration order.
func (f *Factory) Extensions() []Extension {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Extension(nil), f.extensions...)
}

// DriverFactoryManager returns the manager the factory resolves drivers with.
func (f *Factory) DriverFactoryManager() *DriverFactoryManager {
	return f.manager
}

// CreateDataSource creates a driver of type driverName from driverOptions and
// a data source named name over it. Unknown drivers, invalid names and driver
// construction failures are reported as *ConfigurationError.
func (f *Factory) CreateDataSource(driverName string, driverOptions Options, name string) (*DataSource, error) {
	if !namePattern.MatchString(name) {
		return nil, configErr("data source", name, errors.Wrap(ErrInvalidName, "name must match [A-Za-z0-9_]+"))
	}

	df, err := f.manager.GetFactory(driverName)
	if err != nil {
		return nil, err
	}
	driver, err := df.CreateDriver(driverOptions)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, configErr("driver", driverName, err)
	}

	ds, err := New(name, driver,
		WithLogger(f.logger),
		WithPagination(f.pagination),
		WithExtensions(f.Extensions()...),
	)
	if err != nil {
		return nil, err
	}

	f.logger.V(1).Info("data source created", "datasource", name, "driver", driverName)
	return ds, nil
}

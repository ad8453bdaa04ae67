package datasource

import (
	"slices"
	"sync"

	"github.com/friendsofgo/errors"
)

// FieldTypes is a per-driver registry of field types keyed by type name.
// Drivers embed it to implement Driver.FieldType.
type FieldTypes struct {
	types map[string]FieldType
}

// LoadFieldTypes collects the field types every extension contributes to
// driverType. Later extensions override earlier ones for the same name.
func LoadFieldTypes(driverType string, exts ...DriverExtension) FieldTypes {
	ft := FieldTypes{types: map[string]FieldType{}}
	for _, ext := range exts {
		if !slices.Contains(ext.ExtendedDriverTypes(), driverType) {
			continue
		}
		for _, t := range ext.FieldTypes() {
			ft.types[t.Type()] = t
		}
	}
	return ft
}

// FieldType returns the registered type or a *ConfigurationError.
func (f FieldTypes) FieldType(name string) (FieldType, error) {
	if t, ok := f.types[name]; ok {
		return t, nil
	}
	return nil, configErr("field type", name, ErrUnknownFieldType)
}

// Names lists the registered type names in lexical order.
func (f FieldTypes) Names() []string {
	names := make([]string, 0, len(f.types))
	for name := range f.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DriverFactoryManager holds the driver factories known to a Factory.
// It is safe for concurrent use.
type DriverFactoryManager struct {
	mu        sync.RWMutex
	factories map[string]DriverFactory
}

// NewDriverFactoryManager registers the given factories. It fails on the
// first duplicate driver type.
func NewDriverFactoryManager(factories ...DriverFactory) (*DriverFactoryManager, error) {
	m := &DriverFactoryManager{factories: map[string]DriverFactory{}}
	for _, f := range factories {
		if err := m.AddFactory(f); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddFactory registers f under its driver type.
func (m *DriverFactoryManager) AddFactory(f DriverFactory) error {
	if f == nil {
		return configErr("driver", "", errors.Wrap(ErrInvalidOption, "nil driver factory"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.factories == nil {
		m.factories = map[string]DriverFactory{}
	}
	name := f.DriverType()
	if _, exists := m.factories[name]; exists {
		return configErr("driver", name, ErrDuplicateDriver)
	}
	m.factories[name] = f
	return nil
}

// HasFactory reports whether a factory for driverType is registered.
func (m *DriverFactoryManager) HasFactory(driverType string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.factories[driverType]
	return ok
}

// GetFactory returns the factory for driverType or a *ConfigurationError.
func (m *DriverFactoryManager) GetFactory(driverType string) (DriverFactory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factories[driverType]
	if !ok {
		return nil, configErr("driver", driverType, ErrUnknownDriver)
	}
	return f, nil
}

// DriverTypes lists the registered driver types in lexical order.
func (m *DriverFactoryManager) DriverTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.factories))
	for name := range m.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

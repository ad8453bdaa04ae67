package collection

import (
	"github.com/friendsofgo/errors"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/field"
)

// Factory creates collection drivers from the "collection" option.
type Factory struct {
	extensions []datasource.DriverExtension
}

// NewFactory creates a factory whose drivers load field types from exts.
func NewFactory(exts ...datasource.DriverExtension) *Factory {
	return &Factory{extensions: exts}
}

func (f *Factory) DriverType() string { return DriverType }

func (f *Factory) CreateDriver(options datasource.Options) (datasource.Driver, error) {
	items, ok := options[OptionCollection]
	if !ok {
		return nil, &datasource.ConfigurationError{
			Subject: "driver",
			Name:    DriverType,
			Err:     errors.Wrapf(datasource.ErrInvalidOption, "missing %q option", OptionCollection),
		}
	}
	return New(items, f.extensions...)
}

// CoreExtension contributes the core field types to collection drivers.
type CoreExtension struct {
	types []datasource.FieldType
}

// NewCoreExtension configures the core field types with opts.
func NewCoreExtension(opts ...field.Option) *CoreExtension {
	return &CoreExtension{types: field.Core(opts...)}
}

func (e *CoreExtension) ExtendedDriverTypes() []string      { return []string{DriverType} }
func (e *CoreExtension) FieldTypes() []datasource.FieldType { return e.types }

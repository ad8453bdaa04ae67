package datasource

import "fmt"

const (
	// DefaultMaxResults is the page size used when none is bound. Zero means
	// unlimited.
	DefaultMaxResults = 0

	// DefaultMaxResultsCap is the default maximum page size a caller may bind.
	// This protects against resource exhaustion from unreasonably large page requests.
	DefaultMaxResultsCap = 1000
)

// PaginationConfig holds pagination configuration options.
// Use NewPaginationConfig() to create a config with sensible defaults,
// then customize using the With* methods.
//
// Example:
//
//	config := datasource.NewPaginationConfig().WithMaxResultsCap(500)
//	limit := config.EffectiveMaxResults(requested)
type PaginationConfig struct {
	// DefaultMaxResults is the page size used when the parameters carry none.
	DefaultMaxResults int

	// MaxResultsCap is the maximum page size accepted from parameters.
	// Requests exceeding this are capped (not rejected). Zero disables the cap.
	MaxResultsCap int
}

// NewPaginationConfig creates a PaginationConfig with sensible defaults:
// - DefaultMaxResults: 0 (unlimited)
// - MaxResultsCap: 1000
func NewPaginationConfig() *PaginationConfig {
	return &PaginationConfig{
		DefaultMaxResults: DefaultMaxResults,
		MaxResultsCap:     DefaultMaxResultsCap,
	}
}

// WithDefaultMaxResults sets the default page size and returns the config for chaining.
func (c *PaginationConfig) WithDefaultMaxResults(n int) *PaginationConfig {
	if n >= 0 {
		c.DefaultMaxResults = n
	}
	return c
}

// WithMaxResultsCap sets the maximum page size and returns the config for chaining.
func (c *PaginationConfig) WithMaxResultsCap(n int) *PaginationConfig {
	if n >= 0 {
		c.MaxResultsCap = n
	}
	return c
}

// EffectiveMaxResults returns the page size to use for a bound value, applying
// the cap:
// - If requested is zero (unlimited) and a cap is set, returns the cap
// - If requested exceeds MaxResultsCap, returns MaxResultsCap
// - Otherwise returns requested
func (c *PaginationConfig) EffectiveMaxResults(requested int) int {
	if c == nil {
		c = NewPaginationConfig()
	}
	if c.MaxResultsCap <= 0 {
		return requested
	}
	if requested <= 0 || requested > c.MaxResultsCap {
		return c.MaxResultsCap
	}
	return requested
}

// Validate checks whether requested exceeds MaxResultsCap and returns an error if so.
// Unlike EffectiveMaxResults which caps silently, Validate returns an error for
// explicit rejection of invalid requests.
func (c *PaginationConfig) Validate(requested int) error {
	if c == nil {
		c = NewPaginationConfig()
	}
	if requested < 0 {
		return &MaxResultsError{Requested: requested, Maximum: c.MaxResultsCap}
	}
	if c.MaxResultsCap > 0 && requested > c.MaxResultsCap {
		return &MaxResultsError{Requested: requested, Maximum: c.MaxResultsCap}
	}
	return nil
}

// MaxResultsError is returned when the requested page size is negative or
// exceeds the maximum allowed.
type MaxResultsError struct {
	Requested int
	Maximum   int
}

func (e *MaxResultsError) Error() string {
	if e.Requested < 0 {
		return fmt.Sprintf("requested page size %d is negative", e.Requested)
	}
	return fmt.Sprintf("requested page size %d exceeds maximum allowed page size of %d",
		e.Requested, e.Maximum)
}

func (e *MaxResultsError) Unwrap() error { return ErrInvalidValue }

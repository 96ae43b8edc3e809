package atlas

import "math/bits"

// Page size limits.
const (
	// DefaultPageSize is the default page dimension (1024x1024).
	DefaultPageSize = 1024

	// MaxPageSize is the largest page dimension accepted.
	MaxPageSize = 16384
)

// Config holds atlas configuration.
type Config struct {
	// PageSize is the page width and height in pixels. It is rounded up to
	// the next power of two.
	// Default: 1024
	PageSize int

	// MaxPages limits the number of pages. Zero means unlimited.
	MaxPages int

	// Label names the atlas in log output.
	Label string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
		Label:    "atlas",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return &ConfigError{Field: "PageSize", Reason: "must be positive"}
	}
	if c.PageSize > MaxPageSize {
		return &ConfigError{Field: "PageSize", Reason: "must be at most 16384"}
	}
	if c.MaxPages < 0 {
		return &ConfigError{Field: "MaxPages", Reason: "must be non-negative"}
	}
	return nil
}

// nextPowerOfTwo rounds n up to a power of two. n must be positive.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

package pool

import (
	"fmt"
	"time"
)

// Default values for a pool Config.
const (
	DefaultMaxResources   = 4
	DefaultAcquireTimeout = 60 * time.Second
	DefaultResetTimeout   = 5 * time.Second

	// creationFactor sizes the default lifetime creation cap as a multiple
	// of capacity.
	creationFactor = 4
)

// Config sizes and times a Pool.
type Config struct {
	// MaxResources is the pool capacity: the maximum number of
	// concurrently leased resources. Must be at least 1.
	MaxResources int `yaml:"max_resources"`

	// AcquireTimeout bounds how long Acquire waits for a permit.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`

	// ResetTimeout bounds the soft reset performed on Release.
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// MaxCreations caps resources created over the pool lifetime.
	// Zero means MaxResources*4, a negative value means unlimited.
	MaxCreations int `yaml:"max_creations"`
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() Config {
	return Config{
		MaxResources:   DefaultMaxResources,
		AcquireTimeout: DefaultAcquireTimeout,
		ResetTimeout:   DefaultResetTimeout,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MaxResources < 1 {
		return fmt.Errorf("%w: max_resources must be at least 1, got %d", ErrInvalidConfig, c.MaxResources)
	}
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("%w: acquire_timeout must not be negative", ErrInvalidConfig)
	}
	if c.ResetTimeout < 0 {
		return fmt.Errorf("%w: reset_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// withDefaults fills zero durations with their defaults.
func (c Config) withDefaults() Config {
	if c.AcquireTimeout == 0 {
		c.AcquireTimeout = DefaultAcquireTimeout
	}
	if c.ResetTimeout == 0 {
		c.ResetTimeout = DefaultResetTimeout
	}
	return c
}

// creationLimit returns the lifetime creation cap, or -1 when unlimited.
func (c Config) creationLimit() int {
	switch {
	case c.MaxCreations < 0:
		return -1
	case c.MaxCreations == 0:
		return c.MaxResources * creationFactor
	case c.MaxCreations < c.MaxResources:
		return c.MaxResources
	default:
		return c.MaxCreations
	}
}

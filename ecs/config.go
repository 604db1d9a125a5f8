package ecs

import (
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Allocator strategies accepted by Config.Allocator.
const (
	AllocatorMonotonic = "monotonic"
	AllocatorRing      = "ring"
	AllocatorFreeList  = "freelist"
)

// Config holds the storage settings that can be supplied through the environment.
type Config struct {
	TableCapacity int    `env:"ECS_TABLE_CAPACITY" envDefault:"64"`
	Allocator     string `env:"ECS_ALLOCATOR"      envDefault:"freelist"`
	RingSize      int    `env:"ECS_RING_SIZE"      envDefault:"65536"`
	LogLevel      string `env:"ECS_LOG_LEVEL"      envDefault:"info"`
}

// LoadConfig reads Config from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "failed to parse config from environment")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, eris.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TableCapacity <= 0 {
		return eris.Errorf("ECS_TABLE_CAPACITY must be positive, got %d", c.TableCapacity)
	}
	switch c.Allocator {
	case AllocatorMonotonic, AllocatorFreeList:
	case AllocatorRing:
		if c.RingSize <= 0 {
			return eris.Errorf("ECS_RING_SIZE must be positive, got %d", c.RingSize)
		}
	default:
		return eris.Errorf("ECS_ALLOCATOR must be one of %s, %s or %s, got %q",
			AllocatorMonotonic, AllocatorRing, AllocatorFreeList, c.Allocator)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrapf(err, "ECS_LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// NewAllocator builds the allocator named by the config.
func (c Config) NewAllocator() EntityAllocator {
	switch c.Allocator {
	case AllocatorMonotonic:
		return NewMonotonicAllocator()
	case AllocatorRing:
		return NewRingAllocator(c.RingSize)
	default:
		return NewFreeListAllocator()
	}
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithConfig applies the allocator and table capacity from cfg and lowers the storage
// logger to cfg's level.
func WithConfig(cfg Config) Option {
	return func(s *Storage) {
		s.allocator = cfg.NewAllocator()
		s.tableCapacity = max(cfg.TableCapacity, MinTableCapacity)
		s.logger = s.logger.Level(cfg.Level())
	}
}

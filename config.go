package smapgo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/smapgo/largefile"
)

// Config describes the on-disk shape of an smap.
type Config struct {
	// Partitions is the number of partition slots to create (1..PartitionsMax).
	Partitions int `yaml:"partitions"`

	// TileSize is the tile granularity of each partition file in bytes.
	TileSize int `yaml:"tile_size"`

	// InitialTiles is the number of tiles each partition file starts with.
	InitialTiles int `yaml:"initial_tiles"`

	// Compression selects the largefile codec: "none", "lz4" or "zstd".
	Compression string `yaml:"compression"`
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		Partitions:   1,
		TileSize:     32 * 1024,
		InitialTiles: 1,
		Compression:  "zstd",
	}
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("smap: read config %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("smap: parse config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.Partitions < 1 || c.Partitions > PartitionsMax {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidPartitionCount, c.Partitions, PartitionsMax)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("smap: tile size must be positive, got %d", c.TileSize)
	}
	if c.InitialTiles <= 0 {
		return fmt.Errorf("smap: initial tile count must be positive, got %d", c.InitialTiles)
	}
	switch c.Compression {
	case "", "none", "lz4", "zstd":
	default:
		return fmt.Errorf("smap: unknown compression %q", c.Compression)
	}
	return nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Partitions == 0 {
		c.Partitions = def.Partitions
	}
	if c.TileSize == 0 {
		c.TileSize = def.TileSize
	}
	if c.InitialTiles == 0 {
		c.InitialTiles = def.InitialTiles
	}
	if c.Compression == "" {
		c.Compression = def.Compression
	}
	return c
}

func (c Config) compression() largefile.Compression {
	switch c.Compression {
	case "lz4":
		return largefile.CompressionLZ4
	case "zstd":
		return largefile.CompressionZSTD
	default:
		return largefile.CompressionNone
	}
}

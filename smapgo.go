package smapgo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/smapgo/internal/fs"
	"github.com/hupe1980/smapgo/largefile"
	"github.com/hupe1980/smapgo/resource"
	"github.com/hupe1980/smapgo/tiled"
)

// Handle is the process-scoped context every smap operation runs against.
// It owns the diagnostic log sink, the metrics collector, the filesystem
// implementation, and the resource controller; it is created once by the
// embedding engine and outlives all structures opened through it.
type Handle struct {
	logger  *Logger
	metrics MetricsCollector
	fsys    fs.FileSystem
	res     *resource.Controller

	// Scratch buffers for partition path construction; the removal loop
	// builds PartitionsMax paths into one buffer.
	pathBufs sync.Pool
}

// NewHandle creates a Handle with the given options.
func NewHandle(optFns ...Option) *Handle {
	opts := options{
		logger:  NewLogger(nil),
		metrics: NoopMetricsCollector{},
		fsys:    fs.Default,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &Handle{
		logger:  opts.logger,
		metrics: opts.metrics,
		fsys:    opts.fsys,
		res:     opts.res,
	}
	h.pathBufs.New = func() any {
		buf := make([]byte, 0, 256)
		return &buf
	}

	return h
}

// Logger returns the handle's diagnostic log sink.
func (h *Handle) Logger() *Logger { return h.logger }

// largefiles returns the overflow blob store bound to this handle's
// filesystem, log sink and IO budget.
func (h *Handle) largefiles(compression largefile.Compression) *largefile.Store {
	return &largefile.Store{
		FS:          h.fsys,
		Logger:      h.logger.Logger,
		IO:          h.res,
		Compression: compression,
	}
}

// Smap is an open, directory-backed structure composed of an ordered,
// contiguous sequence of partition slots. At most one slot in the live set
// lacks a backing tiled descriptor.
type Smap struct {
	h      *Handle
	dir    string
	cfg    Config
	parts  []partition
	closed bool
}

// Create initializes a new smap under dir: the directory itself plus
// cfg.Partitions partition files, each opened as a tiled descriptor. The
// last slot becomes the current partition.
func Create(ctx context.Context, h *Handle, dir string, cfg Config) (*Smap, error) {
	start := time.Now()
	s, err := create(ctx, h, dir, cfg)
	h.metrics.RecordCreate(time.Since(start), err)
	return s, err
}

func create(ctx context.Context, h *Handle, dir string, cfg Config) (*Smap, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := h.fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("smap: create directory %q: %w", dir, err)
	}

	s := &Smap{h: h, dir: dir, cfg: cfg, parts: make([]partition, 0, cfg.Partitions)}

	for index := 0; index < cfg.Partitions; index++ {
		path := partitionPath(dir, index)
		td, err := tiled.Create(ctx, h.fsys, path, tiled.Options{
			TileSize:     cfg.TileSize,
			InitialTiles: cfg.InitialTiles,
			Controller:   h.res,
		})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("smap: create partition %q: %w", path, err)
		}
		s.parts = append(s.parts, partition{index: index, path: path, td: td})
	}

	return s, nil
}

// Open opens an existing smap under dir. Partition files are probed in
// index order; the contiguity invariant means the first missing slot ends
// the live set. ErrNotFound is returned when slot 0 is absent.
func Open(ctx context.Context, h *Handle, dir string) (*Smap, error) {
	start := time.Now()
	s, err := open(ctx, h, dir)
	h.metrics.RecordOpen(time.Since(start), err)
	return s, err
}

func open(ctx context.Context, h *Handle, dir string) (*Smap, error) {
	s := &Smap{h: h, dir: dir, cfg: DefaultConfig()}

	for index := 0; index < PartitionsMax; index++ {
		path := partitionPath(dir, index)
		if _, err := h.fsys.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				break
			}
			_ = s.Close()
			return nil, fmt.Errorf("smap: stat partition %q: %w", path, err)
		}

		td, err := tiled.Open(ctx, h.fsys, path, tiled.Options{Controller: h.res})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("smap: open partition %q: %w", path, err)
		}
		s.parts = append(s.parts, partition{index: index, path: path, td: td})
	}

	if len(s.parts) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, dir)
	}

	s.cfg.Partitions = len(s.parts)
	return s, nil
}

// Dir returns the directory backing the structure.
func (s *Smap) Dir() string { return s.dir }

// Partitions returns the number of live partition slots.
func (s *Smap) Partitions() int { return len(s.parts) }

// PutLarge stores an overflow value blob under the structure's directory.
func (s *Smap) PutLarge(ctx context.Context, id uint64, data []byte) error {
	if s.closed {
		return ErrClosed
	}
	return s.h.largefiles(s.cfg.compression()).Put(ctx, s.dir, id, data)
}

// GetLarge reads back an overflow value blob.
func (s *Smap) GetLarge(ctx context.Context, id uint64) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.h.largefiles(s.cfg.compression()).Get(ctx, s.dir, id)
}

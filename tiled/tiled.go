// Package tiled implements the memory-mapped, page-tiled backing file behind
// one smap partition.
//
// A tiled file starts with a fixed header carrying the magic number, format
// version, tile size and a flags word. Bit 0 of the flags word is the
// per-partition backup/versioning marker; toggling it rewrites the header in
// place and flushes the mapping. The body of the file is a sequence of
// fixed-size tiles addressed by index.
package tiled

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/smapgo/internal/fs"
	"github.com/hupe1980/smapgo/internal/mmap"
	"github.com/hupe1980/smapgo/resource"
)

const (
	magic   = "SMAPTILE" // 8 bytes
	version = 1

	// Header layout: magic [0:8], version [8:12], tile size [12:16],
	// flags [16:20]; the remainder is reserved.
	headerSize = 64

	versionOff  = 8
	tileSizeOff = 12
	flagsOff    = 16

	flagBackup = uint32(1) << 0
)

var (
	// ErrBadMagic is returned when a file does not look like a tiled file.
	ErrBadMagic = errors.New("tiled: bad magic")
	// ErrIncompatibleVersion is returned for unknown format versions.
	ErrIncompatibleVersion = errors.New("tiled: incompatible version")
	// ErrClosed is returned when operating on a closed descriptor.
	ErrClosed = errors.New("tiled: descriptor is closed")
	// ErrTileOutOfRange is returned for tile indices beyond the file body.
	ErrTileOutOfRange = errors.New("tiled: tile index out of range")
)

// Options configures Create and Open.
type Options struct {
	// TileSize is the tile granularity in bytes (Create only; Open reads it
	// from the header). Defaults to 32 KiB.
	TileSize int

	// InitialTiles is the number of tiles a new file starts with (Create
	// only). Defaults to 1.
	InitialTiles int

	// Controller, if non-nil, bounds the total mapped memory. The mapping is
	// reserved against it on open and released on close.
	Controller *resource.Controller
}

func (o Options) withDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = 32 * 1024
	}
	if o.InitialTiles <= 0 {
		o.InitialTiles = 1
	}
	return o
}

// Tiled is one open, memory-mapped tiled file.
type Tiled struct {
	fsys     fs.FileSystem
	path     string
	m        *mmap.Mapping
	res      *resource.Controller
	size     int64
	tileSize int
	closed   bool
}

// Create initializes a new tiled file at path and maps it read-write.
// The file must not already exist.
func Create(ctx context.Context, fsys fs.FileSystem, path string, opts Options) (*Tiled, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	opts = opts.withDefaults()

	f, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	header := make([]byte, headerSize)
	copy(header[:8], magic)
	binary.LittleEndian.PutUint32(header[versionOff:], version)
	binary.LittleEndian.PutUint32(header[tileSizeOff:], uint32(opts.TileSize))
	binary.LittleEndian.PutUint32(header[flagsOff:], 0)

	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("tiled: write header: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("tiled: sync header: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	size := int64(headerSize) + int64(opts.TileSize)*int64(opts.InitialTiles)
	if err := fsys.Truncate(path, size); err != nil {
		return nil, fmt.Errorf("tiled: size file to %d bytes: %w", size, err)
	}

	return openMapped(ctx, fsys, path, opts.Controller)
}

// Open maps an existing tiled file read-write, validating its header.
func Open(ctx context.Context, fsys fs.FileSystem, path string, opts Options) (*Tiled, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	return openMapped(ctx, fsys, path, opts.Controller)
}

func openMapped(ctx context.Context, fsys fs.FileSystem, path string, res *resource.Controller) (*Tiled, error) {
	fi, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size < headerSize {
		return nil, fmt.Errorf("%w: file too small (%d < %d)", ErrBadMagic, size, headerSize)
	}

	if err := res.AcquireMemory(ctx, size); err != nil {
		return nil, fmt.Errorf("tiled: reserve %d mapped bytes: %w", size, err)
	}

	m, err := mmap.OpenFile(path, true)
	if err != nil {
		res.ReleaseMemory(size)
		return nil, err
	}

	data := m.Bytes()
	if string(data[:8]) != magic {
		_ = m.Close()
		res.ReleaseMemory(size)
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, path)
	}
	if v := binary.LittleEndian.Uint32(data[versionOff:]); v != version {
		_ = m.Close()
		res.ReleaseMemory(size)
		return nil, fmt.Errorf("%w: %d", ErrIncompatibleVersion, v)
	}
	if binary.LittleEndian.Uint32(data[tileSizeOff:]) == 0 {
		_ = m.Close()
		res.ReleaseMemory(size)
		return nil, fmt.Errorf("%w: zero tile size", ErrBadMagic)
	}

	return &Tiled{
		fsys:     fsys,
		path:     path,
		m:        m,
		res:      res,
		size:     size,
		tileSize: int(binary.LittleEndian.Uint32(data[tileSizeOff:])),
	}, nil
}

// Path returns the file backing this descriptor.
func (t *Tiled) Path() string { return t.path }

// TileSize returns the tile granularity in bytes.
func (t *Tiled) TileSize() int { return t.tileSize }

// Tiles returns the number of tiles in the file body.
func (t *Tiled) Tiles() int {
	return int((t.size - headerSize) / int64(t.tileSize))
}

// Tile returns the mapped bytes of the tile with the given index.
// The slice is valid until Close.
func (t *Tiled) Tile(index int) ([]byte, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if index < 0 || index >= t.Tiles() {
		return nil, fmt.Errorf("%w: %d of %d", ErrTileOutOfRange, index, t.Tiles())
	}
	off := headerSize + index*t.tileSize
	return t.m.Bytes()[off : off+t.tileSize], nil
}

// Backup reports whether the on-disk backup/versioning flag is set.
func (t *Tiled) Backup() bool {
	if t.closed {
		return false
	}
	return binary.LittleEndian.Uint32(t.m.Bytes()[flagsOff:])&flagBackup != 0
}

// SetBackup flips the on-disk backup/versioning marker and flushes the
// header so the flag survives a crash.
func (t *Tiled) SetBackup(enabled bool) error {
	if t == nil || t.closed {
		return ErrClosed
	}

	data := t.m.Bytes()
	flags := binary.LittleEndian.Uint32(data[flagsOff:])
	if enabled {
		flags |= flagBackup
	} else {
		flags &^= flagBackup
	}
	binary.LittleEndian.PutUint32(data[flagsOff:], flags)

	return t.m.Sync()
}

// Sync flushes the mapping back to disk.
func (t *Tiled) Sync() error {
	if t == nil || t.closed {
		return ErrClosed
	}
	return t.m.Sync()
}

// Close flushes and unmaps the file, releasing its memory reservation.
// It is idempotent and safe on a nil receiver.
func (t *Tiled) Close() error {
	if t == nil {
		return nil
	}
	if t.closed {
		return nil
	}
	t.closed = true

	err := t.m.Sync()
	if cerr := t.m.Close(); err == nil {
		err = cerr
	}
	t.res.ReleaseMemory(t.size)

	return err
}

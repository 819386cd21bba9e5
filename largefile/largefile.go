// Package largefile implements the overflow blob store of an smap directory.
//
// Values too large to store inline in a partition land here as individual
// "large-<id>.lf" files next to the partition files. Payloads are block
// compressed (LZ4 or ZSTD with a raw fallback for incompressible data).
//
// RemoveAll is the package's removal contract: it deletes every largefile
// belonging to a directory with the same idempotent, best-effort semantics
// as partition removal — missing files are success, every real failure is
// logged and removal continues, and the first real error is returned.
package largefile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/smapgo/internal/fs"
	"github.com/hupe1980/smapgo/resource"
)

const (
	prefix = "large-"
	ext    = ".lf"

	// blobMagic leads every largefile so stray files are never misread.
	blobMagic = "SMAPLF01" // 8 bytes

	blobHeaderSize = 9 // magic + codec byte
)

// ErrBadBlob is returned when a largefile does not carry the expected header.
var ErrBadBlob = errors.New("largefile: bad blob header")

// Basename returns the file name of the largefile with the given id,
// e.g. "large-000000000000002a.lf".
func Basename(id uint64) string {
	return fmt.Sprintf("%s%016x%s", prefix, id, ext)
}

// IsLargefile reports whether name is a largefile basename.
func IsLargefile(name string) bool {
	return len(name) == len(prefix)+16+len(ext) &&
		name[:len(prefix)] == prefix &&
		name[len(name)-len(ext):] == ext
}

// Store reads and writes overflow blobs for smap directories.
// The zero value uses the local filesystem, no logging and no IO limit.
type Store struct {
	FS          fs.FileSystem
	Logger      *slog.Logger
	IO          *resource.Controller
	Compression Compression
}

func (st *Store) fsys() fs.FileSystem {
	if st.FS == nil {
		return fs.Default
	}
	return st.FS
}

// Put stores data as the largefile id under dir. The blob is written to a
// temporary file and renamed into place so readers never observe a torn
// blob. Writes are paced against the store's IO budget.
func (st *Store) Put(ctx context.Context, dir string, id uint64, data []byte) error {
	block, err := compressBlock(data, st.Compression)
	if err != nil {
		return err
	}

	blob := make([]byte, blobHeaderSize+len(block))
	copy(blob, blobMagic)
	blob[blobHeaderSize-1] = byte(st.Compression)
	copy(blob[blobHeaderSize:], block)

	if err := st.IO.AcquireIO(ctx, len(blob)); err != nil {
		return err
	}

	fsys := st.fsys()
	target := filepath.Join(dir, Basename(id))
	tmp := target + ".tmp"

	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("largefile: create %q: %w", tmp, err)
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("largefile: write %q: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("largefile: sync %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("largefile: close %q: %w", tmp, err)
	}

	if err := fsys.Rename(tmp, target); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("largefile: rename %q: %w", target, err)
	}

	return nil
}

// Get reads back the largefile id from dir.
func (st *Store) Get(ctx context.Context, dir string, id uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, Basename(id))

	f, err := st.fsys().OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	blob, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("largefile: read %q: %w", path, err)
	}

	if len(blob) < blobHeaderSize || string(blob[:8]) != blobMagic {
		return nil, fmt.Errorf("%w: %q", ErrBadBlob, path)
	}

	return decompressBlock(blob[blobHeaderSize:], Compression(blob[blobHeaderSize-1]))
}

// RemoveAll deletes every largefile belonging to dir. A missing directory or
// missing files count as success so removal converges under repeated calls.
// Real failures are logged with their path and do not stop the sweep; the
// first one is returned.
func RemoveAll(dir string, logger *slog.Logger, fsys fs.FileSystem) error {
	if fsys == nil {
		fsys = fs.Default
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		logger.Error("listing largefiles failed",
			"dir", dir,
			"error", err,
		)
		return fmt.Errorf("largefile: list %q: %w", dir, err)
	}

	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || !IsLargefile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error("removing largefile failed",
				"path", path,
				"error", err,
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("largefile: remove %q: %w", path, err)
			}
		}
	}

	return firstErr
}

package smapgo

import (
	"github.com/hupe1980/smapgo/internal/fs"
	"github.com/hupe1980/smapgo/resource"
)

type options struct {
	logger  *Logger
	metrics MetricsCollector
	fsys    fs.FileSystem
	res     *resource.Controller
}

// Option configures a Handle.
type Option func(*options)

// WithLogger configures the diagnostic log sink shared by every operation
// performed through the handle. If nil is passed, a text logger to stderr
// is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NewLogger(nil)
		}
		o.logger = l
	}
}

// WithMetricsCollector configures operational metrics collection.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithFileSystem configures the filesystem implementation used for every
// file operation. Tests inject fs.FaultyFS through this to simulate
// partial removal failures.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fsys = fsys
	}
}

// WithResourceController configures the controller that bounds mapped
// memory and background IO. If nil is passed, no limits are enforced.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.res = rc
	}
}

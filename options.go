package layerfs

import (
	"fmt"
	"maps"
	"time"

	"github.com/mwantia/layerfs/log"
	"github.com/mwantia/layerfs/vpath"
)

type Options struct {
	IgnoreCase     bool
	InsertionOrder bool

	Cwd   string
	Time  time.Time
	Clock func() time.Time
	Meta  map[string]any
	Files FileSet

	MaxSymlinkDepth int
	ResolverTimeout time.Duration

	Logger        *log.Logger
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool
}

type Option func(*Options) error

func newDefaultOptions() *Options {
	return &Options{
		Cwd:             "/",
		MaxSymlinkDepth: 40,
		ResolverTimeout: 30 * time.Second,
		LogLevel:        log.Warn,
	}
}

// WithIgnoreCase makes name lookups case-insensitive.
func WithIgnoreCase() Option {
	return func(opts *Options) error {
		opts.IgnoreCase = true
		return nil
	}
}

// WithInsertionOrder lists directory entries in the order they were created
// instead of comparer order.
func WithInsertionOrder() Option {
	return func(opts *Options) error {
		opts.InsertionOrder = true
		return nil
	}
}

// WithCwd sets the initial working directory; it is created if missing.
// An empty cwd requires every path to be absolute.
func WithCwd(cwd string) Option {
	return func(opts *Options) error {
		if cwd != "" {
			if _, err := vpath.Validate(cwd, vpath.Absolute); err != nil {
				return err
			}
		}
		opts.Cwd = cwd
		return nil
	}
}

// WithTime fixes the clock at t.
func WithTime(t time.Time) Option {
	return func(opts *Options) error {
		opts.Time = t
		return nil
	}
}

// WithClock reads timestamps from fn.
func WithClock(fn func() time.Time) Option {
	return func(opts *Options) error {
		if fn == nil {
			return fmt.Errorf("clock function cannot be nil")
		}
		opts.Clock = fn
		return nil
	}
}

// WithMeta seeds the file system metadata record.
func WithMeta(meta map[string]any) Option {
	return func(opts *Options) error {
		if opts.Meta == nil {
			opts.Meta = make(map[string]any)
		}
		maps.Copy(opts.Meta, meta)
		return nil
	}
}

// WithFiles applies files relative to the working directory after creation.
func WithFiles(files FileSet) Option {
	return func(opts *Options) error {
		opts.Files = files
		return nil
	}
}

func WithMaxSymlinkDepth(depth int) Option {
	return func(opts *Options) error {
		if depth < 1 {
			return fmt.Errorf("symlink depth must be positive: %d", depth)
		}
		opts.MaxSymlinkDepth = depth
		return nil
	}
}

// WithResolverTimeout bounds every resolver call made while materializing mounts.
func WithResolverTimeout(timeout time.Duration) Option {
	return func(opts *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("resolver timeout must be positive: %s", timeout)
		}
		opts.ResolverTimeout = timeout
		return nil
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(opts *Options) error {
		opts.Logger = logger
		return nil
	}
}

func WithLogLevel(logLevel log.LogLevel) Option {
	return func(opts *Options) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithLogFile(logFile string) Option {
	return func(opts *Options) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithoutTerminalLog() Option {
	return func(opts *Options) error {
		opts.NoTerminalLog = true
		return nil
	}
}

package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader reads the source table once and caches it for its lifetime.
// Failed loads are not cached.
type Loader struct {
	path     string
	logger   *zap.Logger
	parallel int64

	group  singleflight.Group
	mu     sync.RWMutex
	cached *Dataset
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithParquetParallelism sets the Parquet reader's goroutine count.
func WithParquetParallelism(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.parallel = n
		}
	}
}

// NewLoader creates a loader for the table at path (.csv or .parquet).
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		path:     path,
		logger:   zap.NewNop(),
		parallel: 2,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the source path.
func (l *Loader) Path() string { return l.path }

// Load returns the cached dataset, reading the source on first use.
// Concurrent first calls share a single read.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	l.mu.RLock()
	ds := l.cached
	l.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	ch := l.group.DoChan("load", func() (interface{}, error) {
		l.mu.RLock()
		cached := l.cached
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		ds, err := l.read()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cached = ds
		l.mu.Unlock()
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

func (l *Loader) read() (*Dataset, error) {
	if l.path == "" {
		return nil, fmt.Errorf("%w: no dataset path configured", ErrDataUnavailable)
	}
	if _, err := os.Stat(l.path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, l.path, err)
	}

	var (
		rows    []Row
		skipped int
		err     error
	)
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".parquet":
		rows, skipped, err = readParquet(l.path, l.parallel)
	default:
		rows, skipped, err = readCSVFile(l.path)
	}
	if err != nil {
		l.logger.Error("dataset load failed", zap.String("path", l.path), zap.Error(err))
		return nil, err
	}

	ds := New(rows, l.path)
	ds.Skipped = skipped
	if skipped > 0 {
		l.logger.Warn("skipped malformed rows", zap.String("path", l.path), zap.Int("skipped", skipped))
	}
	l.logger.Info("dataset loaded",
		zap.String("path", l.path),
		zap.Int("rows", len(rows)),
	)
	return ds, nil
}

func readCSVFile(path string) ([]Row, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()
	return ParseCSV(f)
}

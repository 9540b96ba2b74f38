package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/carehub/storefront/pkg/logger"
	"github.com/carehub/storefront/pkg/metrics"
)

// FileSourceOption customises a FileSource.
type FileSourceOption func(*FileSource)

// WithReloadHook registers a callback invoked after every successful reload.
func WithReloadHook(fn func(*Fixtures)) FileSourceOption {
	return func(s *FileSource) {
		s.onReload = fn
	}
}

// FileSource serves fixtures decoded from a YAML file. After Start it reloads
// the file whenever it changes; a file that fails to parse or validate leaves
// the previous fixtures in place.
type FileSource struct {
	path     string
	current  atomic.Pointer[Fixtures]
	onReload func(*Fixtures)
	log      *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
}

// NewFileSource loads the fixture file once and returns a source serving it.
func NewFileSource(path string, opts ...FileSourceOption) (*FileSource, error) {
	s := &FileSource{
		path: path,
		log:  logger.WithModule("catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}

	fixtures, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(fixtures)
	return s, nil
}

// Name implements Source.
func (s *FileSource) Name() string { return SourceFile }

// Fixtures implements Source.
func (s *FileSource) Fixtures() *Fixtures { return s.current.Load() }

// Path returns the watched file.
func (s *FileSource) Path() string { return s.path }

// Reload re-reads the fixture file.
func (s *FileSource) Reload() error {
	fixtures, err := LoadFile(s.path)
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("failure").Inc()
		s.log.Warn("catalog reload failed", zap.String("path", s.path), zap.Error(err))
		return err
	}

	s.current.Store(fixtures)
	metrics.CatalogReloads.WithLabelValues("success").Inc()
	s.log.Info("catalog reloaded",
		zap.String("path", s.path),
		zap.Int("banners", len(fixtures.Banners)),
		zap.Int("categories", len(fixtures.Categories)),
	)
	if s.onReload != nil {
		s.onReload(fixtures)
	}
	return nil
}

// Start begins watching the fixture file. Calling Start twice is a no-op.
func (s *FileSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: create watcher: %w", err)
	}
	// Editors replace files on save; watching the directory survives that.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("catalog: watch %s: %w", s.path, err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.watch(watcher, s.done, s.stopped)
	return nil
}

// Stop ends watching and waits for the watch loop to exit.
func (s *FileSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}

	close(s.done)
	err := s.watcher.Close()
	<-s.stopped
	s.watcher = nil
	return err
}

func (s *FileSource) watch(watcher *fsnotify.Watcher, done, stopped chan struct{}) {
	defer close(stopped)
	name := filepath.Base(s.path)

	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				_ = s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// LoadFile decodes and validates a YAML fixture file.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses YAML fixtures, rejecting unknown fields.
func Decode(data []byte) (*Fixtures, error) {
	var fixtures Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixtures); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: decode fixtures: %w", err)
	}
	if err := fixtures.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: invalid fixtures: %w", err)
	}
	return &fixtures, nil
}

// Encode renders fixtures as YAML, the format LoadFile reads.
func Encode(fixtures *Fixtures) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fixtures); err != nil {
		return nil, fmt.Errorf("catalog: encode fixtures: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("catalog: encode fixtures: %w", err)
	}
	return buf.Bytes(), nil
}

// Package envsync derives the frontend and backend .env files from the root one.
package envsync

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/carehub/storefront/pkg/logger"
)

// Default file locations, relative to the repository root.
const (
	DefaultSource      = ".env"
	DefaultFrontendOut = "frontend/.env"
	DefaultBackendOut  = "backend/.env"
)

// ErrSourceMissing is returned when the source file does not exist.
var ErrSourceMissing = errors.New("envsync: source file not found")

// Options controls a Sync run.
type Options struct {
	Source      string
	FrontendOut string
	BackendOut  string
	// DryRun renders both files to Stdout instead of writing them.
	DryRun bool
	Stdout io.Writer
}

// Result reports what Sync produced.
type Result struct {
	Frontend []byte
	Backend  []byte
	// Defaulted lists source keys that were absent and took their default.
	Defaulted []string
}

// Sync reads the source file, resolves both key sets and writes the outputs.
func Sync(opts Options) (*Result, error) {
	opts = withDefaults(opts)
	log := logger.WithModule("envsync")

	source, err := Load(opts.Source)
	if err != nil {
		return nil, err
	}

	values, defaulted := Resolve(source)
	result := &Result{
		Frontend:  Render(FrontendKeys, values, opts.Source),
		Backend:   Render(BackendKeys, values, opts.Source),
		Defaulted: defaulted,
	}

	if opts.DryRun {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		_, err := fmt.Fprintf(out, "# %s\n%s\n# %s\n%s", opts.FrontendOut, result.Frontend, opts.BackendOut, result.Backend)
		return result, err
	}

	err = multierr.Combine(
		WriteFileAtomic(opts.FrontendOut, result.Frontend),
		WriteFileAtomic(opts.BackendOut, result.Backend),
	)
	if err != nil {
		return nil, err
	}

	log.Info("env files written",
		zap.String("source", opts.Source),
		zap.String("frontend", opts.FrontendOut),
		zap.String("backend", opts.BackendOut),
		zap.Strings("defaulted", defaulted),
	)
	return result, nil
}

func withDefaults(opts Options) Options {
	if strings.TrimSpace(opts.Source) == "" {
		opts.Source = DefaultSource
	}
	if strings.TrimSpace(opts.FrontendOut) == "" {
		opts.FrontendOut = DefaultFrontendOut
	}
	if strings.TrimSpace(opts.BackendOut) == "" {
		opts.BackendOut = DefaultBackendOut
	}
	return opts
}

// Load parses a KEY=VALUE file. Keys are returned upper-cased.
func Load(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("envsync: read %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigType("env")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("envsync: parse %s: %w", path, err)
	}

	values := make(map[string]string, len(v.AllKeys()))
	for _, key := range v.AllKeys() {
		values[strings.ToUpper(key)] = v.GetString(key)
	}
	return values, nil
}

// Resolve applies SourceDefaults to source and returns the merged values with
// the names of the keys that were defaulted. Blank values count as missing.
func Resolve(source map[string]string) (map[string]string, []string) {
	values := make(map[string]string, len(source)+len(SourceDefaults))
	for k, v := range source {
		values[k] = v
	}

	var defaulted []string
	for _, key := range SourceDefaults {
		if strings.TrimSpace(values[key.Name]) != "" {
			continue
		}
		values[key.Name] = expand(key.Default, values)
		defaulted = append(defaulted, key.Name)
	}
	return values, defaulted
}

// Render produces a deterministic file body for keys in declaration order.
func Render(keys []Key, values map[string]string, source string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated by envsync from %s. Do not edit.\n", filepath.Base(source))
	for _, key := range keys {
		fmt.Fprintf(&buf, "%s=%s\n", key.Name, quote(valueFor(key, values)))
	}
	return buf.Bytes()
}

func valueFor(key Key, values map[string]string) string {
	if key.Source != "" {
		if v := strings.TrimSpace(values[key.Source]); v != "" {
			return v
		}
	}
	return expand(key.Default, values)
}

func expand(value string, values map[string]string) string {
	return os.Expand(value, func(name string) string { return values[name] })
}

// quote wraps values that a shell or dotenv parser would otherwise split.
func quote(value string) string {
	if value == "" || !strings.ContainsAny(value, " \t#\"'\\") {
		return value
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value) + `"`
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("envsync: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("envsync: write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("envsync: write %s: %w", path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("envsync: write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("envsync: write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("envsync: write %s: %w", path, err)
	}
	return nil
}

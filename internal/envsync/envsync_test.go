package envsync

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSyncWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "API_PORT=8080\nSTORE_NAME=Care Hub Pharmacy\nDB_DRIVER=postgres\n")

	frontend := filepath.Join(dir, "frontend", ".env")
	backend := filepath.Join(dir, "backend", ".env")

	result, err := Sync(Options{Source: source, FrontendOut: frontend, BackendOut: backend})
	require.NoError(t, err)
	assert.NotContains(t, result.Defaulted, "API_PORT")
	assert.Contains(t, result.Defaulted, "LOG_LEVEL")

	front, err := os.ReadFile(frontend)
	require.NoError(t, err)
	assert.Equal(t, `# Generated by envsync from .env. Do not edit.
REACT_APP_ENV=development
REACT_APP_API_URL=http://localhost:8080/api
REACT_APP_SETTINGS_API_URL=http://localhost:8080/api/settings
REACT_APP_WS_URL=ws://localhost:8080/ws
REACT_APP_STORE_NAME="Care Hub Pharmacy"
REACT_APP_TOAST_DURATION_MS=3000
`, string(front))

	back, err := os.ReadFile(backend)
	require.NoError(t, err)
	assert.Contains(t, string(back), "STOREFRONT_SERVER_PORT=8080\n")
	assert.Contains(t, string(back), "STOREFRONT_DATABASE_DRIVER=postgres\n")
	assert.Contains(t, string(back), "STOREFRONT_DATABASE_DSN=\n")
	assert.Contains(t, string(back), "STOREFRONT_TOASTS_DEFAULT_DURATION=3000ms\n")
}

func TestSyncIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "LOG_LEVEL=debug\nUNRELATED=1\n")

	first, err := Sync(Options{Source: source, DryRun: true, Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	second, err := Sync(Options{Source: source, DryRun: true, Stdout: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.Equal(t, first.Frontend, second.Frontend)
	assert.Equal(t, first.Backend, second.Backend)
	assert.NotContains(t, string(first.Backend), "UNRELATED")
}

func TestSyncDryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "")
	frontend := filepath.Join(dir, "frontend", ".env")

	var out bytes.Buffer
	_, err := Sync(Options{Source: source, FrontendOut: frontend, BackendOut: filepath.Join(dir, "b.env"), DryRun: true, Stdout: &out})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "REACT_APP_API_URL=http://localhost:5000/api")
	assert.Contains(t, out.String(), "STOREFRONT_SERVER_PORT=5000")
	_, statErr := os.Stat(frontend)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncMissingSource(t *testing.T) {
	_, err := Sync(Options{Source: filepath.Join(t.TempDir(), "missing.env")})
	require.ErrorIs(t, err, ErrSourceMissing)
}

func TestSyncReportsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "")

	// a regular file where a directory is needed makes MkdirAll fail
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := Sync(Options{
		Source:      source,
		FrontendOut: filepath.Join(blocker, "frontend.env"),
		BackendOut:  filepath.Join(blocker, "backend.env"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frontend.env")
	assert.Contains(t, err.Error(), "backend.env")
}

func TestResolveTreatsBlankAsMissing(t *testing.T) {
	values, defaulted := Resolve(map[string]string{"API_PORT": "  ", "API_HOST": "api.local"})
	assert.Equal(t, "5000", values["API_PORT"])
	assert.Equal(t, "http://api.local:5000/api", values["API_URL"])
	assert.Contains(t, defaulted, "API_PORT")
	assert.NotContains(t, defaulted, "API_HOST")
}

func TestLoadUppercasesKeys(t *testing.T) {
	path := writeSource(t, t.TempDir(), "# comment\nApi_Port=9000\nLOG_LEVEL=warn\n")
	values, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", values["API_PORT"])
	assert.Equal(t, "warn", values["LOG_LEVEL"])
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.env")
	require.NoError(t, WriteFileAtomic(path, []byte("A=1\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("A=2\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=2\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), entry.Name())
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "plain", quote("plain"))
	assert.Equal(t, `"two words"`, quote("two words"))
	assert.Equal(t, `"say \"hi\""`, quote(`say "hi"`))
}

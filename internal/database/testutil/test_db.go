package testutil

import (
	"strings"
	"testing"
	"unicode"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/database"
)

type testDBOptions struct {
	seed bool
}

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBOptions)

// WithSeedData creates the schema plus the permission catalog, system roles
// and the bootstrap administrator.
func WithSeedData() TestDBOption {
	return func(o *testDBOptions) { o.seed = true }
}

// MustOpenTestDB opens a private in-memory SQLite database named after the
// test. The connection is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	var options testDBOptions
	for _, opt := range opts {
		opt(&options)
	}

	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name()) + "-" + uuid.NewString()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    database.MemoryDSN(name),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	if options.seed {
		require.NoError(t, database.AutoMigrateAndSeed(db))
	}
	return db
}

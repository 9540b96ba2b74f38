package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452}, false},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.username"), true},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isDuplicateKey(tc.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	err := storeError("create role", &pgconn.PgError{Code: "23505"}, "role name already exists")
	requireAppError(t, err, http.StatusConflict)

	err = storeError("update role permissions", ErrRoleNotFound, "")
	require.ErrorIs(t, err, ErrRoleNotFound)

	cause := errors.New("disk full")
	err = storeError("create user", cause, "username or email already exists")
	require.ErrorIs(t, err, cause)
	require.EqualError(t, err, "settings service: create user: disk full")

	err = storeError("update role permissions", errors.New("UNIQUE constraint failed: role_permissions.id"), "")
	require.EqualError(t, err, "settings service: update role permissions: UNIQUE constraint failed: role_permissions.id")
}

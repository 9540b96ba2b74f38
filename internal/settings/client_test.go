package settings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

func newTestServer(t *testing.T, status int, reply any) (*Client, *[]recorded) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var calls []recorded
	router := gin.New()
	router.NoRoute(func(c *gin.Context) {
		rec := recorded{
			method: c.Request.Method,
			path:   c.Request.URL.Path,
			query:  c.Request.URL.Query(),
		}
		if raw, _ := io.ReadAll(c.Request.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		calls = append(calls, rec)
		c.JSON(status, reply)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL + "/api/settings"), &calls
}

func TestClientRoutes(t *testing.T) {
	ctx := context.Background()
	payload := map[string]any{"name": "x"}

	cases := []struct {
		name   string
		call   func(c *Client) (Body, error)
		method string
		path   string
		body   bool
	}{
		{"GetGeneral", func(c *Client) (Body, error) { return c.GetGeneral(ctx) }, http.MethodGet, "/general", false},
		{"UpdateGeneral", func(c *Client) (Body, error) { return c.UpdateGeneral(ctx, payload) }, http.MethodPut, "/general", true},
		{"GetUser", func(c *Client) (Body, error) { return c.GetUser(ctx, "u1") }, http.MethodGet, "/users/u1", false},
		{"CreateUser", func(c *Client) (Body, error) { return c.CreateUser(ctx, payload) }, http.MethodPost, "/users", true},
		{"UpdateUser", func(c *Client) (Body, error) { return c.UpdateUser(ctx, "u1", payload) }, http.MethodPut, "/users/u1", true},
		{"DeleteUser", func(c *Client) (Body, error) { return c.DeleteUser(ctx, "u1") }, http.MethodDelete, "/users/u1", false},
		{"UpdateUserStatus", func(c *Client) (Body, error) { return c.UpdateUserStatus(ctx, "u1", payload) }, http.MethodPut, "/users/u1/status", true},
		{"ResetUserPassword", func(c *Client) (Body, error) { return c.ResetUserPassword(ctx, "u1") }, http.MethodPost, "/users/u1/reset-password", false},
		{"ListRoles", func(c *Client) (Body, error) { return c.ListRoles(ctx) }, http.MethodGet, "/roles", false},
		{"GetRole", func(c *Client) (Body, error) { return c.GetRole(ctx, "r1") }, http.MethodGet, "/roles/r1", false},
		{"CreateRole", func(c *Client) (Body, error) { return c.CreateRole(ctx, payload) }, http.MethodPost, "/roles", true},
		{"UpdateRole", func(c *Client) (Body, error) { return c.UpdateRole(ctx, "r1", payload) }, http.MethodPut, "/roles/r1", true},
		{"DeleteRole", func(c *Client) (Body, error) { return c.DeleteRole(ctx, "r1") }, http.MethodDelete, "/roles/r1", false},
		{"GetRolePermissions", func(c *Client) (Body, error) { return c.GetRolePermissions(ctx, "r1") }, http.MethodGet, "/roles/r1/permissions", false},
		{"UpdateRolePermissions", func(c *Client) (Body, error) { return c.UpdateRolePermissions(ctx, "r1", payload) }, http.MethodPut, "/roles/r1/permissions", true},
		{"ListPermissions", func(c *Client) (Body, error) { return c.ListPermissions(ctx) }, http.MethodGet, "/roles/permissions", false},
		{"GetSystem", func(c *Client) (Body, error) { return c.GetSystem(ctx) }, http.MethodGet, "/system", false},
		{"UpdateSystem", func(c *Client) (Body, error) { return c.UpdateSystem(ctx, payload) }, http.MethodPut, "/system", true},
		{"GetSystemInfo", func(c *Client) (Body, error) { return c.GetSystemInfo(ctx) }, http.MethodGet, "/system/info", false},
		{"SetMaintenanceMode", func(c *Client) (Body, error) { return c.SetMaintenanceMode(ctx, payload) }, http.MethodPut, "/system/maintenance", true},
		{"ClearCache", func(c *Client) (Body, error) { return c.ClearCache(ctx) }, http.MethodPost, "/system/cache/clear", false},
		{"ListBackups", func(c *Client) (Body, error) { return c.ListBackups(ctx) }, http.MethodGet, "/backups", false},
		{"CreateBackup", func(c *Client) (Body, error) { return c.CreateBackup(ctx, payload) }, http.MethodPost, "/backups", true},
		{"RestoreBackup", func(c *Client) (Body, error) { return c.RestoreBackup(ctx, "b1") }, http.MethodPost, "/backups/b1/restore", false},
		{"DeleteBackup", func(c *Client) (Body, error) { return c.DeleteBackup(ctx, "b1") }, http.MethodDelete, "/backups/b1", false},
		{"GetBackupSchedule", func(c *Client) (Body, error) { return c.GetBackupSchedule(ctx) }, http.MethodGet, "/backups/schedule", false},
		{"UpdateBackupSchedule", func(c *Client) (Body, error) { return c.UpdateBackupSchedule(ctx, payload) }, http.MethodPut, "/backups/schedule", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := gin.H{"success": true, "data": gin.H{"ok": true}}
			client, calls := newTestServer(t, http.StatusOK, reply)

			body, err := tc.call(client)
			require.NoError(t, err)
			require.Equal(t, true, body["success"])
			require.Equal(t, map[string]any{"ok": true}, body["data"])

			require.Len(t, *calls, 1)
			got := (*calls)[0]
			assert.Equal(t, tc.method, got.method)
			assert.Equal(t, "/api/settings"+tc.path, got.path)
			if tc.body {
				assert.Equal(t, "x", got.body["name"])
			} else {
				assert.Nil(t, got.body)
			}
		})
	}
}

func TestListUsersPassesQueryThrough(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, gin.H{"success": true})

	query := url.Values{"page": {"2"}, "status": {"active"}, "q": {"ann"}}
	_, err := client.ListUsers(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/api/settings/users", (*calls)[0].path)
	assert.Equal(t, query, (*calls)[0].query)
}

func TestClientReturnsBodyUnmodified(t *testing.T) {
	reply := gin.H{"success": true, "message": "hello", "extra": []any{"a", float64(1)}}
	client, _ := newTestServer(t, http.StatusOK, reply)

	body, err := client.GetSystemInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Body{"success": true, "message": "hello", "extra": []any{"a", float64(1)}}, body)
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	client, calls := newTestServer(t, http.StatusNotFound, gin.H{"success": false, "message": "User not found"})

	body, err := client.GetUser(context.Background(), "missing")
	require.Nil(t, body)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, apiErr.NotFound())
	assert.Contains(t, string(apiErr.Body), "User not found")

	// no retries
	assert.Len(t, *calls, 1)
}

func TestClientSurfacesServerErrorsWithoutRetry(t *testing.T) {
	client, calls := newTestServer(t, http.StatusInternalServerError, gin.H{"success": false})

	_, err := client.ClearCache(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Len(t, *calls, 1)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(base)
	_, err := client.GetGeneral(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.Error(t, apiErr.Unwrap())
}

func TestNewClientDefaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://x/api", NewClient("http://x/api/").BaseURL())
}

// Package settings is a thin client for the storefront settings API. Every
// call returns the decoded JSON body as sent by the server.
package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL points at the local development server.
const DefaultBaseURL = "http://localhost:5000/api/settings"

// Body is a decoded response payload.
type Body = map[string]any

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.r = resty.NewWithClient(hc)
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// Client issues requests against the settings resource tree.
type Client struct {
	r       *resty.Client
	baseURL string
	timeout time.Duration
	headers map[string]string
}

// NewClient builds a client rooted at baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		r:       resty.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.r.SetBaseURL(c.baseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeaders(c.headers)
	if c.timeout > 0 {
		c.r.SetTimeout(c.timeout)
	}

	return c
}

// BaseURL returns the root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// General

// GetGeneral fetches the general storefront settings document.
func (c *Client) GetGeneral(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/general", nil, nil)
}

// UpdateGeneral replaces the general settings with payload.
func (c *Client) UpdateGeneral(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/general", nil, payload)
}

// Users

// ListUsers forwards query unchanged (page, page_size, q, status, role_id).
func (c *Client) ListUsers(ctx context.Context, query url.Values) (Body, error) {
	return c.do(ctx, http.MethodGet, "/users", query, nil)
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil)
}

// CreateUser provisions a user; the server hashes the supplied password.
func (c *Client) CreateUser(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPost, "/users", nil, payload)
}

// UpdateUser applies a partial update to a user.
func (c *Client) UpdateUser(ctx context.Context, id string, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, payload)
}

// DeleteUser removes a user. The server refuses to delete the last active administrator.
func (c *Client) DeleteUser(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

// UpdateUserStatus sets a user's status, e.g. {"status":"inactive"}.
func (c *Client) UpdateUserStatus(ctx context.Context, id string, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/status", nil, payload)
}

// ResetUserPassword asks the server to issue a temporary password, returned once in the body.
func (c *Client) ResetUserPassword(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(id)+"/reset-password", nil, nil)
}

// Roles

// ListRoles lists roles with their permissions and user counts.
func (c *Client) ListRoles(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/roles", nil, nil)
}

// GetRole fetches one role by id.
func (c *Client) GetRole(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodGet, "/roles/"+url.PathEscape(id), nil, nil)
}

// CreateRole creates a custom role.
func (c *Client) CreateRole(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPost, "/roles", nil, payload)
}

// UpdateRole renames or redescribes a role.
func (c *Client) UpdateRole(ctx context.Context, id string, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/roles/"+url.PathEscape(id), nil, payload)
}

// DeleteRole removes a custom role. System roles and roles still assigned to users are refused.
func (c *Client) DeleteRole(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodDelete, "/roles/"+url.PathEscape(id), nil, nil)
}

// GetRolePermissions lists the permission ids granted to a role.
func (c *Client) GetRolePermissions(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodGet, "/roles/"+url.PathEscape(id)+"/permissions", nil, nil)
}

// UpdateRolePermissions replaces a role's permission set with the ids in payload.
func (c *Client) UpdateRolePermissions(ctx context.Context, id string, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/roles/"+url.PathEscape(id)+"/permissions", nil, payload)
}

// ListPermissions returns the permission catalog.
func (c *Client) ListPermissions(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/roles/permissions", nil, nil)
}

// System

// GetSystem fetches the system settings document.
func (c *Client) GetSystem(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/system", nil, nil)
}

// UpdateSystem replaces the system settings with payload.
func (c *Client) UpdateSystem(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/system", nil, payload)
}

// GetSystemInfo reports build version, uptime and database driver.
func (c *Client) GetSystemInfo(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/system/info", nil, nil)
}

// SetMaintenanceMode toggles maintenance mode, e.g. {"enabled":true,"message":"..."}.
func (c *Client) SetMaintenanceMode(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/system/maintenance", nil, payload)
}

// ClearCache drops the server's cached settings documents.
func (c *Client) ClearCache(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodPost, "/system/cache/clear", nil, nil)
}

// Backups

// ListBackups lists stored settings snapshots, newest first.
func (c *Client) ListBackups(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/backups", nil, nil)
}

// CreateBackup takes a settings snapshot on demand.
func (c *Client) CreateBackup(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPost, "/backups", nil, payload)
}

// RestoreBackup replaces the current settings with a stored snapshot.
func (c *Client) RestoreBackup(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodPost, "/backups/"+url.PathEscape(id)+"/restore", nil, nil)
}

// DeleteBackup removes a stored snapshot.
func (c *Client) DeleteBackup(ctx context.Context, id string) (Body, error) {
	return c.do(ctx, http.MethodDelete, "/backups/"+url.PathEscape(id), nil, nil)
}

// GetBackupSchedule fetches the cron schedule and retention for automatic backups.
func (c *Client) GetBackupSchedule(ctx context.Context) (Body, error) {
	return c.do(ctx, http.MethodGet, "/backups/schedule", nil, nil)
}

// UpdateBackupSchedule replaces the automatic backup schedule. The server validates the cron spec.
func (c *Client) UpdateBackupSchedule(ctx context.Context, payload any) (Body, error) {
	return c.do(ctx, http.MethodPut, "/backups/schedule", nil, payload)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (Body, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := c.r.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}

	raw := res.Body()
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, &Error{Method: method, Path: path, StatusCode: res.StatusCode(), Body: raw}
	}

	body := Body{}
	if len(raw) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &Error{Method: method, Path: path, StatusCode: res.StatusCode(), Body: raw, Err: err}
	}
	return body, nil
}

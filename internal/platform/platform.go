// Package platform is a thin client for the hosted backend's admin auth API
// and its REST data API. Every request is authenticated with the service
// role key, sent both as a bearer token and as the apikey header.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
	"github.com/patric-chuzhbe/lmkadmin/internal/user"
)

const (
	adminUsersPath = "/auth/v1/admin/users"
	restPathPrefix = "/rest/v1/"
)

// APIError is returned when the platform answers with a status other than 200 or 201.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsConflict reports whether the platform rejected the request because the
// resource already exists.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict || e.StatusCode == http.StatusUnprocessableEntity
}

// Client talks to a single platform project.
type Client struct {
	http *resty.Client
}

// New creates a Client for the project at baseURL.
func New(baseURL, serviceRoleKey string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetLogger(logger.RestyAdapter{}).
		SetAuthToken(serviceRoleKey).
		SetHeader("apikey", serviceRoleKey).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient}
}

func isSuccess(resp *resty.Response) bool {
	return resp.StatusCode() == http.StatusOK || resp.StatusCode() == http.StatusCreated
}

// CreateUser registers a user through the admin endpoint.
func (c *Client) CreateUser(ctx context.Context, request models.NewUserRequest) (*user.User, error) {
	created := &user.User{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(created).
		Post(adminUsersPath)
	if err != nil {
		return nil, fmt.Errorf("create user request failed: %w", err)
	}

	if !isSuccess(resp) {
		return nil, &APIError{Op: "create user", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return created, nil
}

// InsertRow inserts one row into table through the REST data endpoint.
// The platform is asked not to echo the row back.
func (c *Client) InsertRow(ctx context.Context, table string, row any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post(restPathPrefix + table)
	if err != nil {
		return fmt.Errorf("insert into %s request failed: %w", table, err)
	}

	if !isSuccess(resp) {
		return &APIError{Op: "insert into " + table, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}

// InsertProfile stores the profile row of a user.
func (c *Client) InsertProfile(ctx context.Context, profile models.Profile) error {
	return c.InsertRow(ctx, models.ProfilesTable, profile)
}

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/launchpad/core/db"
)

// Client implements db.Querier over Supabase's PostgREST API.
// It is stateless apart from its HTTP client and safe for concurrent use.
type Client struct {
	cfg  Config
	base string
	http *http.Client
}

// New creates a REST client bound to the configured project. Missing URL
// or key is a configuration error: the database selector requires its
// credentials at selection time.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("%w: SUPABASE_URL is required", db.ErrNotConfigured)
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("%w: SUPABASE_ANON_KEY is required", db.ErrNotConfigured)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		cfg:  cfg,
		base: strings.TrimRight(cfg.ProjectURL, "/") + "/rest/v1",
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Select implements db.Querier.
func (c *Client) Select(ctx context.Context, table string, filters ...db.Filter) ([]db.Row, error) {
	endpoint, err := c.tableURL(table, filters...)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []db.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", db.ErrQueryFailed, err)
	}
	return rows, nil
}

// Insert implements db.Querier. The Prefer header asks PostgREST to echo
// the stored row so backend-generated columns come back to the caller.
func (c *Client) Insert(ctx context.Context, table string, row db.Row) (db.Row, error) {
	endpoint, err := c.tableURL(table)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, endpoint, row,
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}
	return firstRow(body)
}

// Update implements db.Querier.
func (c *Client) Update(ctx context.Context, table string, filter db.Filter, changes db.Row) (db.Row, error) {
	endpoint, err := c.tableURL(table, filter)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPatch, endpoint, changes,
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}
	return firstRow(body)
}

// Delete implements db.Querier.
func (c *Client) Delete(ctx context.Context, table string, filter db.Filter) error {
	endpoint, err := c.tableURL(table, filter)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodDelete, endpoint, nil, nil)
	return err
}

// Healthcheck implements db.Querier with a single HEAD probe against the
// REST root.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base+"/", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", db.ErrHealthcheckFailed, err)
	}
	req.Header.Set("apikey", c.cfg.key())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", db.ErrHealthcheckFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: unexpected status %d", db.ErrHealthcheckFailed, resp.StatusCode)
	}
	return nil
}

// tableURL builds the PostgREST endpoint for a table with equality filters
// rendered as col=eq.value query parameters.
func (c *Client) tableURL(table string, filters ...db.Filter) (string, error) {
	if table == "" {
		return "", fmt.Errorf("%w: table name is required", db.ErrQueryFailed)
	}

	query := url.Values{}
	for _, f := range filters {
		query.Set(f.Column, "eq."+fmt.Sprint(f.Value))
	}

	endpoint := c.base + "/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint, nil
}

// do performs one REST call and returns the response body, translating
// PostgREST error payloads into the normalized error taxonomy.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", db.ErrQueryFailed, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", db.ErrQueryFailed, err)
	}
	key := c.cfg.key()
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", db.ErrQueryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", db.ErrQueryFailed, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, restError(resp.StatusCode, body)
	}
	return body, nil
}

// restError maps a PostgREST error payload {message, code, details} onto
// the normalized taxonomy.
func restError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	_ = json.Unmarshal(body, &payload)

	if payload.Message != "" {
		return fmt.Errorf("%w: %s (status %d, code %s)", db.ErrQueryFailed, payload.Message, status, payload.Code)
	}
	return fmt.Errorf("%w: unexpected status %d", db.ErrQueryFailed, status)
}

// firstRow unwraps PostgREST's array representation responses.
func firstRow(body []byte) (db.Row, error) {
	var rows []db.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", db.ErrQueryFailed, err)
	}
	if len(rows) == 0 {
		return nil, db.ErrNotFound
	}
	return rows[0], nil
}

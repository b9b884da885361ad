package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrNotFound marks a zero-or-one lookup that matched nothing.
var ErrNotFound = errors.New("store: record not found")

// Client speaks the backend's PostgREST-style interface: fetch by
// filter, insert, update by filter. No transactions.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) selectRows(ctx context.Context, table string, query url.Values) (gjson.Result, error) {
	data, err := c.call(ctx, http.MethodGet, table, query, nil, "")
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(data), nil
}

// selectOne returns the single matching row or ErrNotFound.
func (c *Client) selectOne(ctx context.Context, table string, query url.Values) (gjson.Result, error) {
	query.Set("limit", "1")
	rows, err := c.selectRows(ctx, table, query)
	if err != nil {
		return gjson.Result{}, err
	}
	arr := rows.Array()
	if len(arr) == 0 {
		return gjson.Result{}, ErrNotFound
	}
	return arr[0], nil
}

// insert posts one record and returns its representation.
func (c *Client) insert(ctx context.Context, table string, body []byte) (gjson.Result, error) {
	data, err := c.call(ctx, http.MethodPost, table, nil, body, "return=representation")
	if err != nil {
		return gjson.Result{}, err
	}
	rows := gjson.ParseBytes(data).Array()
	if len(rows) == 0 {
		return gjson.Result{}, fmt.Errorf("store: insert into %s returned no representation", table)
	}
	return rows[0], nil
}

// upsert merges on the given conflict target, insert-if-absent style.
func (c *Client) upsert(ctx context.Context, table string, onConflict string, body []byte) error {
	query := url.Values{}
	if onConflict != "" {
		query.Set("on_conflict", onConflict)
	}
	_, err := c.call(ctx, http.MethodPost, table, query, body, "resolution=merge-duplicates")
	return err
}

// update patches every row matching the filter.
func (c *Client) update(ctx context.Context, table string, query url.Values, body []byte) error {
	_, err := c.call(ctx, http.MethodPatch, table, query, body, "")
	return err
}

func (c *Client) delete(ctx context.Context, table string, query url.Values) error {
	_, err := c.call(ctx, http.MethodDelete, table, query, nil, "")
	return err
}

func (c *Client) call(ctx context.Context, method, table string, query url.Values, body []byte, prefer string) ([]byte, error) {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("store: %s %s status=%d body=%s", method, table, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func eq(value string) string {
	return "eq." + value
}

func in(values ...string) string {
	return "in.(" + strings.Join(values, ",") + ")"
}

func parseTime(r gjson.Result) time.Time {
	if !r.Exists() || r.String() == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, r.String())
	if err != nil {
		return time.Time{}
	}
	return t
}

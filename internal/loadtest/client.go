package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// client wraps http.Client with JSON helpers.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(cfg *Config) *client {
	return &client{http: &http.Client{Timeout: cfg.Timeout}, baseURL: cfg.BaseURL}
}

func (c *client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", req.URL.Path, err)
	}
	if resp.StatusCode != want {
		var e errorBody
		_ = json.Unmarshal(body, &e)
		return fmt.Errorf("%s %s: status %d %s: %s", req.Method, req.URL.Path, resp.StatusCode, e.Code, e.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *client) get(ctx context.Context, path string, q url.Values, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, out)
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, http.StatusOK, out)
}

// walk pages through /cards with q until the listing is exhausted. A
// shuffled walk pins the seed returned by its first window.
func (c *client) walk(ctx context.Context, q url.Values, pageSize int) ([]card, int, error) {
	q.Set("page_size", strconv.Itoa(pageSize))
	var (
		all   []card
		pages int
	)
	for {
		var p page
		if err := c.get(ctx, "/cards", q, &p); err != nil {
			return nil, pages, err
		}
		pages++
		all = append(all, p.Results...)
		if !p.HasNextPage || p.LastCursor == nil {
			return all, pages, nil
		}
		q.Set("cursor", *p.LastCursor)
		if p.RandomSeed != nil {
			q.Set("seed", *p.RandomSeed)
		}
	}
}

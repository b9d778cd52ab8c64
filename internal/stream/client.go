// Package stream proxies the MediaMTX control API behind the narrow
// start/stop/list contract the dashboard needs. Media negotiation itself
// (WebRTC/HLS) happens between the player and MediaMTX directly.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PathConfig is the MediaMTX path configuration posted on stream start.
type PathConfig struct {
	Source         string `json:"source"`
	SourceOnDemand bool   `json:"sourceOnDemand"`
}

// PathStatus is one entry of the active-paths listing.
type PathStatus struct {
	Name    string   `json:"name"`
	Ready   bool     `json:"ready"`
	Tracks  []string `json:"tracks"`
	Readers []any    `json:"readers"`
}

// PathList is the /v3/paths/list response.
type PathList struct {
	ItemCount int          `json:"itemCount"`
	Items     []PathStatus `json:"items"`
}

// Client speaks to the MediaMTX control API with basic auth.
type Client struct {
	http     *http.Client
	base     string
	user     string
	password string
}

func NewClient(controlBase, user, password string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		base:     controlBase + "/v3",
		user:     user,
		password: password,
	}
}

func (c *Client) AddPathConfig(ctx context.Context, name string, conf PathConfig) error {
	body, _ := json.Marshal(conf)
	return c.do(ctx, http.MethodPost, "/config/paths/add/"+name, body, nil)
}

func (c *Client) DeletePathConfig(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/config/paths/delete/"+name, nil, nil)
}

func (c *Client) GetActivePath(ctx context.Context, name string) (PathStatus, error) {
	var out PathStatus
	err := c.do(ctx, http.MethodGet, "/paths/get/"+name, nil, &out)
	return out, err
}

func (c *Client) ListActivePaths(ctx context.Context) (PathList, error) {
	var out PathList
	err := c.do(ctx, http.MethodGet, "/paths/list", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, v any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mediamtx: %s %s: unexpected status %s: %s", method, path, resp.Status, raw)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

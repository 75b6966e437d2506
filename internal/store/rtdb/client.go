// Package rtdb implements the store contract against a Firebase-style
// realtime database over its REST interface: plain GET/PATCH for
// one-shot reads and field merges, and the text/event-stream protocol
// for continuous snapshots.
package rtdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/store"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Client talks to a single database identified by its base URL, e.g.
// https://cancheito-default-rtdb.firebaseio.com. An optional auth token
// is appended to every request.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	log        logging.Logger
}

// New returns a client for the database at baseURL. The token may be
// empty for databases with open rules (test instances).
func New(baseURL, authToken string, log logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{},
		log:        log,
	}
}

func (c *Client) endpoint(path string) string {
	u := c.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if c.authToken != "" {
		u += "?auth=" + url.QueryEscape(c.authToken)
	}
	return u
}

// Get reads the value at path once. A JSON null result maps to
// store.ErrNotFound.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("building read request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reading %s: unexpected status %s", path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if isJSONNull(body) {
		return nil, store.ErrNotFound
	}
	return json.RawMessage(body), nil
}

// Patch merges fields into the object at path.
func (c *Client) Patch(ctx context.Context, path string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding patch for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building patch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("patching %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("patching %s: unexpected status %s", path, resp.Status)
	}
	return nil
}

// Subscribe opens an event stream on path and keeps it open until the
// returned cancel function is called or ctx is done, reconnecting with
// exponential backoff on stream failures. Each put/patch event is
// folded into a locally-kept document so the handler always receives
// the full value at path.
func (c *Client) Subscribe(ctx context.Context, path string, onSnapshot store.Handler, onError store.ErrorHandler) (store.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)

	sub := &subscription{
		client:     c,
		path:       path,
		onSnapshot: onSnapshot,
		onError:    onError,
		done:       make(chan struct{}),
	}

	go sub.run(ctx)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-sub.done
		})
	}, nil
}

func (c *Client) openStream(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening stream for %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("opening stream for %s: unexpected status %s", path, resp.Status)
	}
	return resp.Body, nil
}

func isJSONNull(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

package rtdb

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// subscription owns one event stream and the locally-folded document
// for its path. The stream protocol delivers deltas (put/patch at a
// sub-path); the store contract promises full snapshots, so every event
// is applied to doc and the whole document is re-delivered.
type subscription struct {
	client     *Client
	path       string
	onSnapshot func(json.RawMessage)
	onError    func(error)
	doc        any
	done       chan struct{}
}

// streamEvent is the payload of a put or patch event.
type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.done)

	backoff := initialBackoff
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.fail(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// consume reads one stream connection until it breaks.
func (s *subscription) consume(ctx context.Context) error {
	body, err := s.client.openStream(ctx, s.path)
	if err != nil {
		return err
	}
	defer body.Close()

	s.client.log.Info(ctx, "stream established", "path", s.path)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if event != "" {
				if err := s.dispatch(ctx, event, data); err != nil {
					return err
				}
			}
			event, data = "", ""
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream for %s broke: %w", s.path, err)
	}
	return errors.New("stream closed by server")
}

func (s *subscription) dispatch(ctx context.Context, event, data string) error {
	switch event {
	case "put", "patch":
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("decoding %s event: %w", event, err)
		}

		var value any
		if !isJSONNull(ev.Data) {
			if err := json.Unmarshal(ev.Data, &value); err != nil {
				return fmt.Errorf("decoding %s payload: %w", event, err)
			}
		}

		if event == "put" {
			s.doc = applyPut(s.doc, splitPath(ev.Path), value)
		} else {
			s.doc = applyPatch(s.doc, splitPath(ev.Path), value)
		}
		s.deliver(ctx)

	case "keep-alive":
		// nothing to do

	case "cancel", "auth_revoked":
		return fmt.Errorf("stream for %s terminated by server: %s", s.path, event)
	}
	return nil
}

func (s *subscription) deliver(ctx context.Context) {
	raw, err := json.Marshal(s.doc)
	if err != nil {
		s.fail(fmt.Errorf("encoding snapshot for %s: %w", s.path, err))
		return
	}
	s.client.log.Debug(ctx, "snapshot delivered", "path", s.path, "bytes", len(raw))
	s.onSnapshot(raw)
}

func (s *subscription) fail(err error) {
	s.client.log.Error(context.Background(), "subscription error", "path", s.path, "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}

// splitPath turns "/a/b" into {"a","b"}; "/" becomes nil.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// applyPut replaces the value at the given path inside doc, creating
// intermediate objects as needed. A nil value deletes the target.
func applyPut(doc any, path []string, value any) any {
	if len(path) == 0 {
		return value
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		obj = make(map[string]any)
	}

	child := applyPut(obj[path[0]], path[1:], value)
	if child == nil {
		delete(obj, path[0])
	} else {
		obj[path[0]] = child
	}
	if len(obj) == 0 {
		return nil
	}
	return obj
}

// applyPatch merges the fields of value into the object at path.
func applyPatch(doc any, path []string, value any) any {
	fields, ok := value.(map[string]any)
	if !ok {
		// A non-object patch degenerates to a put.
		return applyPut(doc, path, value)
	}

	target := doc
	for _, seg := range path {
		obj, ok := target.(map[string]any)
		if !ok {
			return applyPut(doc, path, value)
		}
		target = obj[seg]
	}

	obj, ok := target.(map[string]any)
	if !ok {
		return applyPut(doc, path, value)
	}
	for k, v := range fields {
		if v == nil {
			delete(obj, k)
		} else {
			obj[k] = v
		}
	}
	return applyPut(doc, path, obj)
}

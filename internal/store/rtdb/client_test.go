package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/store"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(ts.URL, "", logging.NewDefault())
}

func TestGet_ReturnsValue(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/ofertas.json", r.URL.Path)
		fmt.Fprint(w, `{"o1":{"cargo":"Albañil"}}`)
	}))

	raw, err := c.Get(context.Background(), "ofertas")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "o1")
}

func TestGet_NullMeansNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "null")
	}))

	_, err := c.Get(context.Background(), "ofertas/nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPatch_SendsFieldMerge(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{}`)
	}))

	err := c.Patch(context.Background(), "ofertas/o1", map[string]any{"estado": "CERRADA"})
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, gotMethod)
	require.Equal(t, "/ofertas/o1.json", gotPath)
	require.JSONEq(t, `{"estado":"CERRADA"}`, string(gotBody))
}

func TestPatch_BadStatusIsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))

	err := c.Patch(context.Background(), "ofertas/o1", map[string]any{"estado": "CERRADA"})
	require.Error(t, err)
}

// sseHandler writes a fixed sequence of events and then blocks until the
// client goes away.
func sseHandler(t *testing.T, events []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		f := w.(http.Flusher)
		for _, e := range events {
			fmt.Fprint(w, e)
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSubscribe_FoldsPutsAndPatches(t *testing.T) {
	events := []string{
		"event: put\ndata: {\"path\":\"/\",\"data\":{\"o1\":{\"cargo\":\"Albañil\",\"estado\":\"ACTIVA\"}}}\n\n",
		"event: keep-alive\ndata: null\n\n",
		"event: patch\ndata: {\"path\":\"/o1\",\"data\":{\"estado\":\"CERRADA\"}}\n\n",
		"event: put\ndata: {\"path\":\"/o2\",\"data\":{\"cargo\":\"Plomero\"}}\n\n",
	}

	c := newTestClient(t, sseHandler(t, events))

	snapshots := make(chan json.RawMessage, 8)
	cancel, err := c.Subscribe(context.Background(), "ofertas", func(data json.RawMessage) {
		snapshots <- data
	}, nil)
	require.NoError(t, err)
	defer cancel()

	var got []map[string]map[string]any
	for len(got) < 3 {
		select {
		case raw := <-snapshots:
			var doc map[string]map[string]any
			require.NoError(t, json.Unmarshal(raw, &doc))
			got = append(got, doc)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d snapshots", len(got))
		}
	}

	require.Equal(t, "ACTIVA", got[0]["o1"]["estado"])
	require.Equal(t, "CERRADA", got[1]["o1"]["estado"], "patch merges into the folded document")
	require.Equal(t, "Albañil", got[1]["o1"]["cargo"], "patch leaves sibling fields alone")
	require.Contains(t, got[2], "o2")
}

func TestSubscribe_NoCallbacksAfterCancel(t *testing.T) {
	events := []string{
		"event: put\ndata: {\"path\":\"/\",\"data\":{\"u1\":{\"email\":\"a@b.c\"}}}\n\n",
	}

	c := newTestClient(t, sseHandler(t, events))

	snapshots := make(chan json.RawMessage, 8)
	cancel, err := c.Subscribe(context.Background(), "Usuarios", func(data json.RawMessage) {
		snapshots <- data
	}, nil)
	require.NoError(t, err)

	select {
	case <-snapshots:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial snapshot")
	}

	cancel()
	cancel() // second call is a no-op

	select {
	case <-snapshots:
		t.Fatal("snapshot delivered after cancel")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribe_StreamErrorReported(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))

	errs := make(chan error, 8)
	cancel, err := c.Subscribe(context.Background(), "Usuarios", func(json.RawMessage) {
		t.Error("unexpected snapshot")
	}, func(err error) {
		errs <- err
	})
	require.NoError(t, err)
	defer cancel()

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stream error not reported")
	}
}

func TestApplyPut_DeepPathCreatesObjects(t *testing.T) {
	doc := applyPut(nil, []string{"o1", "estado"}, "ACTIVA")

	obj, ok := doc.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ACTIVA", obj["o1"].(map[string]any)["estado"])

	doc = applyPut(doc, []string{"o1"}, nil)
	require.Nil(t, doc, "deleting the last child collapses the document")
}

func TestIsJSONNull(t *testing.T) {
	require.True(t, isJSONNull([]byte("null")))
	require.True(t, isJSONNull([]byte("  null\n")))
	require.True(t, isJSONNull(nil))
	require.False(t, isJSONNull([]byte("{}")))
}

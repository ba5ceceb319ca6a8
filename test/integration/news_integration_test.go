package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debounce"
	"github.com/pders01/newsdesk/internal/query"
	"github.com/pders01/newsdesk/internal/session"
	"github.com/pders01/newsdesk/internal/storage"
)

// newsServer answers /api/search with one article titled after the query.
// Queries named "slow" block until the client gives up on them.
type newsServer struct {
	mu       sync.Mutex
	queries  []string
	canceled chan string
}

func startNewsServer(t *testing.T) (*newsServer, *httptest.Server) {
	t.Helper()
	ns := &newsServer{canceled: make(chan string, 8)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		ns.mu.Lock()
		ns.queries = append(ns.queries, q)
		ns.mu.Unlock()

		if r.URL.Path != "/api/search" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "Not Found"}`))
			return
		}

		switch q {
		case "slow":
			select {
			case <-r.Context().Done():
				ns.canceled <- q
			case <-time.After(5 * time.Second):
			}
			return
		case "outage":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail": {"error": "API_ERROR", "message": "Failed to fetch news"}}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"articles": []map[string]any{{
				"title":       "About " + q,
				"source":      map[string]any{"name": "Wire"},
				"url":         "https://example.com/" + q,
				"publishedAt": "2025-03-14T10:00:00Z",
			}},
			"total_pages":   2,
			"total_results": 11,
		})
	}))
	t.Cleanup(srv.Close)
	return ns, srv
}

func (ns *newsServer) seen() []string {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return append([]string(nil), ns.queries...)
}

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	cfg := config.TestConfig()
	cfg.API.BaseURL = baseURL
	client, err := api.NewClient(cfg.API)
	require.NoError(t, err)
	return client
}

func TestTypedQueryIsSentOnceAndPersisted(t *testing.T) {
	ns, srv := startNewsServer(t)
	client := newClient(t, srv.URL)

	dbPath := filepath.Join(t.TempDir(), "newsdesk.db")
	store, err := storage.NewStore(dbPath)
	require.NoError(t, err)

	sess := session.New(client, session.WithCommitHook(func(d query.Descriptor) {
		require.NoError(t, store.SaveLocation(storage.PageSearch, d.Location()))
	}))

	settled := make(chan string, 1)
	gate := debounce.New(50*time.Millisecond, debounce.Latest(settled))
	defer gate.Stop()

	ctrl := query.NewController()
	for _, text := range []string{"c", "cl", "cli", "clim"} {
		ctrl.SetQuery(text)
		gate.Push(text)
		time.Sleep(5 * time.Millisecond)
	}

	var q string
	select {
	case q = <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("query never settled")
	}
	assert.Equal(t, "clim", q)

	select {
	case extra := <-settled:
		t.Fatalf("unexpected second settled value %q", extra)
	case <-time.After(150 * time.Millisecond):
	}

	require.True(t, sess.Fetch(ctrl.Descriptor(q, query.DefaultPageSize)))

	st := sess.State()
	assert.Equal(t, session.PhaseSuccess, st.Phase)
	require.Len(t, st.Articles, 1)
	assert.Equal(t, "About clim", st.Articles[0].Title)
	assert.Equal(t, 2, st.TotalPages)
	assert.Equal(t, 11, st.TotalResults)
	assert.Equal(t, []string{"clim"}, ns.seen())

	require.NoError(t, store.Close())
	reopened, err := storage.NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	loc, err := reopened.GetLocation(storage.PageSearch)
	require.NoError(t, err)
	assert.Equal(t, "q=clim&sortBy=publishedAt&page=1&page_size=10", loc)

	restored, err := query.ParseLocation(loc)
	require.NoError(t, err)
	assert.Equal(t, "clim", restored.Query())
	assert.Equal(t, query.DefaultFilters(), restored.Filters())
	assert.Equal(t, 1, restored.Page())
}

func TestSupersededRequestIsCanceled(t *testing.T) {
	ns, srv := startNewsServer(t)
	sess := session.New(newClient(t, srv.URL))

	search := func(q string) query.Descriptor {
		c := query.NewController()
		c.SetQuery(q)
		return c.Descriptor(q, query.DefaultPageSize)
	}

	reqA, ok := sess.Begin(search("slow"))
	require.True(t, ok)

	resA := make(chan session.Result, 1)
	go func() { resA <- sess.Run(reqA) }()

	// Wait until A is on the wire before superseding it.
	require.Eventually(t, func() bool { return len(ns.seen()) == 1 }, 2*time.Second, 5*time.Millisecond)

	reqB, ok := sess.Begin(search("fast"))
	require.True(t, ok)
	resB := sess.Run(reqB)

	select {
	case q := <-ns.canceled:
		assert.Equal(t, "slow", q)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not canceled")
	}

	a := <-resA
	require.Error(t, a.Err)
	assert.True(t, api.IsCanceled(a.Err), "got %v", a.Err)

	assert.True(t, sess.Apply(resB))
	assert.False(t, sess.Apply(a))

	st := sess.State()
	require.Len(t, st.Articles, 1)
	assert.Equal(t, "About fast", st.Articles[0].Title)
	assert.Equal(t, "fast", st.Descriptor.Query)
	assert.Empty(t, st.Err)
}

func TestBackendFailuresSurfaceMessages(t *testing.T) {
	_, srv := startNewsServer(t)

	tests := []struct {
		name    string
		baseURL string
		query   string
		want    string
	}{
		{"structured api error", srv.URL, "outage", "Failed to fetch news"},
		{"unreachable backend", "http://127.0.0.1:1", "climate", api.GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(newClient(t, tt.baseURL))
			c := query.NewController()
			c.SetQuery(tt.query)

			require.True(t, sess.Fetch(c.Descriptor(tt.query, query.DefaultPageSize)))

			st := sess.State()
			assert.Equal(t, session.PhaseFailed, st.Phase)
			assert.Equal(t, tt.want, st.Err)
			assert.False(t, st.Loading)
		})
	}
}

func TestNotFoundUsesPlainDetail(t *testing.T) {
	_, srv := startNewsServer(t)
	client := newClient(t, srv.URL+"/missing")

	_, err := client.Filters(t.Context())
	require.Error(t, err)
	assert.Equal(t, "Not Found", api.Message(err))
	assert.Contains(t, fmt.Sprint(err), "Not Found")
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdocs/internal/catalog"
	"eventdocs/internal/generator"
	"eventdocs/internal/graph"
	"eventdocs/internal/observability"
	"eventdocs/internal/pipeline"
	"eventdocs/internal/storage"
)

func fixture() map[catalog.Collection][]*catalog.Entity {
	return map[catalog.Collection][]*catalog.Entity{
		catalog.Policies: {{ID: "OrderPolicy", Version: "1.0.0", Collection: catalog.Policies, Data: catalog.Data{
			Receives: []catalog.Reference{{ID: "OrderCreated"}},
			Sends:    []catalog.Reference{{ID: "ProcessOrder"}, {ID: "Missing"}},
		}}},
		catalog.Events:   {{ID: "OrderCreated", Version: "1.0.0", Collection: catalog.Events, Summary: "created"}},
		catalog.Commands: {{ID: "ProcessOrder", Version: "1.0.0", Collection: catalog.Commands}},
		catalog.Services: {{ID: "OrderService", Version: "1.0.0", Collection: catalog.Services, Data: catalog.Data{
			Sends:    []catalog.Reference{{ID: "OrderCreated"}},
			Receives: []catalog.Reference{{ID: "ProcessOrder"}},
		}}},
	}
}

type testEnv struct {
	srv   *httptest.Server
	store *storage.SQLiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	metrics := observability.NewCollector("eventdocs")
	p := pipeline.New(storage.NewMemory(fixture()), pipeline.WithMetrics(metrics))
	b := graph.NewBuilder(p, graph.WithMetrics(metrics))

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := New(p, b,
		WithMetrics(metrics),
		WithGraphStore(store),
		WithExport(generator.LLMSOptions{Organization: "Acme", BaseURL: "https://docs.acme.dev"}),
	)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t)
	resp, body := get(t, env.srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestServer_Collections(t *testing.T) {
	env := newTestEnv(t)

	resp, body := get(t, env.srv.URL+"/api/collections/policies")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "OrderPolicy", items[0]["id"])
	assert.Len(t, items[0]["receives"], 1)

	resp, _ = get(t, env.srv.URL+"/api/collections/widgets")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, env.srv.URL+"/api/collections/policies?allVersions=maybe")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	t.Run("diagnostics reflect the unresolved send", func(t *testing.T) {
		resp, body := get(t, env.srv.URL+"/api/diagnostics")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out struct {
			Total   int            `json:"total"`
			Reasons map[string]int `json:"reasons"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Equal(t, 1, out.Total)
		assert.Equal(t, 1, out.Reasons["no_candidate"])
	})
}

func TestServer_Graphs(t *testing.T) {
	env := newTestEnv(t)

	resp, body := get(t, env.srv.URL+"/api/graphs/policy/OrderPolicy?mode=full")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var g struct {
		Nodes []struct {
			ID   string         `json:"id"`
			Data map[string]any `json:"data"`
		} `json:"nodes"`
		Edges []struct {
			Label string `json:"label"`
		} `json:"edges"`
	}
	require.NoError(t, graph.ValidateJSON([]byte(body)))
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Len(t, g.Nodes, 4)
	assert.Len(t, g.Edges, 4)
	assert.Equal(t, "full", g.Nodes[0].Data["mode"])

	resp, body = get(t, env.srv.URL+"/api/graphs/policies/OrderPolicy/mermaid")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "flowchart LR\n"))
	assert.Contains(t, body, "triggered by")

	t.Run("unknown focal record is an empty canvas", func(t *testing.T) {
		resp, body := get(t, env.srv.URL+"/api/graphs/policy/Nope")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, graph.ValidateJSON([]byte(body)))
		assert.JSONEq(t, `{"nodes":[],"edges":[]}`, body)

		resp, body = get(t, env.srv.URL+"/api/graphs/policy/Nope/mermaid")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "flowchart LR\n", body)
	})

	resp, _ = get(t, env.srv.URL+"/api/graphs/widget/OrderPolicy")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, env.srv.URL+"/api/graphs/policy/OrderPolicy?mode=huge")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SavedGraphs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.store.SaveGraph(ctx, graph.KindPolicy, "OrderPolicy", "1.0.0", graph.ModeSimple,
		&graph.Graph{Nodes: []graph.Node{}, Edges: []graph.Edge{}})
	require.NoError(t, err)

	resp, body := get(t, env.srv.URL+"/api/saved-graphs/"+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"focalId":"OrderPolicy"`)

	resp, _ = get(t, env.srv.URL+"/api/saved-graphs/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_LLMSTextAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp, body := get(t, env.srv.URL+"/llms.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "# Acme EventCatalog Documentation"))
	assert.Contains(t, body, "- [OrderCreated - 1.0.0](https://docs.acme.dev/docs/events/OrderCreated/1.0.0.mdx) - created")

	get(t, env.srv.URL+"/api/graphs/policy/OrderPolicy")
	resp, body = get(t, env.srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "eventdocs_graph_builds_total")
	assert.Contains(t, body, `route="/api/graphs/{kind}/{id}`)
}

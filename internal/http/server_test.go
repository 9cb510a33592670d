package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/metrics"
	"github.com/daveio/golinks/internal/model"
	"github.com/daveio/golinks/internal/testutil"
)

func testConfig() config.Config {
	return config.Config{
		DBDriver:       config.DriverSQLite,
		DBPath:         ":memory:",
		Version:        "test",
		Environment:    "test",
		LookupTimeout:  time.Second,
		CacheTTL:       time.Minute,
		MetricsEnabled: true,
	}
}

func newTestServer(t *testing.T, records ...model.Redirect) (*gin.Engine, Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.OpenSQLite(t)
	if len(records) > 0 {
		require.NoError(t, testutil.NewDatabaseCleaner(conn).CleanAndSeed(records))
	}

	deps := Deps{DB: conn, Metrics: metrics.New(prometheus.NewRegistry())}
	return NewServer(testConfig(), deps), deps
}

func get(router http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewServer_Routes(t *testing.T) {
	router, _ := newTestServer(t)

	routes := map[string]bool{}
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{"GET /go/:slug", "GET /api/redirects", "GET /api/ping", "GET /metrics"} {
		assert.True(t, routes[expected], "missing route %s", expected)
	}
	assert.False(t, routes["POST /shorten"])
}

func TestServer_Redirect_Success(t *testing.T) {
	router, _ := newTestServer(t, model.Redirect{Slug: "docs", Destination: "https://example.com/documentation"})

	w := get(router, "/go/docs")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/documentation", w.Header().Get("Location"))
}

func TestServer_Redirect_NotFound(t *testing.T) {
	router, _ := newTestServer(t)

	w := get(router, "/go/anything")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "Redirect not found", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestServer_Redirect_EmptySlugNeverRedirects(t *testing.T) {
	router, _ := newTestServer(t, model.Redirect{Slug: "docs", Destination: "https://example.com"})

	for _, path := range []string{"/go/", "/go"} {
		w := get(router, path)
		assert.NotEqual(t, http.StatusFound, w.Code, path)
		assert.NotEqual(t, "https://example.com", w.Header().Get("Location"), path)
	}
}

func TestServer_Redirect_StoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := testutil.OpenSQLite(t)
	core, logs := observer.New(zap.ErrorLevel)
	router := NewServer(testConfig(), Deps{DB: conn, Logger: zap.New(core)})
	conn.Close()

	w := get(router, "/go/docs")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotZero(t, logs.FilterMessage("redirect lookup failed").Len(), "store errors must be reported")
}

func TestServer_ListRedirects(t *testing.T) {
	router, _ := newTestServer(t,
		model.Redirect{Slug: "zeta", Destination: "https://example.com/z"},
		model.Redirect{Slug: "alpha", Destination: "https://example.com/a"},
	)

	w := get(router, "/api/redirects")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK     bool     `json:"ok"`
		Result []string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, []string{"alpha", "zeta"}, resp.Result)
	assert.Equal(t, apiVersion, w.Header().Get("X-API-Version"))
}

func TestServer_SecurityHeaders(t *testing.T) {
	router, _ := newTestServer(t)

	w := get(router, "/go/docs")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Empty(t, w.Header().Get("X-API-Version"))
}

func TestServer_RequestID(t *testing.T) {
	router, _ := newTestServer(t)

	w := get(router, "/api/ping", HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = get(router, "/api/ping")
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	w = get(router, "/api/ping", HeaderRequestID, "has spaces in it")
	assert.NotEqual(t, "has spaces in it", w.Header().Get(HeaderRequestID))
}

func TestServer_Metrics(t *testing.T) {
	router, _ := newTestServer(t, model.Redirect{Slug: "docs", Destination: "https://example.com"})

	get(router, "/go/docs")
	get(router, "/go/docs")
	get(router, "/go/missing")
	get(router, "/nowhere")

	w := get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `golinks_http_responses_total{class="3xx",method="GET",route="/go/:slug"} 2`)
	assert.Contains(t, body, `golinks_http_responses_total{class="4xx",method="GET",route="/go/:slug"} 1`)
	assert.Contains(t, body, `golinks_http_responses_total{class="4xx",method="GET",route="unmatched"} 1`)
	assert.Contains(t, body, `golinks_resolutions_total{outcome="not_found"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.MetricsEnabled = false
	router := NewServer(cfg, Deps{DB: testutil.OpenSQLite(t), Metrics: metrics.New(prometheus.NewRegistry())})

	assert.Equal(t, http.StatusNotFound, get(router, "/metrics").Code)
}

func TestServer_Recovery(t *testing.T) {
	router, _ := newTestServer(t)
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := get(router, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestServer_ConcurrentRedirects(t *testing.T) {
	records := testutil.CreateTestRedirects(10)
	router, _ := newTestServer(t, records...)

	var wg sync.WaitGroup
	failures := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := records[i%len(records)]
			w := get(router, "/go/"+rec.Slug)
			if w.Code != http.StatusFound || w.Header().Get("Location") != rec.Destination {
				failures <- rec.Slug
			}
		}(i)
	}
	wg.Wait()
	close(failures)

	for slug := range failures {
		t.Errorf("Concurrent redirect failed for %s", slug)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte("done"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- Serve(ctx, ln, h, 5*time.Second, zap.NewNop()) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	type result struct {
		body string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := client.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		got <- result{body: buf.String()}
	}()

	<-started
	cancel()
	close(release)

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, "done", r.body, "in-flight request must complete during shutdown")

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after shutdown")
	}
}

func TestServe_ListenerError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln.Close()

	err = Serve(context.Background(), ln, http.NotFoundHandler(), time.Second, zap.NewNop())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}

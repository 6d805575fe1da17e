package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-web/internal/config"
	"github.com/tartampluch/go-birthday-web/internal/metrics"
)

// MockClock pins "now" so responses are deterministic.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// fixedNow is 10:00 on Jan 5th 2018.
var fixedNow = time.Date(2018, 1, 5, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	srv, err := New("127.0.0.1:0", Deps{
		Clock:   MockClock{CurrentTime: fixedNow},
		Metrics: metrics.New(),
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	return srv, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// -----------------------------------------------------------------------------
// Text Endpoints
// -----------------------------------------------------------------------------

func TestHandler_TextEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name       string
		target     string
		lang       string
		wantStatus int
		wantBody   string
	}{
		{"Hello world", "/hello-world/", "", http.StatusOK, "Hello World"},
		{"Hello world in French", "/hello-world/", "fr-FR,fr;q=0.9", http.StatusOK, "Bonjour le monde"},
		{"Current date", "/date/", "", http.StatusOK, "Today is 05, January 2018"},
		{"Current date in French", "/date/", "fr", http.StatusOK, "Nous sommes le 05 janvier 2018"},
		{"Age before birthday", "/my-age/1992/1/20/", "", http.StatusOK, "25"},
		{"Age after birthday", "/my-age/1992/1/2/", "", http.StatusOK, "26"},
		{"Age on birthday", "/my-age/1992/1/5/", "", http.StatusOK, "26"},
		{"Age with non-integer segment", "/my-age/abc/1/20/", "", http.StatusNotFound, ""},
		{"Age with overflowing year", "/my-age/99999999999999999999999/1/20/", "", http.StatusNotFound, config.HTTPMsgNotFound + "\n"},
		{"Countdown", "/next-birthday/1990-01-10/", "", http.StatusOK, "Days until next birthday: 5"},
		{"Countdown in French", "/next-birthday/1990-01-10/", "fr", http.StatusOK, "Jours avant le prochain anniversaire : 5"},
		{"Countdown earlier today rolls over", "/next-birthday/1990-01-05/", "", http.StatusOK, "Days until next birthday: 365"},
		{"Countdown bad month", "/next-birthday/2021-13-40/", "", http.StatusBadRequest, "Bad Request"},
		{"Countdown not a date", "/next-birthday/not-a-date/", "", http.StatusBadRequest, "Bad Request"},
		{"Countdown impossible date", "/next-birthday/2021-02-29/", "", http.StatusBadRequest, "Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.lang != "" {
				headers[config.HeaderAcceptLanguage] = tt.lang
			}
			resp, body := do(t, h, http.MethodGet, tt.target, headers)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, body)
				assert.Equal(t, config.MimeTextPlain, resp.Header.Get(config.HeaderContentType))
			}
		})
	}
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodHead, "/hello-world/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t)

	resp, _ := do(t, h, http.MethodPost, "/hello-world/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// HTML Endpoints
// -----------------------------------------------------------------------------

func TestHandler_Profile(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodGet, "/profile/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextHTML, resp.Header.Get(config.HeaderContentType))
	assert.Contains(t, body, "Guido van Rossum")
	assert.Contains(t, body, "62")
}

func TestHandler_Authors(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodGet, "/authors/", map[string]string{config.HeaderAcceptLanguage: "fr"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<html lang="fr">`)
	assert.Contains(t, body, "Auteurs")
	assert.Contains(t, body, `<a href="/author/borges">Jorge Luis Borges</a>`)
	assert.Contains(t, body, `<a href="/author/poe">Edgar Allan Poe</a>`)
}

func TestHandler_AuthorDetail(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodGet, "/author/poe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Edgar Allan Poe")
	assert.Contains(t, body, "US")
	assert.Contains(t, body, "The Raven")
	assert.Contains(t, body, "January 19, 1809")

	resp, body = do(t, h, http.MethodGet, "/author/tolkien", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No author named tolkien", body)
}

// -----------------------------------------------------------------------------
// Generated Documents & Caching
// -----------------------------------------------------------------------------

func TestHandler_AuthorVCard_Caching(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodGet, "/author/borges/vcard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextVCard, resp.Header.Get(config.HeaderContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderContentDisposition), "borges.vcf")
	assert.Contains(t, body, "FN:Jorge Luis Borges")
	assert.Contains(t, body, "BDAY:1899-08-24")

	etag := resp.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	resp, body = do(t, h, http.MethodGet, "/author/borges/vcard", map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	resp, _ = do(t, h, http.MethodGet, "/author/nobody/vcard", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_AuthorsCalendar(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodGet, "/authors/calendar.ics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.Contains(t, body, "SUMMARY:Birthday: Edgar Allan Poe")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20180119")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20180824")
}

func TestHandler_NextBirthdayCalendar(t *testing.T) {
	_, h := newTestServer(t)

	resp, body := do(t, h, http.MethodGet, "/next-birthday/1990-01-05/calendar.ics", map[string]string{config.HeaderAcceptLanguage: "fr"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:Anniversaire : 1990-01-05")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20190105", "10:00 on the day itself rolls to next year")

	resp, _ = do(t, h, http.MethodGet, "/next-birthday/1990-02-30/calendar.ics", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Middleware & Metrics
// -----------------------------------------------------------------------------

func TestMiddleware_RequestID(t *testing.T) {
	_, h := newTestServer(t)

	resp, _ := do(t, h, http.MethodGet, "/hello-world/", nil)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderRequestID))

	resp, _ = do(t, h, http.MethodGet, "/hello-world/", map[string]string{config.HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", resp.Header.Get(config.HeaderRequestID))
}

func TestMiddleware_Recovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	resp, body := do(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, config.HTTPMsgInternalErr)
	assert.Contains(t, logs.String(), config.ErrPanicRecovered)
}

func TestMiddleware_RequestLogHasOneComponent(t *testing.T) {
	var logs bytes.Buffer
	srv, err := New("127.0.0.1:0", Deps{
		Clock:  MockClock{CurrentTime: fixedNow},
		Logger: slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	require.NoError(t, err)

	do(t, srv.Routes(), http.MethodGet, "/hello-world/", nil)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if !strings.Contains(line, config.MsgHTTPRequest) {
			continue
		}
		found = true
		assert.Equal(t, 1, strings.Count(line, `"`+config.LogKeyComponent+`"`), line)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, config.CompHTTP, entry[config.LogKeyComponent])
	}
	assert.True(t, found, "request log line missing")
}

func TestMetrics_RecordedPerRoute(t *testing.T) {
	_, h := newTestServer(t)

	do(t, h, http.MethodGet, "/next-birthday/not-a-date/", nil)
	do(t, h, http.MethodGet, "/author/tolkien", nil)

	resp, body := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `gobirthdayweb_http_requests_total{code="400",route="/next-birthday/{birthday}/"} 1`)
	assert.Contains(t, body, `gobirthdayweb_http_requests_total{code="404",route="/author/{last_name}"} 1`)
	assert.Contains(t, body, "gobirthdayweb_date_parse_failures_total 1")
	assert.Contains(t, body, "gobirthdayweb_author_lookup_misses_total 1")
}

// TestServer_ConcurrentRequests exercises the shared directory, translator and
// metrics from many goroutines. Run this with `go test -race`.
func TestServer_ConcurrentRequests(t *testing.T) {
	_, h := newTestServer(t)
	var wg sync.WaitGroup

	targets := []string{"/date/", "/my-age/1992/1/20/", "/next-birthday/1990-03-10/", "/author/poe", "/authors/calendar.ics"}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				req := httptest.NewRequest(http.MethodGet, targets[(i+j)%len(targets)], nil)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				if w.Code != http.StatusOK {
					t.Errorf("Unexpected status code during concurrency test: %d", w.Code)
				}
			}
		}(i)
	}
	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle binds a real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const addr = "127.0.0.1:18099"

	srv, err := New(addr, Deps{
		Clock:  MockClock{CurrentTime: fixedNow},
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://" + addr + "/hello-world/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRequiresAddr(t *testing.T) {
	srv, err := New("", Deps{})
	require.NoError(t, err)

	err = srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}

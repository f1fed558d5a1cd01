package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qthwatch/qthfeeds/internal/cache"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	store, err := cache.OpenSQLite(filepath.Join(t.TempDir(), "cache.sqlite3"))
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cl, err := New(store, baseURL, time.Hour, 5*time.Second)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return cl
}

func TestDocumentParsesAndCaches(t *testing.T) {
	var hits int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1 id="t">Swap Meet</h1></body></html>`))
	}))
	defer origin.Close()

	cl := newTestClient(t, origin.URL)

	for i := 0; i < 2; i++ {
		doc, err := cl.Document("index.php", nil)
		if err != nil {
			t.Fatalf("Document %d error: %v", i, err)
		}
		if got := doc.Find("#t").Text(); got != "Swap Meet" {
			t.Fatalf("Document %d parsed %q", i, got)
		}
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("origin hits = %d, want 1 (second read should come from cache)", n)
	}
}

func TestDocumentDistinguishesQueryParams(t *testing.T) {
	var hits int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html><body>page " + r.URL.Query().Get("page") + "</body></html>"))
	}))
	defer origin.Close()

	cl := newTestClient(t, origin.URL)

	for _, page := range []string{"1", "2", "1"} {
		if _, err := cl.Document("index.php", url.Values{"page": {page}}); err != nil {
			t.Fatalf("Document page=%s error: %v", page, err)
		}
	}

	// page=1 twice (one cached) + page=2 once
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("origin hits = %d, want 2", n)
	}
}

func TestDocumentReturnsFetchErrorOnBadStatus(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer origin.Close()

	cl := newTestClient(t, origin.URL)

	_, err := cl.Document("missing.php", nil)
	if err == nil {
		t.Fatalf("expected error for 404 page")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", fe.StatusCode)
	}
	if fe.Timeout() {
		t.Fatalf("a 404 must not report Timeout()")
	}
}

func TestResolveMergesParams(t *testing.T) {
	cl := newTestClient(t, "https://swap.qth.com")

	got, err := cl.Resolve("index.php", url.Values{"page": {"3"}})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != "https://swap.qth.com/index.php?page=3" {
		t.Fatalf("Resolve = %q", got)
	}

	abs, err := cl.Resolve("https://swap.qth.com/c_radio.php", nil)
	if err != nil || abs != "https://swap.qth.com/c_radio.php" {
		t.Fatalf("Resolve absolute = %q err=%v", abs, err)
	}
}

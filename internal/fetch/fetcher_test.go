package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autocheckrh/reconciler/internal/throttle"
)

func newTestFetcher() *Fetcher {
	return New(Config{UserAgent: "test-agent", Timeout: 0}, throttle.NewRegistry(0), zap.NewNop())
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "http://example.com/nfce", "http://example.com/nfce"},
		{"https preserved", "https://example.com", "https://example.com"},
		{"schemeless gets http", "example.com/path", "http://example.com/path"},
		{"bom stripped", "\ufeffhttp://example.com", "http://example.com"},
		{"zero width stripped", "http://exam\u200bple.com", "http://example.com"},
		{"nbsp stripped", "http://example.com\u00a0", "http://example.com"},
		{"garbage before scheme cut", "scanned: https://example.com/q?p=1", "https://example.com/q?p=1"},
		{"file target untouched", "file:///tmp/receipt.html", "file:///tmp/receipt.html"},
		{"empty stays empty", "   ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeTarget(tc.in))
		})
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Valor a pagar R$ 45,00</body></html>")
	}))
	defer srv.Close()

	res := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.True(t, res.OK())
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Body, "45,00")
	require.Equal(t, srv.URL, res.Target)
	require.NotEmpty(t, res.FinalURL)
	require.Greater(t, res.Elapsed.Nanoseconds(), int64(0))
}

func TestFetchBinaryContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 not html"))
	}))
	defer srv.Close()

	res := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Empty(t, res.Err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Empty(t, res.Body)
	require.False(t, res.OK())
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.False(t, res.OK())
	require.NotEmpty(t, res.Err)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestFetchEmptyTarget(t *testing.T) {
	res := newTestFetcher().Fetch(context.Background(), "   ")
	require.Equal(t, "empty url", res.Err)
	require.False(t, res.OK())
}

func TestFetchFileTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body>Número: 123456</body></html>"), 0o644))

	res := newTestFetcher().Fetch(context.Background(), "file://"+path)

	require.True(t, res.OK())
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Body, "123456")
}

func TestFetchFileMissing(t *testing.T) {
	res := newTestFetcher().Fetch(context.Background(), "file:///nonexistent/receipt.html")
	require.Contains(t, res.Err, "file not found")
	require.False(t, res.OK())
}

func TestFetchAllSlotOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body>page %s</body></html>", r.URL.Path)
	}))
	defer srv.Close()

	targets := make([]string, 8)
	for i := range targets {
		targets[i] = fmt.Sprintf("%s/doc-%d", srv.URL, i)
	}

	results := newTestFetcher().FetchAll(context.Background(), targets, 3)

	require.Len(t, results, len(targets))
	for i, res := range results {
		require.Equal(t, targets[i], res.Target)
		require.True(t, res.OK())
		require.Contains(t, res.Body, fmt.Sprintf("/doc-%d", i))
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	targets := []string{srv.URL + "/a", deadURL, srv.URL + "/b", "", srv.URL + "/c"}
	results := newTestFetcher().FetchAll(context.Background(), targets, 2)

	require.Len(t, results, len(targets))
	require.True(t, results[0].OK())
	require.NotEmpty(t, results[1].Err)
	require.True(t, results[2].OK())
	require.Equal(t, "empty url", results[3].Err)
	require.True(t, results[4].OK())
}

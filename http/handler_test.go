package http_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/sagarc03/statica"
	"github.com/sagarc03/statica/filesystem"
	statichttp "github.com/sagarc03/statica/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func sampleBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

var testFiles = map[string][]byte{
	"hello.txt":          []byte("Hello, World!"),
	"data.bin":           sampleBytes(1000),
	"empty.txt":          {},
	"docs/readme.md":     []byte("# readme\n"),
	"docs/guide/a b.txt": []byte("spaced"),
	"index.html":         []byte("<html><body>home</body></html>"),
}

func defaultConfig() statichttp.HandlerConfig {
	return statichttp.HandlerConfig{
		Mode:        statica.ModeCompat,
		MaxAge:      statica.DefaultMaxAge,
		Compression: statichttp.CompressionConfig{Enabled: true, Level: statica.DefaultCompressionLevel},
		Listing:     true,
	}
}

func newRouter(t *testing.T, cfg statichttp.HandlerConfig) http.Handler {
	t.Helper()

	dir := t.TempDir()
	for name, content := range testFiles {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, content, 0o644))
	}

	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return statichttp.NewHandler(&cfg, filesystem.NewFileStorage(root)).Router()
}

func do(router http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Get_FullResource(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/hello.txt", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, World!", rec.Body.String())
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, "text/plain; charset=UTF-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "max-age=10", rec.Header().Get("Cache-Control"))
	assert.Regexp(t, regexp.MustCompile(`^\d+000-13$`), rec.Header().Get("Etag"))
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Empty(t, rec.Header().Get("Content-Range"))
	assert.Empty(t, rec.Header().Get("Accept-Ranges"))
	assert.NotEmpty(t, rec.Header().Get(statichttp.RequestIDHeader))
}

func TestHandler_Get_EmptyFile(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/empty.txt", map[string]string{"Range": "bytes=0-10"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Body.Bytes())
}

func TestHandler_Get_NotModified(t *testing.T) {
	router := newRouter(t, defaultConfig())

	first := do(router, http.MethodGet, "/hello.txt", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("Etag")
	lastModified := first.Header().Get("Last-Modified")

	rec := do(router, http.MethodGet, "/hello.txt", map[string]string{
		"If-None-Match":     etag,
		"If-Modified-Since": lastModified,
	})

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, etag, rec.Header().Get("Etag"))
	assert.Equal(t, "max-age=10", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestHandler_Get_BothValidatorsRequired(t *testing.T) {
	router := newRouter(t, defaultConfig())

	first := do(router, http.MethodGet, "/hello.txt", nil)
	etag := first.Header().Get("Etag")
	lastModified := first.Header().Get("Last-Modified")

	onlyETag := do(router, http.MethodGet, "/hello.txt", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, onlyETag.Code)
	assert.Equal(t, "Hello, World!", onlyETag.Body.String())

	onlyDate := do(router, http.MethodGet, "/hello.txt", map[string]string{"If-Modified-Since": lastModified})
	assert.Equal(t, http.StatusOK, onlyDate.Code)
	assert.Equal(t, "Hello, World!", onlyDate.Body.String())
}

func TestHandler_Get_Range(t *testing.T) {
	content := testFiles["data.bin"]

	tests := []struct {
		name         string
		header       string
		want         []byte
		acceptRanges string
	}{
		{name: "explicit", header: "bytes=100-199", want: content[100:200], acceptRanges: "bytes 100-199/1000"},
		{name: "end at max int64", header: "bytes=0-9223372036854775807", want: content, acceptRanges: "bytes 0-999/1000"},
		{name: "default end", header: "bytes=100-", want: content[100:], acceptRanges: "bytes 100-1000/1000"},
		{name: "suffix serves whole file", header: "bytes=-500", want: content, acceptRanges: "bytes 0-1000/1000"},
	}

	router := newRouter(t, defaultConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodGet, "/data.bin", map[string]string{"Range": tt.header})

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.Bytes())
			assert.Equal(t, fmt.Sprint(len(tt.want)), rec.Header().Get("Content-Length"))
			assert.Equal(t, "bytes", rec.Header().Get("Content-Range"))
			assert.Equal(t, tt.acceptRanges, rec.Header().Get("Accept-Ranges"))
		})
	}
}

func TestHandler_Get_MalformedRangeServesFullResource(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/data.bin", map[string]string{"Range": "lines=1-2"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testFiles["data.bin"], rec.Body.Bytes())
	assert.Empty(t, rec.Header().Get("Content-Range"))
}

func TestHandler_Get_RangeNotSatisfiable(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/data.bin", map[string]string{
		"Range":           "bytes=5000-",
		"Accept-Encoding": "gzip",
	})

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Body.String(), "range_not_satisfiable")
}

func TestHandler_Get_StrictMode(t *testing.T) {
	cfg := defaultConfig()
	cfg.Mode = statica.ModeStrict
	router := newRouter(t, cfg)
	content := testFiles["data.bin"]

	rec := do(router, http.MethodGet, "/data.bin", map[string]string{"Range": "bytes=-500"})

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, content[500:], rec.Body.Bytes())
	assert.Equal(t, "bytes 500-999/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))

	etag := rec.Header().Get("Etag")
	assert.Regexp(t, regexp.MustCompile(`^"\d+-1000"$`), etag)

	cached := do(router, http.MethodGet, "/data.bin", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.Bytes())
}

func TestHandler_Get_StrictRangeIsNotEncoded(t *testing.T) {
	cfg := defaultConfig()
	cfg.Mode = statica.ModeStrict
	router := newRouter(t, cfg)
	content := testFiles["data.bin"]

	rec := do(router, http.MethodGet, "/data.bin", map[string]string{
		"Range":           "bytes=100-199",
		"Accept-Encoding": "gzip",
	})

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Empty(t, rec.Header().Values("Content-Encoding"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, content[100:200], rec.Body.Bytes())

	full := do(router, http.MethodGet, "/data.bin", map[string]string{"Accept-Encoding": "gzip"})

	assert.Equal(t, http.StatusOK, full.Code)
	assert.Equal(t, "gzip", full.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", full.Header().Get("Vary"))
	assert.Equal(t, content, decode(t, "gzip", full.Body.Bytes()))
}

func decode(t *testing.T, encoding string, body []byte) []byte {
	t.Helper()

	var (
		r   io.ReadCloser
		err error
	)
	switch encoding {
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(body))
	case "deflate":
		r, err = zlib.NewReader(bytes.NewReader(body))
	default:
		return body
	}
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestHandler_Get_ContentEncoding(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		want           string
	}{
		{name: "gzip", acceptEncoding: "gzip", want: "gzip"},
		{name: "deflate", acceptEncoding: "deflate", want: "deflate"},
		{name: "gzip preferred", acceptEncoding: "deflate, gzip", want: "gzip"},
		{name: "unsupported", acceptEncoding: "br", want: ""},
		{name: "absent", acceptEncoding: "", want: ""},
	}

	router := newRouter(t, defaultConfig())
	content := testFiles["data.bin"]

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.acceptEncoding != "" {
				headers["Accept-Encoding"] = tt.acceptEncoding
			}

			rec := do(router, http.MethodGet, "/data.bin", headers)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Content-Encoding"))
			if tt.want == "" {
				assert.Empty(t, rec.Header().Values("Content-Encoding"))
				assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
			} else {
				assert.Empty(t, rec.Header().Get("Content-Length"))
			}
			assert.Equal(t, content, decode(t, tt.want, rec.Body.Bytes()))
		})
	}
}

func TestHandler_Get_CompressedRange(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/data.bin", map[string]string{
		"Range":           "bytes=10-19",
		"Accept-Encoding": "gzip",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, testFiles["data.bin"][10:20], decode(t, "gzip", rec.Body.Bytes()))
}

func TestHandler_Get_CompressionDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Compression.Enabled = false
	router := newRouter(t, cfg)

	rec := do(router, http.MethodGet, "/hello.txt", map[string]string{"Accept-Encoding": "gzip"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Hello, World!", rec.Body.String())
}

func TestHandler_Get_NotFound(t *testing.T) {
	router := newRouter(t, defaultConfig())

	for _, target := range []string{"/missing.txt", "/docs/missing/", "/../../etc/passwd", "/hello.txt/child"} {
		rec := do(router, http.MethodGet, target, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Empty(t, rec.Body.Bytes(), target)
	}
}

func TestHandler_Get_InvalidPath(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/a%00b", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_path")
}

func TestHandler_Get_Directory(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Etag"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, `href="/hello.txt"`)
	assert.Contains(t, body, `href="/docs/"`)
	assert.Contains(t, body, "13 B")
	assert.NotContains(t, body, "../")

	nested := do(router, http.MethodGet, "/docs/guide", map[string]string{"Accept-Encoding": "gzip"})

	assert.Equal(t, http.StatusOK, nested.Code)
	assert.Empty(t, nested.Header().Get("Content-Encoding"))
	assert.Contains(t, nested.Body.String(), `href="/docs/guide/a%20b.txt"`)
	assert.Contains(t, nested.Body.String(), `href="/docs"`)
}

func TestHandler_Get_DirectoryListingDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Listing = false
	router := newRouter(t, cfg)

	rec := do(router, http.MethodGet, "/docs/", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestHandler_Head(t *testing.T) {
	router := newRouter(t, defaultConfig())

	rec := do(router, http.MethodHead, "/hello.txt", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.NotEmpty(t, rec.Header().Get("Etag"))
	assert.Empty(t, rec.Body.Bytes())

	dir := do(router, http.MethodHead, "/docs/", nil)
	assert.Equal(t, http.StatusOK, dir.Code)
	assert.NotEmpty(t, dir.Header().Get("Content-Length"))
	assert.Empty(t, dir.Body.Bytes())
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	router := newRouter(t, defaultConfig())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := do(router, method, "/hello.txt", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestHandler_CORS(t *testing.T) {
	cfg := defaultConfig()
	cfg.CORS = statichttp.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{"GET", "HEAD"},
	}
	router := newRouter(t, cfg)

	rec := do(router, http.MethodGet, "/hello.txt", map[string]string{"Origin": "https://example.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_ConcurrentRequestsAreIsolated(t *testing.T) {
	server := httptest.NewServer(newRouter(t, defaultConfig()))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	for i := range 40 {
		eg.Go(func() error {
			target, wantStatus, wantBody := "/hello.txt", http.StatusOK, testFiles["hello.txt"]
			switch i % 3 {
			case 1:
				target, wantStatus, wantBody = fmt.Sprintf("/missing-%d.txt", i), http.StatusNotFound, []byte{}
			case 2:
				target, wantBody = "/data.bin", testFiles["data.bin"]
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+target, nil)
			if err != nil {
				return err
			}
			resp, err := server.Client().Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != wantStatus {
				return fmt.Errorf("%s: status %d, want %d", target, resp.StatusCode, wantStatus)
			}
			if !bytes.Equal(body, wantBody) {
				return fmt.Errorf("%s: body mismatch (%d bytes)", target, len(body))
			}
			return nil
		})
	}

	assert.NoError(t, eg.Wait())
}

// Package marketdata fetches and normalizes daily close prices, converting
// everything to the reporting currency.
package marketdata

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/cloudon7281/investment-reviews/date"
)

// diskCache is an http.RoundTripper caching successful responses on disk.
// The cache key includes the day, so entries expire overnight: close prices
// only change once a day, but they do change.
type diskCache struct {
	base http.RoundTripper
	dir  string
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", date.Today(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	slog.Debug("fetched", "method", req.Method, "host", req.URL.Host,
		"path", req.URL.Path, "status", resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		slog.Debug("cache write failed, ignored", "err", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	// DumpResponse drained the body, give the caller a fresh one
	resp.Body = io.NopCloser(bytes.NewReader(contentBody(content)))
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}

// contentBody returns the body part of a dumped response.
func contentBody(dump []byte) []byte {
	if i := bytes.Index(dump, []byte("\r\n\r\n")); i >= 0 {
		return dump[i+4:]
	}
	return nil
}

// newClient builds the HTTP client used against the quote provider: a
// cookie jar for the session cookies the provider insists on, and a daily
// disk cache so repeated runs within a day hit the network once.
func newClient(cacheDir string) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}
	return &http.Client{
		Jar:       jar,
		Timeout:   20 * time.Second,
		Transport: &diskCache{base: http.DefaultTransport, dir: cacheDir},
	}, nil
}

// userAgent is sent on every request; the provider rejects the Go default.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// getJSON performs a GET and decodes the JSON response into a generic
// value, suitable for path extraction.
func getJSON(client *http.Client, addr string) (any, error) {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding %v%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return data, nil
}

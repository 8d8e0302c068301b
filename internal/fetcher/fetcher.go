package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches audit target pages. It does a plain GET with no JS
// execution; the audit timeout is enforced by the http.Client deadline and
// the caller's context.
type Client struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

func NewClient(timeout, dialTimeout time.Duration, sizeCap int64) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

// Fetch GETs rawURL and returns the (size-capped, gunzipped) body, the final
// URL after redirects, and the content type. Non-2xx/3xx statuses and
// non-HTML content types are errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", "", fmt.Errorf("invalid url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", "", fmt.Errorf("failed to fetch website: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var body io.ReadCloser = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, "", "", err
		}
		body = gz
	}

	r := io.LimitReader(body, c.sizeCap)
	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") && mediaType != "" {
		// some servers omit the header entirely; only reject a stated non-html type
		body.Close()
		return nil, "", "", errors.New("non-html content")
	}

	finalURL := resp.Request.URL.String()
	return io.NopCloser(r), finalURL, contentType, nil
}

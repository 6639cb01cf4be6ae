package contentservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const fetchTimeout = 10 * time.Second

// apiResult is a raw upstream response body plus the pagination metadata
// the API reports in its headers.
type apiResult struct {
	body       []byte
	total      int
	totalPages int
}

// fetchCached returns the JSON body for the url, served from the cache
// while the entry is younger than the configured TTL. When the refresh
// fails and any entry exists for the key, stale included, that entry is
// returned instead of the error.
func (s *ContentService) fetchCached(ctx context.Context, url, key string, force bool) (*apiResult, error) {
	if key == "" {
		key = url
	}

	if !force {
		if entry, ok := s.cache.Fresh(key, s.ttl); ok {
			return entry.Data.(*apiResult), nil
		}
	}

	res, err := s.fetchJSON(ctx, url)
	if err != nil {
		if entry, ok := s.cache.Get(key); ok {
			s.logger.Warn("serving stale cache after failed refresh", slog.String("url", url), slog.String("error", err.Error()))
			return entry.Data.(*apiResult), nil
		}
		return nil, err
	}

	s.cache.Set(key, res)

	return res, nil
}

func (s *ContentService) fetchJSON(ctx context.Context, url string) (*apiResult, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("api returned invalid JSON for %s", url)
	}

	res := &apiResult{body: body}
	res.total, _ = strconv.Atoi(resp.Header.Get("X-WP-Total"))
	res.totalPages, _ = strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))

	return res, nil
}

// FetchAsset retrieves a binary asset from the origin with the configured
// credentials attached. Assets are not cached here; the proxy response
// carries its own Cache-Control header.
func (s *ContentService) FetchAsset(ctx context.Context, rawURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}

	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("asset request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return body, contentType, nil
}

// AssetInfo is the diagnostic result of a HEAD probe against an asset URL.
type AssetInfo struct {
	URL        string            `json:"url"`
	Status     int               `json:"status"`
	StatusText string            `json:"status_text"`
	Headers    map[string]string `json:"headers"`
	OK         bool              `json:"ok"`
}

// DebugAsset performs a HEAD request against the URL and reports status and
// headers for diagnostics.
func (s *ContentService) DebugAsset(ctx context.Context, rawURL string) (*AssetInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &AssetInfo{
		URL:        rawURL,
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    headers,
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
	}, nil
}

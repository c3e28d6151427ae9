package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retag/internal/collectors"
	"retag/internal/logger"
	"retag/internal/parser"
)

type URLCollector struct{}

// Collect downloads a subscription. Bodies without any "://" are treated as
// base64 subscriptions and decoded before being split into lines.
func (c *URLCollector) Collect(ctx context.Context, config map[string]interface{}) ([]string, error) {
	// 1. Get URL
	targetURL := collectors.StringParam(config, "url")
	if targetURL == "" {
		return nil, fmt.Errorf("missing 'url' in collector config")
	}

	// 2. Setup Client
	timeout := 120 * time.Second
	if secs := collectors.IntParam(config, "timeout"); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	client := &http.Client{Timeout: timeout}

	// 3. Check for Internal Proxy Injection
	if proxyStr := collectors.StringParam(config, collectors.ProxyParam); proxyStr != "" {
		pURL, err := url.Parse(proxyStr)
		if err == nil {
			client.Transport = &http.Transport{
				Proxy: http.ProxyURL(pURL),
			}
			logger.Log.Debugf("HTTP Collector using proxy: %s", proxyStr)
		}
	}

	// 4. Fetch
	logger.Log.Debugf("Fetching URL: %s", targetURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return parser.SplitLines(DecodeSubscription(string(bodyBytes))), nil
}

// DecodeSubscription returns body unchanged when it already holds links and
// its base64 decoding otherwise. Undecodable bodies are returned as is.
func DecodeSubscription(body string) string {
	if strings.Contains(body, "://") {
		return body
	}
	compact := strings.Join(strings.Fields(body), "")
	if compact == "" {
		return body
	}
	decoded, err := parser.DecodeBase64(compact)
	if err != nil {
		logger.Log.Debugf("Subscription body is neither links nor base64: %v", err)
		return body
	}
	return decoded
}

func init() {
	collectors.Register("http", func() collectors.Collector {
		return &URLCollector{}
	})
}

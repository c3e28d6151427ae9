package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retag/internal/logger"
	"retag/internal/parser"
	"retag/internal/publishers"
)

// Publisher commits the payload to a repository file through the contents API.
type Publisher struct{}

type githubFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // Base64 encoded content
	Sha     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type githubFileResponse struct {
	Sha string `json:"sha"`
}

type target struct {
	token   string
	apiURL  string
	branch  string
	message string
	retries int
	client  *http.Client
}

func parseTarget(config map[string]interface{}) (*target, error) {
	token, _ := config["token"].(string)
	owner, _ := config["owner"].(string)
	repo, _ := config["repo"].(string)
	path, _ := config["path"].(string)
	branch, _ := config["branch"].(string)
	msg, _ := config["message"].(string)
	retries, _ := config["retries"].(int)

	if token == "" || owner == "" || repo == "" || path == "" {
		return nil, fmt.Errorf("git publisher requires token, owner, repo, and path")
	}
	if msg == "" {
		msg = "Update relabeled links [retag]"
	}

	apiBase, _ := config["api_url"].(string)
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	apiBase = strings.TrimRight(apiBase, "/")
	path = strings.TrimPrefix(path, "/")

	client := &http.Client{Timeout: 30 * time.Second}
	if proxyStr, _ := config["_proxy_url"].(string); proxyStr != "" {
		if u, err := url.Parse(proxyStr); err == nil {
			client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
			logger.Log.Debugf("Git Publisher using proxy: %s", proxyStr)
		}
	}

	return &target{
		token:   token,
		apiURL:  fmt.Sprintf("%s/repos/%s/%s/contents/%s", apiBase, owner, repo, path),
		branch:  branch,
		message: msg,
		retries: retries,
		client:  client,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, records []*parser.Record, config map[string]interface{}) error {
	payload, err := publishers.GenerateSubscriptionPayload(records, config)
	if err != nil {
		return err
	}

	t, err := parseTarget(config)
	if err != nil {
		return err
	}

	sha, err := t.currentSha(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(githubFileRequest{
		Message: t.message,
		Content: base64.StdEncoding.EncodeToString([]byte(payload)),
		Sha:     sha,
		Branch:  t.branch,
	})
	if err != nil {
		return err
	}

	resp, err := t.do(ctx, "Uploading file", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPut, t.apiURL, bytes.NewReader(body))
	}, func(code int) bool { return code >= 200 && code < 300 })
	if err != nil {
		return fmt.Errorf("git upload failed after retries: %w", err)
	}
	resp.Body.Close()

	logger.Log.Infof("🚀 Published %d records to %s", len(records), t.apiURL)
	return nil
}

// currentSha returns the blob sha of the existing file, or "" if it does not exist yet.
func (t *target) currentSha(ctx context.Context) (string, error) {
	resp, err := t.do(ctx, "Fetching file info", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.apiURL, nil)
		if err != nil {
			return nil, err
		}
		if t.branch != "" {
			q := req.URL.Query()
			q.Add("ref", t.branch)
			req.URL.RawQuery = q.Encode()
		}
		return req, nil
	}, func(code int) bool { return code == http.StatusOK || code == http.StatusNotFound })
	if err != nil {
		return "", fmt.Errorf("git fetch failed after retries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logger.Log.Debugf("Git: File not found, creating new...")
		return "", nil
	}

	var existing githubFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return "", fmt.Errorf("failed to parse git response: %w", err)
	}
	logger.Log.Debugf("Git: File exists (SHA: %s), updating...", existing.Sha)
	return existing.Sha, nil
}

// do sends the request built by build until ok accepts the status or the
// retries run out. The caller closes the returned body.
func (t *target) do(ctx context.Context, action string, build func() (*http.Request, error), ok func(int) bool) (*http.Response, error) {
	var lastErr error
	for i := 0; i <= t.retries; i++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+t.token)
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if req.Body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		logger.Log.Debugf("Git: %s (Attempt %d/%d)", action, i+1, t.retries+1)
		resp, err := t.client.Do(req)
		if err == nil && ok(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		}
		lastErr = err

		if i < t.retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
	return nil, lastErr
}

func init() {
	publishers.Register("github", func() publishers.Publisher { return &Publisher{} })
}

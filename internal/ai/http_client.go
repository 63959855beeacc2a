package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient talks to the AI service over its JSON API.
//
// Endpoints:
//   POST {base}/v1/predict-batch
//   POST {base}/v1/triage
//   POST {base}/v1/call-script
//   GET  {base}/v1/explain/{lead_id}
//   GET  {base}/healthz
//
// Adapter-only rules apply: no retries or orchestration here; callers own
// debounce, cancellation, and fallback behavior.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type HTTPClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("ai: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("ai: invalid base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Name() string { return "ai-http" }

func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai: health check status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) PredictBatch(ctx context.Context, req PredictBatchRequest) (PredictBatchResult, error) {
	var out PredictBatchResult
	err := c.postJSON(ctx, "/v1/predict-batch", req, &out)
	return out, err
}

func (c *HTTPClient) Triage(ctx context.Context, req TriageRequest) (TriageResult, error) {
	var out TriageResult
	err := c.postJSON(ctx, "/v1/triage", req, &out)
	return out, err
}

func (c *HTTPClient) GenerateCallScript(ctx context.Context, req ScriptRequest) (ScriptResult, error) {
	var out ScriptResult
	err := c.postJSON(ctx, "/v1/call-script", req, &out)
	return out, err
}

func (c *HTTPClient) ExplainScore(ctx context.Context, req ExplainRequest) (ExplainResult, error) {
	var out ExplainResult
	if req.LeadID == "" {
		return out, fmt.Errorf("ai: lead_id is required")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/explain/"+url.PathEscape(req.LeadID), nil)
	if err != nil {
		return out, err
	}
	c.setHeaders(httpReq)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, err
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("ai: explain status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ExplainResult{}, fmt.Errorf("ai: decode explain response: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ai: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai: %s status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ai: decode %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	_ = rc.Close()
}

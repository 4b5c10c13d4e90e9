package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/examscore/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// submitRequests posts every request to /predict using a worker pool.
// Outcomes are returned in request order.
func submitRequests(ctx context.Context, cfg *Config, reqs []Request, stats *Stats) []Outcome {
	logger.Get().Info(ctx, "submitting predictions",
		logger.Int("requests", len(reqs)),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/predict"
	outcomes := make([]Outcome, len(reqs))

	var submitted atomic.Int64
	var lastReport atomic.Int64
	reportInterval := time.Second

	indexes := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = submitSingle(ctx, client, url, reqs[i])
				n := submitted.Add(1)

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(reportInterval) && lastReport.CompareAndSwap(last, now) {
					logger.Get().Info(ctx, "progress",
						logger.Int("submitted", int(n)),
						logger.Int("total", len(reqs)))
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range reqs {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	stats.RequestsSubmitted = int(submitted.Load())
	return outcomes[:stats.RequestsSubmitted:stats.RequestsSubmitted]
}

// submitSingle posts one request and checks the status against its validity.
func submitSingle(ctx context.Context, client *HTTPClient, url string, r Request) Outcome {
	out := Outcome{Request: r}

	resp, err := client.Post(ctx, url, r.Features)
	if err != nil {
		out.Err = err.Error()
		return out
	}
	defer func() { _ = resp.Body.Close() }()
	out.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	switch resp.StatusCode {
	case StatusOK:
		var pr Response
		if err := json.Unmarshal(body, &pr); err != nil {
			out.Err = fmt.Sprintf("decode prediction: %v", err)
			return out
		}
		out.Response = &pr
		out.Violations = verifyResponse(&pr)
		if !r.Valid {
			out.Violations = append(out.Violations, "out-of-range features were accepted")
		}
	case StatusBadRequest:
		var er ErrorResponse
		if err := json.Unmarshal(body, &er); err != nil {
			out.Err = fmt.Sprintf("decode error body: %v", err)
			return out
		}
		if r.Valid {
			out.Violations = append(out.Violations, "valid features were rejected: "+er.Message)
		} else if er.Code != "invalid_features" || len(er.Fields) == 0 {
			out.Violations = append(out.Violations,
				fmt.Sprintf("rejection carries code %q with %d fields", er.Code, len(er.Fields)))
		}
	default:
		out.Err = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return out
}

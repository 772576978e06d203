// Package flexclient talks to the Flex Web Service: it requests statement
// generation, polls until the statement is ready, and downloads the raw body.
// The service generates reports asynchronously, so every download is a
// request/poll/fetch cycle with a bounded attempt budget.
package flexclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Flex Web Service endpoint root.
const DefaultBaseURL = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService"

const (
	apiVersion       = "3"
	sendRequestPath  = "/SendRequest"
	getStatementPath = "/GetStatement"

	// The service rejects requests without a User-Agent.
	userAgent = "flexquery-cli/0.2.0 (Go net/http)"
)

// Defaults mirror the service's documented generation latency: linear backoff
// starting at 5s and growing by 10s per attempt, seven attempts total.
const (
	DefaultMaxAttempts   = 7
	DefaultPollInterval  = 5 * time.Second
	DefaultWaitIncrement = 10 * time.Second

	defaultCallRetries = 3
)

// ReportRequest identifies one statement to download. Immutable.
type ReportRequest struct {
	ReportNumber string
	Token        string
}

// GenerationReference is the opaque code the service returns for a pending
// generation job. It is valid only for a bounded window and is consumed by
// exactly one successful download.
type GenerationReference string

// Config controls a Client. Zero fields fall back to defaults.
type Config struct {
	BaseURL       string
	MaxAttempts   int
	PollInterval  time.Duration
	WaitIncrement time.Duration // added to PollInterval per elapsed attempt
	HTTPClient    *http.Client
	Limiter       *rate.Limiter // throttles all outbound calls
	Logger        *slog.Logger
}

// Client issues the generation request, polls for readiness, and downloads
// the raw statement body. Safe for concurrent use: it holds no per-request
// state besides loop-local counters.
type Client struct {
	baseURL       string
	maxAttempts   int
	pollInterval  time.Duration
	waitIncrement time.Duration
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// New creates a Client, applying defaults for unset Config fields.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:       cfg.BaseURL,
		maxAttempts:   cfg.MaxAttempts,
		pollInterval:  cfg.PollInterval,
		waitIncrement: cfg.WaitIncrement,
		httpClient:    cfg.HTTPClient,
		limiter:       cfg.Limiter,
		logger:        cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxAttempts == 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.pollInterval == 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.waitIncrement == 0 {
		c.waitIncrement = DefaultWaitIncrement
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.limiter == nil {
		// The service rate-limits Flex calls; one per second is safe.
		c.limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// flexStatementResponse is the XML envelope for request acknowledgements and
// for error/not-ready markers on the statement endpoint.
type flexStatementResponse struct {
	XMLName       xml.Name `xml:"FlexStatementResponse"`
	Status        string   `xml:"Status"`
	ReferenceCode string   `xml:"ReferenceCode"`
	ErrorCode     string   `xml:"ErrorCode"`
	ErrorMessage  string   `xml:"ErrorMessage"`
}

// RequestGeneration asks the service to start generating the report and
// returns the reference code for the pending job.
func (c *Client) RequestGeneration(ctx context.Context, req ReportRequest) (GenerationReference, error) {
	u := c.endpoint(sendRequestPath, url.Values{
		"t": {req.Token},
		"q": {req.ReportNumber},
		"v": {apiVersion},
	})

	body, err := c.get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("requesting generation: %w", err)
	}

	var resp flexStatementResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: unparseable generation response: %v", ErrRequestRejected, err)
	}

	if resp.Status != "Success" {
		return "", newRequestError(resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.ReferenceCode == "" {
		return "", fmt.Errorf("%w: response missing reference code", ErrRequestRejected)
	}

	c.logger.Debug("generation requested", "report_number", req.ReportNumber, "reference", resp.ReferenceCode)
	return GenerationReference(resp.ReferenceCode), nil
}

// PollUntilReady fetches the statement for ref, sleeping between attempts
// until the service delivers the body or the attempt budget runs out. Waits
// grow linearly: PollInterval + attempt*WaitIncrement. A failed fetch after a
// valid reference counts as a not-ready attempt rather than aborting; only a
// terminal service code stops the loop early.
func (c *Client) PollUntilReady(ctx context.Context, req ReportRequest, ref GenerationReference) ([]byte, error) {
	u := c.endpoint(getStatementPath, url.Values{
		"q": {string(ref)},
		"t": {req.Token},
		"v": {apiVersion},
	})

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		wait := c.pollInterval + time.Duration(attempt)*c.waitIncrement
		c.logger.Info("waiting before statement fetch",
			"wait", wait, "attempt", attempt+1, "max_attempts", c.maxAttempts)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}

		body, err := c.get(ctx, u)
		if err != nil {
			if errors.Is(err, ErrTransientNetwork) {
				c.logger.Warn("statement fetch failed, retrying", "error", err)
				continue
			}
			return nil, err
		}

		payload, notReady, err := classifyStatement(body)
		if err != nil {
			return nil, err
		}
		if notReady {
			c.logger.Info("statement not ready yet")
			continue
		}
		c.logger.Debug("statement downloaded", "bytes", len(payload))
		return payload, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrPollTimeout, c.maxAttempts)
}

// Fetch runs the full request/poll/download cycle for one report.
func (c *Client) Fetch(ctx context.Context, req ReportRequest) ([]byte, error) {
	ref, err := c.RequestGeneration(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.PollUntilReady(ctx, req, ref)
}

// classifyStatement discriminates a GetStatement body into payload,
// not-ready, or terminal error. Anything that is not the service's error
// envelope is the statement itself.
func classifyStatement(body []byte) (payload []byte, notReady bool, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, true, nil
	}

	var resp flexStatementResponse
	if xml.Unmarshal(trimmed, &resp) != nil {
		return body, false, nil
	}
	switch resp.ErrorCode {
	case codeInProgress, codeTooManyCalls:
		return nil, true, nil
	}
	return nil, false, newStatementError(resp.ErrorCode, resp.ErrorMessage)
}

// get issues one GET with a small retry budget for transient failures
// (connection errors, timeouts, 5xx, 404). Non-retryable HTTP statuses map to
// ErrRequestRejected.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for try := 0; try < defaultCallRetries; try++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusNotFound:
			lastErr = fmt.Errorf("service returned %s", resp.Status)
			continue
		default:
			return nil, fmt.Errorf("%w: service returned %s", ErrRequestRejected, resp.Status)
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrTransientNetwork, lastErr)
}

func (c *Client) endpoint(path string, query url.Values) string {
	return c.baseURL + path + "?" + query.Encode()
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

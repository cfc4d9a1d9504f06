// Package queue talks to the remote jobs API: it hands out the next title and
// accepts the finished (or failed) article.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

const (
	defaultFetchTimeout  = 30 * time.Second
	defaultSubmitTimeout = 60 * time.Second
	maxErrorBody         = 1024
	userAgent            = "article-worker/1.0"
)

// Config holds jobs API settings
type Config struct {
	Endpoint      string
	FetchTimeout  time.Duration
	SubmitTimeout time.Duration
}

// Client is an HTTP client for the jobs API
type Client struct {
	endpoint      string
	fetchTimeout  time.Duration
	submitTimeout time.Duration
	httpClient    *http.Client
	logger        *slog.Logger
}

type nextJobResponse struct {
	OK  bool        `json:"ok"`
	Job *domain.Job `json:"job"`
}

// NewClient creates a jobs API client. A nil httpClient gets a default one.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid jobs api endpoint %q", cfg.Endpoint)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}

	return &Client{
		endpoint:      cfg.Endpoint,
		fetchTimeout:  fetchTimeout,
		submitTimeout: submitTimeout,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// FetchNext asks for the next pending job.
// It returns (nil, nil) when the queue reports no work, and an error when the
// request itself failed (transport, status, or malformed body).
func (c *Client) FetchNext(ctx context.Context) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	nextURL, err := buildNextURL(c.endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nextURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request next job: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("request next job: %w", err)
	}

	var body nextJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode next job: %w", err)
	}

	if !body.OK {
		c.logger.Info("Jobs API reported no pending job")
		return nil, nil
	}

	if body.Job == nil || body.Job.ID.IsZero() {
		c.logger.Warn("Jobs API response has no job")
		return nil, nil
	}

	return body.Job, nil
}

// Submit posts the job result. The acknowledgement is only logged.
func (c *Client) Submit(ctx context.Context, submission domain.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	payload, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit result: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("submit result: %w", err)
	}

	var ack any
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil && !errors.Is(err, io.EOF) {
		c.logger.Warn("Jobs API acknowledgement is not JSON",
			slog.String("job_id", submission.JobID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	c.logger.Info("Result submitted",
		slog.String("job_id", submission.JobID.String()),
		slog.String("status", submission.Status),
		slog.Any("ack", ack),
	)

	return nil
}

func buildNextURL(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid jobs api endpoint %s: %w", endpoint, err)
	}

	query := parsed.Query()
	query.Set("action", "next")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
}

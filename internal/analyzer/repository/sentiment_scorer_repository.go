package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/pkg/logger"
)

// Backoff is a server-requested pause before the next attempt.
type Backoff struct {
	Delay  time.Duration
	Reason string
}

// ScorerError is returned for every failed call to the sentiment scorer.
type ScorerError struct {
	// StatusCode is 0 for transport failures.
	StatusCode int
	Message    string
	Backoff    *Backoff
	Err        error
}

func (e *ScorerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("sentiment scorer request failed: %s", e.Message)
	}
	return fmt.Sprintf("sentiment scorer returned %d: %s", e.StatusCode, e.Message)
}

func (e *ScorerError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request may succeed.
func (e *ScorerError) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	case e.StatusCode >= 400:
		return false
	}
	// 2xx with success=false or an unreadable body.
	return true
}

// BackoffFrom extracts the server-requested backoff from err, if any.
func BackoffFrom(err error) (*Backoff, bool) {
	var scorerErr *ScorerError
	if errors.As(err, &scorerErr) && scorerErr.Backoff != nil {
		return scorerErr.Backoff, true
	}
	return nil, false
}

// SentimentScorerRepository talks to the remote sentiment scoring service.
type SentimentScorerRepository interface {
	Health(ctx context.Context) (*dto.ScorerHealth, error)
	Analyze(ctx context.Context, req dto.ScorerAnalyzeRequest) (*dto.ScorerAnalyzeResponse, error)
}

// NewSentimentScorerRepository creates a client for the scorer at baseURL.
// Every request is bounded by timeout.
func NewSentimentScorerRepository(baseURL string, timeout time.Duration, log *logger.Logger) SentimentScorerRepository {
	return &sentimentScorerRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type sentimentScorerRepository struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func (r *sentimentScorerRepository) Health(ctx context.Context) (*dto.ScorerHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}

	var health dto.ScorerHealth
	if err := r.do(req, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *sentimentScorerRepository) Analyze(ctx context.Context, payload dto.ScorerAnalyzeRequest) (*dto.ScorerAnalyzeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	r.logger.Debug("Request sentiment scorer", logger.IntField("entities", len(payload.Entities)))

	var resp dto.ScorerAnalyzeResponse
	if err := r.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "scorer reported failure"
		}
		return nil, &ScorerError{StatusCode: http.StatusOK, Message: msg}
	}
	return &resp, nil
}

func (r *sentimentScorerRepository) do(req *http.Request, out interface{}) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return &ScorerError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		scorerErr := &ScorerError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}

		var errBody scorerErrorBody
		hasBody := json.Unmarshal(body, &errBody) == nil
		if hasBody && errBody.Error != "" {
			scorerErr.Message = errBody.Error
		}

		delay, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		if !ok && hasBody && errBody.RetryAfter != nil && *errBody.RetryAfter >= 0 {
			delay, ok = time.Duration(*errBody.RetryAfter*float64(time.Second)), true
		}
		if ok {
			scorerErr.Backoff = &Backoff{Delay: delay, Reason: http.StatusText(resp.StatusCode)}
		}
		return scorerErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ScorerError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}

// scorerErrorBody is the JSON error body of the scorer. retry_after is in
// seconds and is used when the Retry-After header is absent.
type scorerErrorBody struct {
	Error      string   `json:"error"`
	RetryAfter *float64 `json:"retry_after"`
}

// parseRetryAfter accepts both forms of the header: delta-seconds and an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		delay := at.Sub(now)
		if delay < 0 {
			delay = 0
		}
		return delay, true
	}
	return 0, false
}

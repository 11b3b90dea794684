// Package opentdb provides question providers backed by the Open Trivia
// Database API or by a file in the same JSON format.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/quiz"
)

const DefaultBaseURL = "https://opentdb.com"

// Options selects the batch requested on every fetch. Zero values for
// Category, Difficulty and Type mean "any".
type Options struct {
	BaseURL    string
	Amount     int
	Category   int
	Difficulty string
	Type       string

	// RequestInterval spaces consecutive requests; the public API allows one
	// request every five seconds per IP. Zero disables throttling.
	RequestInterval time.Duration
	HTTPClient      *http.Client
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
}

var _ quiz.Provider = (*Client)(nil)

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	amount := opts.Amount
	if amount <= 0 {
		amount = 10
	}

	q := url.Values{}
	q.Set("amount", strconv.Itoa(amount))
	if opts.Category > 0 {
		q.Set("category", strconv.Itoa(opts.Category))
	}
	if opts.Difficulty != "" {
		q.Set("difficulty", opts.Difficulty)
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}

	limit := rate.Inf
	if opts.RequestInterval > 0 {
		limit = rate.Every(opts.RequestInterval)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   baseURL + "/api.php?" + q.Encode(),
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Endpoint returns the full request URL used for every fetch.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchQuestions requests one batch. Failures wrap quiz.ErrProviderUnavailable;
// an API "no results" answer wraps quiz.ErrEmptyQuestionSet.
func (c *Client) FetchQuestions(ctx context.Context) ([]quiz.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("opentdb")

	if err := c.limiter.Wait(ctx); err != nil {
		log.Warn("throttled request abandoned: %v", err)
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", quiz.ErrProviderUnavailable, err)
	}

	log.Debug("fetching questions from: %s", c.endpoint)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, fmt.Errorf("%w: %w", quiz.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch questions: %v", err)
		return nil, fmt.Errorf("%w: %w", quiz.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug("questions response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Warn("questions request rate limited")
		return nil, &APIError{Code: CodeRateLimit}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("questions request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: questions status %d: %s", quiz.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode questions response: %v", err)
		return nil, fmt.Errorf("%w: decode response: %w", quiz.ErrProviderUnavailable, err)
	}

	questions, err := out.questions()
	if err != nil {
		log.Warn("questions response rejected: %v", err)
		return nil, err
	}

	log.Info("fetched %d questions", len(questions))
	return questions, nil
}

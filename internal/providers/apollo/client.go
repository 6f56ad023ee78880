// Package apollo implements the Apollo.io people-match client used for
// the synchronous phase of enrichment. When phone delivery is requested
// the outbound request carries a webhook URL; Apollo then delivers phone
// numbers minutes later to that URL.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"enrich-service/internal/circuitbreaker"
	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/httpclient"
	"enrich-service/internal/common/logging"
)

const (
	// DefaultBaseURL is the production Apollo API endpoint
	DefaultBaseURL = "https://api.apollo.io"

	matchPath = "/v1/people/match"
)

// Config holds Apollo client configuration
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a client configuration with the production
// endpoint and a conservative request rate.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:            apiKey,
		BaseURL:           DefaultBaseURL,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// MatchRequest describes one people-match call.
type MatchRequest struct {
	// LinkedinURL identifies the subject to enrich.
	LinkedinURL string
	// RevealPhoneNumber asks Apollo to deliver phone numbers asynchronously.
	RevealPhoneNumber bool
	// WebhookURL is where Apollo should deliver the phone payload.
	// Required when RevealPhoneNumber is set.
	WebhookURL string
}

// Person is the subject record in Apollo's synchronous response. ID is
// Apollo's own record identifier; the webhook payload echoes it, which
// is what lets the two phases be correlated.
type Person struct {
	ID           string       `json:"id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Name         string       `json:"name"`
	Title        string       `json:"title"`
	Email        string       `json:"email"`
	LinkedinURL  string       `json:"linkedin_url"`
	Organization Organization `json:"organization"`
}

// Organization is the employer portion of a person record.
type Organization struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
}

type matchRequestBody struct {
	LinkedinURL       string `json:"linkedin_url"`
	RevealPhoneNumber bool   `json:"reveal_phone_number,omitempty"`
	WebhookURL        string `json:"webhook_url,omitempty"`
}

type matchResponseBody struct {
	Person *Person `json:"person"`
}

// Client talks to the Apollo API. Requests are throttled client-side and
// routed through a circuit breaker so a failing provider is not hammered.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.GoBreakerAdapter
}

// NewClient creates an Apollo client from config.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	return &Client{
		config:     config,
		httpClient: httpclient.New(httpclient.WithTimeout(config.Timeout)),
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		breaker:    circuitbreaker.New("apollo", circuitbreaker.DefaultConfig()),
	}
}

// MatchPerson performs the synchronous enrichment phase. Apollo answers
// immediately with whatever it can (identity, title, employer, work
// email, and its record id); phone numbers, when requested, arrive later
// via the webhook URL.
//
// Error kinds: 401/403 map to an auth error, 429 to a rate-limit error,
// 404 and an empty match to not-found, anything transport-level to a
// connection error.
func (c *Client) MatchPerson(ctx context.Context, req MatchRequest) (*Person, error) {
	if req.LinkedinURL == "" {
		return nil, apperrors.ValidationError("linkedin_url is required")
	}
	if req.RevealPhoneNumber && req.WebhookURL == "" {
		return nil, apperrors.ValidationError("webhook_url is required when revealing phone numbers")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.ConnectionError("apollo rate limiter wait aborted", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doMatch(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Person), nil
}

func (c *Client) doMatch(ctx context.Context, req MatchRequest) (*Person, error) {
	body, err := json.Marshal(matchRequestBody{
		LinkedinURL:       req.LinkedinURL,
		RevealPhoneNumber: req.RevealPhoneNumber,
		WebhookURL:        req.WebhookURL,
	})
	if err != nil {
		return nil, apperrors.InternalError("failed to encode apollo request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+matchPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.InternalError("failed to build apollo request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.ConnectionError("apollo request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ConnectionError("failed to read apollo response", err)
	}

	logging.Debug("Apollo people match completed",
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.FromHTTPStatus(resp.StatusCode, "apollo").
			WithContext("linkedin_url", req.LinkedinURL)
	}

	var parsed matchResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.ConnectionError(
			fmt.Sprintf("apollo returned unparseable body (status %d)", resp.StatusCode), err)
	}

	if parsed.Person == nil || (parsed.Person.ID == "" && parsed.Person.Name == "") {
		return nil, apperrors.NotFoundError("apollo person")
	}

	return parsed.Person, nil
}

// Package millionverifier implements the MillionVerifier client used to
// grade email deliverability before rows are written out.
package millionverifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/httpclient"
	"enrich-service/internal/common/utils"
)

// DefaultBaseURL is the production MillionVerifier API endpoint
const DefaultBaseURL = "https://api.millionverifier.com"

// Client talks to the MillionVerifier API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a MillionVerifier client. baseURL falls back to the
// production endpoint when empty.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpclient.New(httpclient.WithTimeout(15 * time.Second)),
	}
}

type verifyResponse struct {
	Result  string `json:"result"`
	Quality string `json:"quality"`
	Error   string `json:"error"`
}

// Verify checks a single email address and returns the verifier's result
// string (ok, catch_all, unknown, disposable, invalid). Transient
// failures are retried with backoff; auth failures are not.
func (c *Client) Verify(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", apperrors.ValidationError("email is required")
	}

	endpoint := c.baseURL + "/api/v3/?" + url.Values{
		"api":   {c.apiKey},
		"email": {email},
	}.Encode()

	var result string
	retryCfg := utils.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: func(err error) bool {
			return apperrors.IsType(err, apperrors.ErrTypeConnection) ||
				apperrors.IsType(err, apperrors.ErrTypeRateLimit)
		},
	}

	err := utils.RetryWithBackoff(ctx, retryCfg, func() error {
		res, verr := c.doVerify(ctx, endpoint)
		if verr != nil {
			return verr
		}
		result = res
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (c *Client) doVerify(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.InternalError("failed to build millionverifier request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.ConnectionError("millionverifier request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.ConnectionError("failed to read millionverifier response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.FromHTTPStatus(resp.StatusCode, "millionverifier")
	}

	var parsed verifyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.ConnectionError("millionverifier returned unparseable body", err)
	}

	if parsed.Error != "" {
		return "", apperrors.AuthError("millionverifier: " + parsed.Error)
	}

	return parsed.Result, nil
}

// Package prospeo implements the Prospeo email-finder client, used as a
// fallback when the primary provider returns a person without an email.
package prospeo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/httpclient"
)

const (
	// DefaultBaseURL is the production Prospeo API endpoint
	DefaultBaseURL = "https://api.prospeo.io"

	emailFinderPath = "/email-finder"
)

// Client talks to the Prospeo API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Prospeo client. baseURL falls back to the
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

type finderRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
}

type finderResponse struct {
	Error    bool `json:"error"`
	Response struct {
		Email struct {
			Email string `json:"email"`
		} `json:"email"`
	} `json:"response"`
}

// FindEmail looks up a work email by name and company. Returns a
// not-found error when Prospeo has nothing for the subject.
func (c *Client) FindEmail(ctx context.Context, firstName, lastName, company string) (string, error) {
	if firstName == "" && lastName == "" {
		return "", apperrors.ValidationError("a first or last name is required")
	}

	body, err := json.Marshal(finderRequest{
		FirstName: firstName,
		LastName:  lastName,
		Company:   company,
	})
	if err != nil {
		return "", apperrors.InternalError("failed to encode prospeo request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+emailFinderPath, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.InternalError("failed to build prospeo request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.ConnectionError("prospeo request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.ConnectionError("failed to read prospeo response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.FromHTTPStatus(resp.StatusCode, "prospeo")
	}

	var parsed finderResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.ConnectionError("prospeo returned unparseable body", err)
	}

	if parsed.Error || parsed.Response.Email.Email == "" {
		return "", apperrors.NotFoundError("prospeo email")
	}

	return parsed.Response.Email.Email, nil
}

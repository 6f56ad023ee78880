// Package sheets appends enrichment results to a Google Sheet, the
// destination the browser extension points its exports at.
package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/utils"
	"enrich-service/internal/enrich"
)

// Writer appends rows to Google Sheets using a service account.
type Writer struct {
	service *sheets.Service
}

// NewWriter creates a Writer authenticated with the service-account
// credentials file.
func NewWriter(ctx context.Context, credentialsFile string) (*Writer, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Writer{service: service}, nil
}

// AppendResult appends one enrichment result as a row to the given
// spreadsheet range. Transient API failures are retried with backoff.
func (w *Writer) AppendResult(ctx context.Context, spreadsheetID, writeRange string, result *enrich.Result) error {
	if spreadsheetID == "" || writeRange == "" {
		return apperrors.ValidationError("spreadsheet id and range are required")
	}

	values := &sheets.ValueRange{
		Values: [][]interface{}{{
			result.FullName,
			result.Title,
			result.Company,
			result.Email,
			result.EmailStatus,
			result.PersonalEmail,
			result.PhoneNumber,
			result.LinkedinURL,
			result.EnrichedAt.Format(time.RFC3339),
		}},
	}

	retryCfg := utils.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}

	return utils.RetryWithBackoff(ctx, retryCfg, func() error {
		_, err := w.service.Spreadsheets.Values.
			Append(spreadsheetID, writeRange, values).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"enrich-service/internal/common/logging"
	"enrich-service/internal/correlation"
	"enrich-service/internal/enrich"
)

// maxCallbackBody bounds how much of a provider callback is read.
const maxCallbackBody = 1 << 20

// The callback body shape is provider-controlled and has varied across
// provider versions, so every field is optional and parsing never
// assumes more than it needs: a correlatable id and, ideally, contact
// fields.
type callbackPhone struct {
	RawNumber       string `json:"raw_number"`
	SanitizedNumber string `json:"sanitized_number"`
}

type callbackPerson struct {
	ID             string          `json:"id"`
	LinkedinURL    string          `json:"linkedin_url"`
	PhoneNumbers   []callbackPhone `json:"phone_numbers"`
	PersonalEmails []string        `json:"personal_emails"`
}

type callbackBody struct {
	RequestID      string           `json:"request_id"`
	ID             string           `json:"id"`
	PhoneNumbers   []callbackPhone  `json:"phone_numbers"`
	PersonalEmails []string         `json:"personal_emails"`
	Person         *callbackPerson  `json:"person"`
	People         []callbackPerson `json:"people"`
}

// HandleApolloCallback accepts the provider's asynchronous phone
// delivery and deposits it in the correlation store, waking any
// enrichment call currently waiting on the matching key. The response is
// always 200: the provider defines no retry-on-failure contract, so a
// non-2xx gains nothing and risks unwanted redeliveries. Callbacks that
// cannot be correlated are logged and dropped.
func (h *Handlers) HandleApolloCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		logging.Warn("Failed to read callback body", logging.Err(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	keys, payload := parseCallback(body)
	if len(keys) == 0 {
		logging.Warn("Callback could not be correlated, dropping",
			logging.Int("body_bytes", len(body)))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	for _, key := range keys {
		h.store.Put(key, payload)
	}

	logging.Info("Callback payload stored",
		logging.String("correlation_key", keys[0]),
		logging.Int("phone_numbers", len(payload.PhoneNumbers)),
		logging.Int("personal_emails", len(payload.PersonalEmails)),
	)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseCallback extracts correlation keys and a payload from a raw
// callback body. The primary key is the provider's record id
// (request_id, top-level id, or the person's id). When the body carries
// the subject's profile URL a secondary key is derived from it, matching
// the key a waiter falls back to when the synchronous response had no
// record id. Returns no keys when nothing correlatable was found.
func parseCallback(body []byte) ([]string, *correlation.PendingPayload) {
	var parsed callbackBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil
	}

	person := parsed.Person
	if person == nil && len(parsed.People) > 0 {
		person = &parsed.People[0]
	}

	var keys []string
	appendKey := func(key string) {
		if key == "" {
			return
		}
		for _, existing := range keys {
			if existing == key {
				return
			}
		}
		keys = append(keys, key)
	}

	appendKey(parsed.RequestID)
	appendKey(parsed.ID)
	if person != nil {
		appendKey(person.ID)
		if person.LinkedinURL != "" {
			appendKey(enrich.NormalizeSubject(person.LinkedinURL))
		}
	}

	if len(keys) == 0 {
		return nil, nil
	}

	payload := &correlation.PendingPayload{
		ReceivedAt: time.Now(),
		RawBody:    body,
	}

	phones := parsed.PhoneNumbers
	emails := parsed.PersonalEmails
	if person != nil {
		phones = append(phones, person.PhoneNumbers...)
		emails = append(emails, person.PersonalEmails...)
	}

	for _, phone := range phones {
		number := phone.SanitizedNumber
		if number == "" {
			number = phone.RawNumber
		}
		if number != "" {
			payload.PhoneNumbers = append(payload.PhoneNumbers, number)
		}
	}
	for _, email := range emails {
		if email != "" {
			payload.PersonalEmails = append(payload.PersonalEmails, email)
		}
	}

	return keys, payload
}

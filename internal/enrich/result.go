package enrich

import "time"

// Result is a completed enrichment. The identity and professional fields
// come from the provider's synchronous response; PhoneNumber and
// PersonalEmail arrive asynchronously and stay empty when the bounded
// wait elapsed without a callback. A result with empty phone fields is a
// legitimate outcome, not an error.
type Result struct {
	AttemptID   string `json:"attempt_id"`
	Subject     string `json:"subject"`
	ProviderID  string `json:"provider_id,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	LinkedinURL string `json:"linkedin_url,omitempty"`

	Email       string `json:"email,omitempty"`
	EmailStatus string `json:"email_status,omitempty"`

	PhoneNumber   string `json:"phone_number,omitempty"`
	PersonalEmail string `json:"personal_email,omitempty"`

	PhoneRequested bool `json:"phone_requested"`
	PhoneDelivered bool `json:"phone_delivered"`

	EnrichedAt time.Time `json:"enriched_at"`
}

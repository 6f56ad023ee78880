// Package enrich orchestrates profile enrichment: a synchronous provider
// call, optional fallback email lookup and verification, and a bounded
// wait for the provider's asynchronous phone callback.
package enrich

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/logging"
	"enrich-service/internal/correlation"
	"enrich-service/internal/providers/apollo"
)

// PersonMatcher is the synchronous enrichment provider.
type PersonMatcher interface {
	MatchPerson(ctx context.Context, req apollo.MatchRequest) (*apollo.Person, error)
}

// EmailFinder finds a work email when the primary provider has none.
type EmailFinder interface {
	FindEmail(ctx context.Context, firstName, lastName, company string) (string, error)
}

// EmailVerifier grades email deliverability.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) (string, error)
}

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	// CallbackURL is the externally reachable URL handed to the provider
	// for asynchronous phone delivery. Must already be resolved; the
	// coordinator does not compute it.
	CallbackURL string
	// WaitTimeout bounds the wait for the phone callback.
	WaitTimeout time.Duration
	// Cache is the optional result cache. May be nil.
	Cache *ResultCache
	// Finder is the optional fallback email finder. May be nil.
	Finder EmailFinder
	// Verifier is the optional email verifier. May be nil.
	Verifier EmailVerifier
}

// Coordinator runs one enrichment request end to end. Per call it moves
// through: request sent, synchronous result received, then either done
// or waiting for async data, and from waiting to done exactly once (data
// arrived or the wait timed out).
type Coordinator struct {
	matcher     PersonMatcher
	store       *correlation.Store
	cache       *ResultCache
	finder      EmailFinder
	verifier    EmailVerifier
	callbackURL string
	waitTimeout time.Duration
}

// NewCoordinator creates a Coordinator. matcher and store are required;
// everything optional comes through config.
func NewCoordinator(matcher PersonMatcher, store *correlation.Store, config CoordinatorConfig) *Coordinator {
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = 30 * time.Second
	}
	return &Coordinator{
		matcher:     matcher,
		store:       store,
		cache:       config.Cache,
		finder:      config.Finder,
		verifier:    config.Verifier,
		callbackURL: config.CallbackURL,
		waitTimeout: config.WaitTimeout,
	}
}

// Enrich enriches one subject. Provider failures during the synchronous
// phase (transport, bad credentials, throttling, unknown subject) abort
// the call. Once the synchronous phase has succeeded nothing can fail
// the call: if wantPhone is set and the provider's callback does not
// arrive within the wait window, the result simply comes back without
// phone fields.
func (c *Coordinator) Enrich(ctx context.Context, subject string, wantPhone bool) (*Result, error) {
	attemptID := uuid.NewString()
	normalized := NormalizeSubject(subject)
	log := logging.GetGlobalLogger().WithFields(
		logging.String("attempt_id", attemptID),
		logging.String("subject", normalized),
	)

	if cached, ok := c.cache.Get(ctx, normalized); ok {
		if !wantPhone || cached.PhoneNumber != "" {
			log.Info("Enrichment served from cache")
			hit := *cached
			hit.AttemptID = attemptID
			return &hit, nil
		}
	}

	req := apollo.MatchRequest{LinkedinURL: subject}
	if wantPhone {
		req.RevealPhoneNumber = true
		req.WebhookURL = c.callbackURL
	}

	person, err := c.matcher.MatchPerson(ctx, req)
	if err != nil {
		log.Error("Synchronous enrichment failed", err,
			logging.String("error_type", string(apperrors.GetType(err))))
		return nil, err
	}

	result := &Result{
		AttemptID:      attemptID,
		Subject:        normalized,
		ProviderID:     person.ID,
		FirstName:      person.FirstName,
		LastName:       person.LastName,
		FullName:       person.Name,
		Title:          person.Title,
		Company:        person.Organization.Name,
		LinkedinURL:    person.LinkedinURL,
		Email:          person.Email,
		PhoneRequested: wantPhone,
		EnrichedAt:     time.Now(),
	}

	c.fillEmail(ctx, result, log)

	if wantPhone {
		key := person.ID
		if key == "" {
			// Matches the secondary key the callback receiver derives
			// from the callback's own profile URL.
			key = normalized
		}
		c.awaitPhone(ctx, key, result, log)
	}

	c.cache.Set(ctx, normalized, result)
	return result, nil
}

// awaitPhone blocks until the provider's callback for key arrives or the
// wait window closes, merging the first phone number and first personal
// email into the result on delivery.
func (c *Coordinator) awaitPhone(ctx context.Context, key string, result *Result, log logging.Logger) {
	start := time.Now()
	payload, ok := c.store.WaitFor(ctx, key, c.waitTimeout)
	if !ok {
		log.Info("No phone callback within wait window",
			logging.String("correlation_key", key),
			logging.Duration("waited", time.Since(start)),
		)
		return
	}

	if len(payload.PhoneNumbers) > 0 {
		result.PhoneNumber = payload.PhoneNumbers[0]
		result.PhoneDelivered = true
	}
	if len(payload.PersonalEmails) > 0 {
		result.PersonalEmail = payload.PersonalEmails[0]
	}

	log.Info("Phone callback delivered",
		logging.String("correlation_key", key),
		logging.Duration("waited", time.Since(start)),
		logging.Bool("has_phone", result.PhoneDelivered),
	)
}

// fillEmail runs the fallback finder when the provider gave no email,
// then grades whatever email we ended up with. Both steps are
// best-effort; their failures never fail the enrichment.
func (c *Coordinator) fillEmail(ctx context.Context, result *Result, log logging.Logger) {
	if result.Email == "" && c.finder != nil {
		email, err := c.finder.FindEmail(ctx, result.FirstName, result.LastName, result.Company)
		if err != nil {
			log.Debug("Fallback email lookup failed", logging.Err(err))
		} else {
			result.Email = email
		}
	}

	if result.Email != "" && c.verifier != nil {
		status, err := c.verifier.Verify(ctx, result.Email)
		if err != nil {
			log.Debug("Email verification failed", logging.Err(err))
		} else {
			result.EmailStatus = status
		}
	}
}

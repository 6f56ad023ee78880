// Package correlation holds callback payloads for in-flight enrichment
// requests and lets waiters block, with a bound, until the payload for
// their key arrives.
//
// The provider answers enrichment requests in two phases: an immediate
// HTTP response and, when phone delivery was requested, a webhook that
// arrives minutes later. The store is the meeting point between the
// goroutine that issued the request and the handler that receives the
// webhook, matched by the provider's record id.
package correlation

import (
	"context"
	"sync"
	"time"
)

// PendingPayload is the data parsed out of a provider callback body.
// Immutable after creation; owned by the Store once deposited.
type PendingPayload struct {
	// PhoneNumbers holds the delivered phone numbers, primary first.
	PhoneNumbers []string
	// PersonalEmails holds the delivered personal emails, primary first.
	PersonalEmails []string
	// ReceivedAt is when the callback arrived.
	ReceivedAt time.Time
	// RawBody is the callback body as received, kept for diagnosis.
	RawBody []byte
}

// Store is a thread-safe holding area mapping correlation keys to
// callback payloads, with per-key waiter registration so a Put wakes
// exactly the waiters interested in that key.
//
// A single mutex guards both maps. Contention is low: each key is
// typically touched twice, once to register a wait and once to deliver.
type Store struct {
	mu       sync.Mutex
	payloads map[string]*PendingPayload
	waiters  map[string][]chan *PendingPayload
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		payloads: make(map[string]*PendingPayload),
		waiters:  make(map[string][]chan *PendingPayload),
	}
}

// Put inserts or overwrites the payload for key and wakes every waiter
// currently registered for that key. If no one is waiting the payload is
// simply stored for later retrieval; that is not an error.
func (s *Store) Put(key string, payload *PendingPayload) {
	if payload.ReceivedAt.IsZero() {
		payload.ReceivedAt = time.Now()
	}

	s.mu.Lock()
	s.payloads[key] = payload
	waiters := s.waiters[key]
	delete(s.waiters, key)
	s.mu.Unlock()

	// Waiter channels are buffered, so delivery never blocks even when a
	// waiter timed out between the map read above and this send.
	for _, ch := range waiters {
		ch <- payload
	}
}

// Get returns the stored payload for key, if any. Non-blocking.
func (s *Store) Get(key string) (*PendingPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.payloads[key]
	return payload, ok
}

// WaitFor returns the payload for key, blocking until one is deposited
// via Put or until timeout elapses, whichever happens first. If a payload
// is already present it is returned immediately, which closes the race
// where the callback lands before the waiter registers.
//
// Every call resolves exactly once: with (payload, true) when data
// arrived in time, or (nil, false) on timeout or context cancellation.
// Multiple concurrent waiters on one key are allowed and all receive the
// same payload once it arrives. A consequence is that two in-flight
// enrichments of the same subject share one key and both see whichever
// payload the provider sends; the provider contract offers no way to
// tell them apart, so no dedup is attempted here.
func (s *Store) WaitFor(ctx context.Context, key string, timeout time.Duration) (*PendingPayload, bool) {
	s.mu.Lock()
	if payload, ok := s.payloads[key]; ok {
		s.mu.Unlock()
		return payload, true
	}

	ch := make(chan *PendingPayload, 1)
	s.waiters[key] = append(s.waiters[key], ch)
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case payload := <-ch:
		return payload, true
	case <-timer.C:
	case <-ctx.Done():
	}

	s.removeWaiter(key, ch)

	// A Put may have claimed this waiter before removeWaiter ran. The
	// payload is sitting in the buffered channel; honor it rather than
	// reporting a timeout for data that arrived in time.
	select {
	case payload := <-ch:
		return payload, true
	default:
		return nil, false
	}
}

// Sweep removes stored payloads older than maxAge and returns how many
// were removed. Waiters are registered separately from payload entries,
// so an active wait is never disturbed by a sweep.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, payload := range s.payloads {
		if payload.ReceivedAt.Before(cutoff) {
			delete(s.payloads, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of stored payloads.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

// removeWaiter deregisters a waiter channel for key. Safe to call after
// a Put already removed the whole waiter list.
func (s *Store) removeWaiter(key string, ch chan *PendingPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	waiters := s.waiters[key]
	for i, c := range waiters {
		if c == ch {
			s.waiters[key] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(s.waiters[key]) == 0 {
		delete(s.waiters, key)
	}
}

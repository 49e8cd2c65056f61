package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/setorid/collector/internal/app/domain/submission"
	"github.com/setorid/collector/internal/app/storage"
)

// Store is the in-memory implementation of the submission store. It is safe
// for concurrent use and is the authoritative copy of the data; the sync
// adapter only mirrors it.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	subs   []submission.Submission
}

var _ storage.SubmissionStore = (*Store)(nil)

// New creates an empty store with the id counter at 1.
func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Add(_ context.Context, name, email, wallet string) (submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The uniqueness check must happen under the same lock as the insert, or
	// two concurrent adds of the same email both pass it.
	key := strings.ToLower(email)
	for _, existing := range s.subs {
		if strings.ToLower(existing.Email) == key {
			return submission.Submission{}, storage.ErrDuplicateEmail
		}
	}

	sub := submission.Submission{
		ID:        s.nextID,
		Name:      name,
		Email:     email,
		Wallet:    wallet,
		Paid:      false,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++

	// Newest first.
	s.subs = append([]submission.Submission{sub}, s.subs...)
	return sub, nil
}

func (s *Store) List(_ context.Context) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]submission.Submission, len(s.subs))
	copy(result, s.subs)
	return result, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (submission.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(email))
	for _, sub := range s.subs {
		if strings.ToLower(sub.Email) == key {
			return sub, true, nil
		}
	}
	return submission.Submission{}, false, nil
}

func (s *Store) TogglePaid(_ context.Context, id int64) (submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subs {
		if s.subs[i].ID == id {
			s.subs[i].Paid = !s.subs[i].Paid
			return s.subs[i], nil
		}
	}
	return submission.Submission{}, storage.ErrNotFound
}

// Delete removes the submission with the given id. Deleting an unknown id is
// a no-op.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subs {
		if s.subs[i].ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Clear empties the list and resets the id counter to 1.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = nil
	s.nextID = 1
	return nil
}

func (s *Store) Snapshot(_ context.Context) (submission.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]submission.Submission, len(s.subs))
	copy(subs, s.subs)
	return submission.State{Submissions: subs, NextID: s.nextID}, nil
}

func (s *Store) Restore(_ context.Context, state submission.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = make([]submission.Submission, len(state.Submissions))
	copy(s.subs, state.Submissions)
	s.nextID = state.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}
	return nil
}

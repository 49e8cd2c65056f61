// Package submissions implements the validation and mutation rules around
// the submission store, plus the best-effort remote mirror.
package submissions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/setorid/collector/internal/app/domain/submission"
	"github.com/setorid/collector/internal/app/metrics"
	"github.com/setorid/collector/internal/app/storage"
	"github.com/setorid/collector/pkg/logger"
)

// User-facing validation messages, kept verbatim from the deployed frontend's
// language.
const (
	msgFieldsRequired = "Semua field harus diisi"
	msgGmailOnly      = "Email harus @gmail.com"
	msgDuplicate      = "Email ini sudah pernah disetor"
)

const gmailSuffix = "@gmail.com"

// defaultSyncTimeout bounds a single remote push so a dead remote cannot pin
// goroutines.
const defaultSyncTimeout = 5 * time.Second

// ValidationError reports a rejected submission. The message is user-facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Syncer mirrors the full store state to a remote blob.
type Syncer interface {
	Fetch(ctx context.Context) (submission.State, error)
	Push(ctx context.Context, state submission.State) error
}

// Service manages submissions and issues a remote push after every mutation.
type Service struct {
	store       storage.SubmissionStore
	sync        Syncer // nil when sync is disabled
	syncTimeout time.Duration
	log         *logger.Logger

	wg sync.WaitGroup
}

// New constructs a submission service. syncer may be nil to disable the
// remote mirror.
func New(store storage.SubmissionStore, syncer Syncer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("submissions")
	}
	return &Service{store: store, sync: syncer, syncTimeout: defaultSyncTimeout, log: log}
}

// SeedFromRemote loads the last mirrored state into the store. Any failure is
// logged and the store starts empty; this is never fatal.
func (s *Service) SeedFromRemote(ctx context.Context) {
	if s.sync == nil {
		return
	}
	state, err := s.sync.Fetch(ctx)
	if err != nil {
		s.log.WithError(err).Warn("remote state unavailable, starting empty")
		return
	}
	if err := s.store.Restore(ctx, state); err != nil {
		s.log.WithError(err).Warn("restore remote state failed, starting empty")
		return
	}
	s.log.WithField("submissions", len(state.Submissions)).
		WithField("next_id", state.NextID).
		Info("state restored from remote")
}

// Add validates and stores a new submission. Checks run in a fixed order and
// the first failure is the one reported.
func (s *Service) Add(ctx context.Context, name, email, wallet string) (submission.Submission, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	wallet = strings.TrimSpace(wallet)

	if name == "" || email == "" || wallet == "" {
		return submission.Submission{}, &ValidationError{Message: msgFieldsRequired}
	}
	if !strings.HasSuffix(strings.ToLower(email), gmailSuffix) {
		return submission.Submission{}, &ValidationError{Message: msgGmailOnly}
	}

	created, err := s.store.Add(ctx, name, email, wallet)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return submission.Submission{}, &ValidationError{Message: msgDuplicate}
	}
	if err != nil {
		return submission.Submission{}, err
	}
	metrics.ObserveSubmissionCreated()
	s.log.WithField("id", created.ID).WithField("email", created.Email).Info("submission recorded")
	s.scheduleSync()
	return created, nil
}

// List returns all submissions, newest first.
func (s *Service) List(ctx context.Context) ([]submission.Submission, error) {
	return s.store.List(ctx)
}

// Stats recomputes the aggregates from the current list.
func (s *Service) Stats(ctx context.Context) (submission.Stats, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return submission.Stats{}, err
	}
	return submission.ComputeStats(subs), nil
}

// TogglePaid flips the paid flag. Returns storage.ErrNotFound for unknown
// ids.
func (s *Service) TogglePaid(ctx context.Context, id int64) (submission.Submission, error) {
	updated, err := s.store.TogglePaid(ctx, id)
	if err != nil {
		return submission.Submission{}, err
	}
	s.log.WithField("id", id).WithField("paid", updated.Paid).Info("payment status toggled")
	s.scheduleSync()
	return updated, nil
}

// Delete removes a submission. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("id", id).Info("submission deleted")
	s.scheduleSync()
	return nil
}

// Clear empties the store and resets the id counter.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("all submissions cleared")
	s.scheduleSync()
	return nil
}

// scheduleSync pushes the current snapshot in the background. The outcome is
// logged and counted but never surfaced to the caller; the in-memory state
// stays the source of truth either way.
func (s *Service) scheduleSync() {
	if s.sync == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()

		state, err := s.store.Snapshot(ctx)
		if err != nil {
			s.log.WithError(err).Error("snapshot for sync failed")
			return
		}
		if err := s.sync.Push(ctx, state); err != nil {
			metrics.ObserveSyncPush("error")
			s.log.WithError(err).Warn("remote sync push failed")
			return
		}
		metrics.ObserveSyncPush("ok")
	}()
}

// Wait blocks until in-flight sync pushes finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

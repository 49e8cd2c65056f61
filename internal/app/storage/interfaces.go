package storage

import (
	"context"
	"errors"

	"github.com/setorid/collector/internal/app/domain/submission"
)

// ErrNotFound is returned when no submission has the requested id.
var ErrNotFound = errors.New("submission not found")

// ErrDuplicateEmail is returned by Add when a submission with the same email
// already exists, compared case-insensitively.
var ErrDuplicateEmail = errors.New("email already submitted")

// SubmissionStore owns the ordered submission list and the id counter. The
// list is newest-first: Add prepends.
type SubmissionStore interface {
	// Add rejects duplicates with ErrDuplicateEmail; the check and the insert
	// happen atomically.
	Add(ctx context.Context, name, email, wallet string) (submission.Submission, error)
	List(ctx context.Context) ([]submission.Submission, error)
	FindByEmail(ctx context.Context, email string) (submission.Submission, bool, error)
	TogglePaid(ctx context.Context, id int64) (submission.Submission, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error

	// Snapshot and Restore exchange the full store state with the sync
	// adapter.
	Snapshot(ctx context.Context) (submission.State, error)
	Restore(ctx context.Context, state submission.State) error
}

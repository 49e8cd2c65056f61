// Package app wires the collector's stores and services together.
package app

import (
	"context"

	"github.com/setorid/collector/internal/app/services/submissions"
	"github.com/setorid/collector/internal/app/storage"
	"github.com/setorid/collector/internal/app/storage/memory"
	"github.com/setorid/collector/pkg/logger"
)

// Stores encapsulates persistence dependencies. A nil store defaults to the
// in-memory implementation.
type Stores struct {
	Submissions storage.SubmissionStore
}

// Application ties the services together and manages their lifecycle.
type Application struct {
	log *logger.Logger

	Submissions *submissions.Service
}

// New builds a fully initialised application with the provided stores.
// syncer may be nil to run without the remote mirror.
func New(stores Stores, syncer submissions.Syncer, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if stores.Submissions == nil {
		stores.Submissions = memory.New()
	}

	return &Application{
		log:         log,
		Submissions: submissions.New(stores.Submissions, syncer, log),
	}, nil
}

// Start seeds the store from the remote mirror when sync is configured.
func (a *Application) Start(ctx context.Context) error {
	a.Submissions.SeedFromRemote(ctx)
	return nil
}

// Stop waits for in-flight sync pushes, bounded by ctx.
func (a *Application) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.Submissions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

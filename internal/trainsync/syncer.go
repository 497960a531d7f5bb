// Package trainsync owns the train collection shown in the train list view:
// the initial fetch, the fetch-then-seed-if-empty policy and the
// loading/seeding/error flags.
package trainsync

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/gateway"
)

var (
	ErrSeedInProgress = errors.New("trainsync: seed already in progress")
	ErrClosed         = errors.New("trainsync: syncer closed")
)

// Gateway is the slice of the backend client the syncer needs.
type Gateway interface {
	ListTrains(ctx context.Context) (gateway.TrainList, error)
	SeedTrains(ctx context.Context) error
}

type Options struct {
	Logger   *zap.Logger
	Notifier common.Broadcaster
}

type task struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// Syncer is the state container. Every backend call runs as a task keyed by
// an operation id; a result whose id is no longer current is dropped.
type Syncer struct {
	gw     Gateway
	logger *zap.Logger
	notify common.Broadcaster

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  State
	fetch  *task
	seed   *task
	closed bool
}

// New creates the syncer and issues the initial train list fetch.
func New(ctx context.Context, gw Gateway, opts Options) *Syncer {
	ctx, cancel := context.WithCancel(ctx)
	s := &Syncer{
		gw:     gw,
		logger: common.OrNop(opts.Logger).Named("trainsync"),
		notify: opts.Notifier,
		ctx:    ctx,
		cancel: cancel,
	}
	s.Refresh()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Syncer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	snapshot.Trains = slices.Clone(s.state.Trains)
	return snapshot
}

// Refresh fetches the train list, superseding any fetch still in flight.
func (s *Syncer) Refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.startFetchLocked()
	s.mu.Unlock()
	s.changed()
}

// Seed asks the backend to seed its dataset and refetches on success.
func (s *Syncer) Seed() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.seed != nil {
		s.mu.Unlock()
		return ErrSeedInProgress
	}

	ctx, cancel := context.WithCancel(s.ctx)
	current := &task{id: uuid.New(), cancel: cancel}
	s.seed = current
	s.state = reduce(s.state, seedStarted{})
	s.wg.Add(1)
	s.mu.Unlock()
	s.changed()

	s.logger.Info("seeding train data", zap.Stringer("op", current.id))
	go s.runSeed(ctx, current.id)
	return nil
}

// Close cancels every task in flight and waits for them to return. Late
// results are discarded.
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Syncer) startFetchLocked() {
	if s.fetch != nil {
		s.logger.Debug("superseding train fetch", zap.Stringer("op", s.fetch.id))
		s.fetch.cancel()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	current := &task{id: uuid.New(), cancel: cancel}
	s.fetch = current
	s.state = reduce(s.state, fetchStarted{})

	s.wg.Add(1)
	go s.runFetch(ctx, current.id)
}

func (s *Syncer) runFetch(ctx context.Context, id uuid.UUID) {
	defer s.wg.Done()

	list, err := s.gw.ListTrains(ctx)

	s.mu.Lock()
	if s.closed || s.fetch == nil || s.fetch.id != id {
		s.mu.Unlock()
		s.logger.Debug("dropping stale train fetch", zap.Stringer("op", id))
		return
	}
	s.fetch.cancel()
	s.fetch = nil

	if err != nil {
		message := fetchErrorMessage(err)
		s.logger.Warn("train fetch failed", zap.Stringer("op", id), zap.String("message", message), zap.Error(err))
		s.state = reduce(s.state, fetchFailed{message: message})
	} else {
		s.logger.Debug("train fetch finished", zap.Stringer("op", id), zap.Int("trains", len(list.Data)))
		s.state = reduce(s.state, fetchSucceeded{trains: list.Data})
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Syncer) runSeed(ctx context.Context, id uuid.UUID) {
	defer s.wg.Done()

	err := s.gw.SeedTrains(ctx)

	s.mu.Lock()
	if s.closed || s.seed == nil || s.seed.id != id {
		s.mu.Unlock()
		return
	}
	s.seed.cancel()
	s.seed = nil

	if err != nil {
		message := seedErrorMessage(err)
		s.logger.Warn("seeding failed", zap.Stringer("op", id), zap.String("message", message), zap.Error(err))
		s.state = reduce(s.state, seedFinished{failure: message})
	} else {
		s.startFetchLocked()
		s.state = reduce(s.state, seedFinished{})
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Syncer) changed() {
	if s.notify != nil {
		s.notify.Broadcast()
	}
}

package trainsync

import (
	"errors"

	"tarediiran-industries.com/trainbot/internal/gateway"
)

// Status is the tagged sync state derived from State.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusNeedsSeed
	StatusFailed
	StatusSeeding
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusNeedsSeed:
		return "needs-seed"
	case StatusFailed:
		return "failed"
	case StatusSeeding:
		return "seeding"
	default:
		return "idle"
	}
}

const (
	CodeTableNotFound   = "TABLE_NOT_FOUND"
	MessageNoTrainsData = "No trains data available in the system"
	DefaultFetchFailure = "Failed to fetch trains data"
	SeedFailurePrefix   = "Failed to seed data: "
)

// State is an immutable snapshot of the train collection and its flags.
// Result holds the last settled fetch or seed outcome (Idle, Loaded,
// NeedsSeed or Failed); Loading and Seeding mark operations in flight.
type State struct {
	Trains  []gateway.ListedTrain
	Loading bool
	Seeding bool
	Result  Status
	Err     string
}

// Status reports the in-flight operation if any, else the last outcome.
func (s State) Status() Status {
	switch {
	case s.Seeding:
		return StatusSeeding
	case s.Loading:
		return StatusLoading
	default:
		return s.Result
	}
}

// NeedsSeed reports whether the last fetch found an empty dataset.
func (s State) NeedsSeed() bool {
	return s.Result == StatusNeedsSeed
}

type event interface{}

type (
	fetchStarted   struct{}
	fetchSucceeded struct{ trains []gateway.ListedTrain }
	fetchFailed    struct{ message string }
	seedStarted    struct{}
	seedFinished   struct{ failure string }
)

func reduce(s State, ev event) State {
	switch ev := ev.(type) {
	case fetchStarted:
		s.Loading = true

	case fetchSucceeded:
		s.Loading = false
		if len(ev.trains) == 0 {
			// Trains stay as they were.
			s.Result = StatusNeedsSeed
			s.Err = ""
			break
		}
		s.Trains = ev.trains
		s.Result = StatusLoaded
		s.Err = ""

	case fetchFailed:
		s.Loading = false
		s.Result = StatusFailed
		s.Err = ev.message

	case seedStarted:
		s.Seeding = true

	case seedFinished:
		s.Seeding = false
		if ev.failure != "" {
			s.Result = StatusFailed
			s.Err = SeedFailurePrefix + ev.failure
		}
	}
	return s
}

func fetchErrorMessage(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == CodeTableNotFound {
			return MessageNoTrainsData
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return DefaultFetchFailure
}

func seedErrorMessage(err error) string {
	var seedErr *gateway.SeedError
	if errors.As(err, &seedErr) && seedErr.Detail != "" {
		return seedErr.Detail
	}
	return gateway.DefaultSeedFailure
}

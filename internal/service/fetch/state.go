package fetch

import "github.com/kapu/randomuser-swipe-go/internal/domain"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the controller's published value. Profile is set only when Loaded;
// Reason and Err only when Failed.
type State struct {
	Status  Status
	Profile *domain.Profile
	Reason  string
	// Err keeps the typed failure so callers can branch on its kind.
	Err error
}

func Idle() State {
	return State{Status: StatusIdle}
}

func Loading() State {
	return State{Status: StatusLoading}
}

func Loaded(p *domain.Profile) State {
	return State{Status: StatusLoaded, Profile: p}
}

func Failed(err error) State {
	return State{Status: StatusFailed, Reason: describe(err), Err: err}
}

func describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

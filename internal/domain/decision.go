package domain

import "fmt"

// Decision is the single outcome of one displayed card.
type Decision int

const (
	DecisionAccept Decision = iota + 1
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionReject:
		return "reject"
	default:
		return "none"
	}
}

// ParseDecision accepts the wire names used by remote triggers.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "accept", "like":
		return DecisionAccept, nil
	case "reject", "dislike":
		return DecisionReject, nil
	default:
		return 0, fmt.Errorf("unknown decision %q", s)
	}
}

package remote

import (
	"strings"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

type State string

const (
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateDisconnected State = "DISCONNECTED"
	StateReconnecting State = "RECONNECTING"
	StateFailed       State = "FAILED" // reconnect attempts exhausted
)

func (s State) String() string {
	return string(s)
}

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionRetry  Action = "retry"
)

// Command is one programmatic trigger, e.g. {"action":"accept"}.
type Command struct {
	Action Action `json:"action"`
}

// Decision reports the card decision a command asks for. Retry carries none.
func (c Command) Decision() (domain.Decision, bool) {
	d, err := domain.ParseDecision(string(c.Action))
	if err != nil {
		return 0, false
	}
	return d, true
}

func (c Command) normalize() (Command, bool) {
	action := Action(strings.ToLower(strings.TrimSpace(string(c.Action))))
	if action == ActionRetry {
		return Command{Action: ActionRetry}, true
	}
	d, err := domain.ParseDecision(string(action))
	if err != nil {
		return Command{}, false
	}
	if d == domain.DecisionAccept {
		return Command{Action: ActionAccept}, true
	}
	return Command{Action: ActionReject}, true
}

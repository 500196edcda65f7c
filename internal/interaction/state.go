package interaction

import "github.com/kapu/randomuser-swipe-go/internal/domain"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseResolving
	PhaseSettlingBack
	// PhaseDone follows the decision. Every input is ignored from here on.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseResolving:
		return "resolving"
	case PhaseSettlingBack:
		return "settling_back"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// State is what a renderer needs: where the card should be and where it is going.
// Offset is the current horizontal displacement; during Resolving and SettlingBack
// it is the animation target.
type State struct {
	Phase     Phase
	Offset    float64
	Direction domain.Decision
}

// Rotation is the card tilt in degrees for the current offset.
func (s State) Rotation() float64 {
	return s.Offset / 20
}

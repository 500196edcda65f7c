package domain

// InputType names one terminal command of the swiper host.
type InputType string

const (
	InputAccept  InputType = "accept"
	InputReject  InputType = "reject"
	InputDrag    InputType = "drag"
	InputRelease InputType = "release"
	InputRetry   InputType = "retry"
	InputHelp    InputType = "help"
	InputQuit    InputType = "quit"
	InputUnknown InputType = "unknown"
)

func (c InputType) String() string {
	return string(c)
}

// IsValid reports whether c is one of the known input types.
func (c InputType) IsValid() bool {
	switch c {
	case InputAccept, InputReject, InputDrag, InputRelease,
		InputRetry, InputHelp, InputQuit, InputUnknown:
		return true
	default:
		return false
	}
}

// IsGesture reports whether the command moves the card by hand.
func (c InputType) IsGesture() bool {
	return c == InputDrag || c == InputRelease
}

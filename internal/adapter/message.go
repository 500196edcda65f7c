package adapter

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/util"
)

var controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// InputAdapter converts terminal lines to swiper commands
type InputAdapter struct{}

// NewInputAdapter creates a terminal line parser.
func NewInputAdapter() *InputAdapter {
	return &InputAdapter{}
}

// ParsedInput is one parsed terminal line. DX and DY are set for gestures.
type ParsedInput struct {
	Type     domain.InputType
	DX       float64
	DY       float64
	RawInput string
}

// ParseLine parses a line such as "a", "d -120" or "u 140 10".
func (ia *InputAdapter) ParseLine(line string) *ParsedInput {
	text := strings.TrimSpace(controlCharsPattern.ReplaceAllString(line, " "))
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return ia.createUnknownInput(text)
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch {
	case ia.isAcceptCommand(command):
		return &ParsedInput{Type: domain.InputAccept, RawInput: text}
	case ia.isRejectCommand(command):
		return &ParsedInput{Type: domain.InputReject, RawInput: text}
	case ia.isRetryCommand(command):
		return &ParsedInput{Type: domain.InputRetry, RawInput: text}
	case ia.isHelpCommand(command):
		return &ParsedInput{Type: domain.InputHelp, RawInput: text}
	case ia.isQuitCommand(command):
		return &ParsedInput{Type: domain.InputQuit, RawInput: text}
	case ia.isDragCommand(command):
		return ia.parseGesture(domain.InputDrag, args, text)
	case ia.isReleaseCommand(command):
		return ia.parseGesture(domain.InputRelease, args, text)
	}

	return ia.createUnknownInput(text)
}

// Command matchers

func (ia *InputAdapter) isAcceptCommand(cmd string) bool {
	return util.Contains([]string{"a", "accept", "like", "y"}, cmd)
}

func (ia *InputAdapter) isRejectCommand(cmd string) bool {
	return util.Contains([]string{"r", "reject", "dislike", "n"}, cmd)
}

func (ia *InputAdapter) isRetryCommand(cmd string) bool {
	return util.Contains([]string{"retry", "reload"}, cmd)
}

func (ia *InputAdapter) isHelpCommand(cmd string) bool {
	return util.Contains([]string{"h", "help", "?"}, cmd)
}

func (ia *InputAdapter) isQuitCommand(cmd string) bool {
	return util.Contains([]string{"q", "quit", "exit"}, cmd)
}

func (ia *InputAdapter) isDragCommand(cmd string) bool {
	return util.Contains([]string{"d", "drag"}, cmd)
}

func (ia *InputAdapter) isReleaseCommand(cmd string) bool {
	return util.Contains([]string{"u", "up", "release"}, cmd)
}

// Argument parsers

func (ia *InputAdapter) parseGesture(kind domain.InputType, args []string, raw string) *ParsedInput {
	if len(args) == 0 {
		return ia.createUnknownInput(raw)
	}

	dx, ok := parseOffset(args[0])
	if !ok {
		return ia.createUnknownInput(raw)
	}

	var dy float64
	if len(args) > 1 {
		if v, ok := parseOffset(args[1]); ok {
			dy = v
		}
	}

	return &ParsedInput{Type: kind, DX: dx, DY: dy, RawInput: raw}
}

func parseOffset(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (ia *InputAdapter) createUnknownInput(text string) *ParsedInput {
	return &ParsedInput{
		Type:     domain.InputUnknown,
		RawInput: text,
	}
}

package command

import (
	"context"

	"github.com/kapu/randomuser-swipe-go/internal/adapter"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

// CommandEvent is one parsed input waiting to be executed.
type CommandEvent struct {
	Type   domain.InputType
	Params map[string]any
}

// EventFromInput converts a parsed terminal line into a command event.
func EventFromInput(in *adapter.ParsedInput) CommandEvent {
	if in == nil {
		return CommandEvent{Type: domain.InputUnknown}
	}

	params := make(map[string]any)
	if in.Type.IsGesture() {
		params["dx"] = in.DX
		params["dy"] = in.DY
	}
	return CommandEvent{Type: in.Type, Params: params}
}

type Dispatcher interface {
	Publish(ctx context.Context, events ...CommandEvent) (int, error)
}

// NormalizeFunc converts an input type plus params into the registry key
// and normalized parameter map used for execution.
type NormalizeFunc func(domain.InputType, map[string]any) (string, map[string]any)

// NormalizeInput folds accept and reject into the decide command.
func NormalizeInput(t domain.InputType, params map[string]any) (string, map[string]any) {
	switch t {
	case domain.InputAccept:
		params["decision"] = domain.DecisionAccept
		return decideCommandName, params
	case domain.InputReject:
		params["decision"] = domain.DecisionReject
		return decideCommandName, params
	default:
		return t.String(), params
	}
}

type sequentialDispatcher struct {
	registry  *Registry
	normalize NormalizeFunc
}

// NewSequentialDispatcher creates a dispatcher that executes command events in
// the order they are received.
func NewSequentialDispatcher(registry *Registry, normalize NormalizeFunc) Dispatcher {
	return &sequentialDispatcher{registry: registry, normalize: normalize}
}

func (d *sequentialDispatcher) Publish(ctx context.Context, events ...CommandEvent) (int, error) {
	if d == nil || d.registry == nil || d.normalize == nil {
		return 0, nil
	}

	executed := 0
	for _, event := range events {
		if event.Type == domain.InputUnknown || !event.Type.IsValid() {
			continue
		}

		normalizedParams := cloneParams(event.Params)
		key, params := d.normalize(event.Type, normalizedParams)
		if err := d.registry.Execute(ctx, key, params); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

func cloneParams(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	clone := make(map[string]any, len(src))
	for k, v := range src {
		clone[k] = v
	}
	return clone
}

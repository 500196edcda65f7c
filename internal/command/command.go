// Package command maps parsed terminal input onto session actions.
package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/adapter"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, params map[string]any) error
}

// SessionControls is the part of session.Session that commands drive. Every
// call must happen on the control goroutine, so commands go through Dispatch.
type SessionControls interface {
	Trigger(decision domain.Decision) bool
	Drag(dx, dy float64) bool
	Release(dx, dy float64)
	Retry() bool
}

type Dependencies struct {
	Session     SessionControls
	Dispatch    func(ctx context.Context, fn func()) error
	Formatter   *adapter.Formatter
	SendMessage func(message string)
	Logger      *zap.Logger
}

// RegisterDefaults registers every swiper command on r.
func RegisterDefaults(r *Registry, deps *Dependencies) {
	r.Register(NewDecideCommand(deps))
	r.Register(NewDragCommand(deps))
	r.Register(NewReleaseCommand(deps))
	r.Register(NewRetryCommand(deps))
	r.Register(NewHelpCommand(deps))
}

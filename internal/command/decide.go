package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

const decideCommandName = "decide"

// DecideCommand is the button path: it triggers accept or reject on the
// current card.
type DecideCommand struct {
	deps *Dependencies
}

// NewDecideCommand creates the accept/reject command.
func NewDecideCommand(deps *Dependencies) *DecideCommand {
	return &DecideCommand{deps: deps}
}

func (c *DecideCommand) Name() string {
	return decideCommandName
}

func (c *DecideCommand) Description() string {
	return "Accepts or rejects the card on screen"
}

func (c *DecideCommand) Execute(ctx context.Context, params map[string]any) error {
	decision, ok := params["decision"].(domain.Decision)
	if !ok {
		return fmt.Errorf("decide: missing decision parameter")
	}

	var applied bool
	if err := c.deps.Dispatch(ctx, func() {
		applied = c.deps.Session.Trigger(decision)
	}); err != nil {
		return fmt.Errorf("decide: %w", err)
	}

	if !applied {
		c.deps.Logger.Debug("Decision ignored", zap.String("decision", decision.String()))
		c.deps.SendMessage("The card is not ready for a decision.")
	}
	return nil
}

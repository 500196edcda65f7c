package command

import (
	"context"
	"fmt"
)

type RetryCommand struct {
	deps *Dependencies
}

// NewRetryCommand creates the retry command.
func NewRetryCommand(deps *Dependencies) *RetryCommand {
	return &RetryCommand{deps: deps}
}

func (c *RetryCommand) Name() string {
	return "retry"
}

func (c *RetryCommand) Description() string {
	return "Fetches again after a failed load"
}

func (c *RetryCommand) Execute(ctx context.Context, _ map[string]any) error {
	var started bool
	if err := c.deps.Dispatch(ctx, func() {
		started = c.deps.Session.Retry()
	}); err != nil {
		return fmt.Errorf("retry: %w", err)
	}

	if !started {
		c.deps.SendMessage("Nothing to retry.")
	}
	return nil
}

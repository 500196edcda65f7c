package command

import (
	"context"
)

type HelpCommand struct {
	deps *Dependencies
}

// NewHelpCommand creates the help command.
func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Lists the available commands"
}

func (c *HelpCommand) Execute(_ context.Context, _ map[string]any) error {
	c.deps.SendMessage(c.deps.Formatter.Help())
	return nil
}

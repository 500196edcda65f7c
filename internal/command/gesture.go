package command

import (
	"context"
	"fmt"
)

type DragCommand struct {
	deps *Dependencies
}

// NewDragCommand creates the drag command.
func NewDragCommand(deps *Dependencies) *DragCommand {
	return &DragCommand{deps: deps}
}

func (c *DragCommand) Name() string {
	return "drag"
}

func (c *DragCommand) Description() string {
	return "Moves the card horizontally"
}

func (c *DragCommand) Execute(ctx context.Context, params map[string]any) error {
	dx, dy, err := gestureParams(params)
	if err != nil {
		return err
	}

	var moved bool
	if err := c.deps.Dispatch(ctx, func() {
		moved = c.deps.Session.Drag(dx, dy)
	}); err != nil {
		return fmt.Errorf("drag: %w", err)
	}

	if !moved {
		c.deps.SendMessage("The card cannot be dragged right now.")
	}
	return nil
}

// ReleaseCommand ends a drag. Past the threshold it decides, otherwise the
// card settles back.
type ReleaseCommand struct {
	deps *Dependencies
}

// NewReleaseCommand creates the release command.
func NewReleaseCommand(deps *Dependencies) *ReleaseCommand {
	return &ReleaseCommand{deps: deps}
}

func (c *ReleaseCommand) Name() string {
	return "release"
}

func (c *ReleaseCommand) Description() string {
	return "Releases the card at a horizontal offset"
}

func (c *ReleaseCommand) Execute(ctx context.Context, params map[string]any) error {
	dx, dy, err := gestureParams(params)
	if err != nil {
		return err
	}

	if err := c.deps.Dispatch(ctx, func() {
		c.deps.Session.Release(dx, dy)
	}); err != nil {
		return fmt.Errorf("release: %w", err)
	}
	return nil
}

func gestureParams(params map[string]any) (float64, float64, error) {
	dx, ok := params["dx"].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("gesture: missing dx parameter")
	}
	dy, _ := params["dy"].(float64)
	return dx, dy, nil
}

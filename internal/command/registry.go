package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownCommand is returned for a key with no registered command.
var ErrUnknownCommand = errors.New("unknown command")

// Registry maps lower-cased command names to their handlers.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd under its name. A later registration with the same name
// replaces the earlier one.
func (r *Registry) Register(cmd Command) {
	if cmd == nil {
		return
	}
	key := normalizeKey(cmd.Name())
	if key == "" {
		return
	}

	r.mu.Lock()
	r.commands[key] = cmd
	r.mu.Unlock()
}

// Execute runs the command registered under key.
func (r *Registry) Execute(ctx context.Context, key string, params map[string]any) error {
	cmd, ok := r.lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, key)
	}
	return cmd.Execute(ctx, params)
}

// Names lists registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

func (r *Registry) lookup(key string) (Command, bool) {
	key = normalizeKey(key)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[key]
	return cmd, ok
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

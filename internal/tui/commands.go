// Package tui is the terminal dashboard: tables of tasks and runs kept
// fresh by the polling layer, with a toast feed, confirm dialog, and a
// task form.
package tui

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kettle/taskdeck/internal/api"
	"github.com/kettle/taskdeck/internal/record"
)

// Command is a named row action. Rows refer to actions by name only;
// anything not registered here cannot run. Run returns the server's
// mutation result so confirmed records reach the reconciler.
type Command struct {
	Name  string
	Title string
	// Destructive actions require confirmation before Run is called.
	Destructive bool
	Run         func(ctx context.Context, rec record.Record) (api.MutationResult, error)
}

// Registry is the closed set of row actions.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name is empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cmds[cmd.Name]; ok {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}
	r.cmds[cmd.Name] = cmd
	return nil
}

// Lookup returns a registered command by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// Dispatch runs a registered command against a record. An unknown name
// is an error, never a fallthrough.
func (r *Registry) Dispatch(ctx context.Context, name string, rec record.Record) (api.MutationResult, error) {
	cmd, ok := r.Lookup(name)
	if !ok {
		return api.MutationResult{}, fmt.Errorf("unknown command %q", name)
	}
	return cmd.Run(ctx, rec)
}

// Names returns all registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

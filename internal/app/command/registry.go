// Package command maps prompt input to queue and playback operations.
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/ytmusic/internal/ui"
)

// HandlerFunc runs a command with its argument text.
type HandlerFunc func(d *Dispatcher, ctx context.Context, p *ui.Printer, arg string) error

// Command describes one prompt command.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string // e.g. "play [n]"
	Description string
	Handler     HandlerFunc
}

// Registry holds commands by name and alias.
type Registry struct {
	commands []*Command
	lookup   map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make([]*Command, 0),
		lookup:   make(map[string]*Command),
	}
}

// Register adds a command. Names and aliases are case-insensitive and must be unique.
func (r *Registry) Register(cmd *Command) error {
	if cmd.Name == "" || cmd.Handler == nil {
		return errors.New("command needs a name and a handler")
	}
	words := append([]string{cmd.Name}, cmd.Aliases...)
	for _, w := range words {
		if _, ok := r.lookup[strings.ToLower(w)]; ok {
			return errors.Newf("duplicate command word: %s", w)
		}
	}
	for _, w := range words {
		r.lookup[strings.ToLower(w)] = cmd
	}
	r.commands = append(r.commands, cmd)
	return nil
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(word string) (*Command, bool) {
	cmd, ok := r.lookup[strings.ToLower(word)]
	return cmd, ok
}

// Commands returns the commands in registration order.
func (r *Registry) Commands() []*Command {
	return r.commands
}

// Words returns every name and alias, sorted. Used for completion.
func (r *Registry) Words() []string {
	words := make([]string, 0, len(r.lookup))
	for w := range r.lookup {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// HelpLines returns the help screen rows.
func (r *Registry) HelpLines() []ui.HelpLine {
	lines := make([]ui.HelpLine, 0, len(r.commands))
	for _, cmd := range r.commands {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		if len(cmd.Aliases) > 0 {
			usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		lines = append(lines, ui.HelpLine{Usage: usage, Description: cmd.Description})
	}
	return lines
}

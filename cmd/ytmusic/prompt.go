package main

import (
	"github.com/chzyer/readline"

	"github.com/osa030/ytmusic/internal/app/command"
	"github.com/osa030/ytmusic/internal/app/playback"
	"github.com/osa030/ytmusic/internal/app/session"
)

// prompt renders the prompt for the playback state.
func prompt(s session.Status) string {
	switch s.State {
	case playback.StatePlaying:
		return "▶ ytmusic> "
	case playback.StatePaused:
		return "⏸ ytmusic> "
	default:
		return "■ ytmusic> "
	}
}

// completer completes command names and aliases.
func completer(registry *command.Registry) *readline.PrefixCompleter {
	words := registry.Words()
	items := make([]readline.PrefixCompleterInterface, 0, len(words))
	for _, w := range words {
		items = append(items, readline.PcItem(w))
	}
	return readline.NewPrefixCompleter(items...)
}

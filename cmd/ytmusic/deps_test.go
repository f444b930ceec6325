package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/ytmusic/internal/app/command"
	"github.com/osa030/ytmusic/internal/app/playback"
	"github.com/osa030/ytmusic/internal/app/session"
	"github.com/osa030/ytmusic/internal/infra/config"
)

func TestInstallHint(t *testing.T) {
	tests := []struct {
		name string
		goos string
		want string
	}{
		{name: "mpv", goos: "linux", want: "sudo apt install mpv"},
		{name: "yt-dlp", goos: "linux", want: "pip install yt-dlp"},
		{name: "mpv", goos: "darwin", want: "brew install mpv"},
		{name: "yt-dlp", goos: "darwin", want: "brew install yt-dlp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, installHint(tt.name, tt.goos))
	}
}

func TestCheckDependencies_Missing(t *testing.T) {
	cfg := &config.Config{
		Player: config.PlayerConfig{Path: "/nonexistent/mpv"},
		YTDLP:  config.YTDLPConfig{Path: "/nonexistent/yt-dlp"},
	}

	var out bytes.Buffer
	assert.False(t, checkDependencies(&out, cfg))
	assert.Contains(t, out.String(), "missing dependencies: mpv, yt-dlp")
	assert.Contains(t, out.String(), "scripts/install.sh")
}

func TestPrompt(t *testing.T) {
	assert.Equal(t, "▶ ytmusic> ", prompt(session.Status{State: playback.StatePlaying}))
	assert.Equal(t, "⏸ ytmusic> ", prompt(session.Status{State: playback.StatePaused}))
	assert.Equal(t, "■ ytmusic> ", prompt(session.Status{}))
}

func TestCompleter(t *testing.T) {
	c := completer(command.NewDefaultRegistry())

	names := make([]string, 0)
	for _, child := range c.GetChildren() {
		names = append(names, string(child.GetName()))
	}
	assert.Contains(t, names, "playall ")
	assert.Contains(t, names, "vol ")
}

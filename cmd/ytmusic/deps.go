package main

import (
	"io"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/ytmusic/internal/infra/config"
	"github.com/osa030/ytmusic/internal/infra/mpv"
	"github.com/osa030/ytmusic/internal/infra/ytdlp"
	"github.com/osa030/ytmusic/internal/ui"
)

// checkDependencies reports whether mpv and yt-dlp can be found, printing install hints when not.
func checkDependencies(w io.Writer, cfg *config.Config) bool {
	var missing []string
	if _, err := mpv.LookPath(cfg.Player.Path); err != nil {
		missing = append(missing, "mpv")
	}
	if _, err := ytdlp.LookPath(cfg.YTDLP.Path); err != nil {
		missing = append(missing, "yt-dlp")
	}
	if len(missing) == 0 {
		return true
	}

	p := ui.NewPrinter(w)
	p.Error(errors.Newf("missing dependencies: %s", strings.Join(missing, ", ")))
	p.Warn("Install with:")
	for _, name := range missing {
		p.Dim("%s", installHint(name, runtime.GOOS))
	}
	p.Warn("or run scripts/install.sh")
	return false
}

func installHint(name, goos string) string {
	switch {
	case goos == "darwin":
		return "brew install " + name
	case name == "mpv":
		return "sudo apt install mpv"
	default:
		return "pip install yt-dlp"
	}
}

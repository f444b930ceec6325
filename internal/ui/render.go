// Package ui renders player output to the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

const indent = "  "

var (
	cyan   = lipgloss.Color("#00D7FF")
	green  = lipgloss.Color("#5FD75F")
	yellow = lipgloss.Color("#FFD75F")
	red    = lipgloss.Color("#FF5F5F")
	grey   = lipgloss.Color("#8A8A8A")
)

// HelpLine is one row of the help screen.
type HelpLine struct {
	Usage       string
	Description string
}

// Printer writes styled output.
// Styles degrade to plain text when w is not a terminal.
type Printer struct {
	w io.Writer

	header  lipgloss.Style
	title   lipgloss.Style
	number  lipgloss.Style
	dim     lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
	current lipgloss.Style
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		header:  r.NewStyle().Foreground(cyan).Bold(true),
		title:   r.NewStyle().Bold(true),
		number:  r.NewStyle().Foreground(cyan),
		dim:     r.NewStyle().Foreground(grey),
		info:    r.NewStyle().Foreground(cyan),
		success: r.NewStyle().Foreground(green),
		warn:    r.NewStyle().Foreground(yellow),
		failure: r.NewStyle().Foreground(red),
		current: r.NewStyle().Foreground(green).Bold(true),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Header prints the banner.
func (p *Printer) Header() {
	lines := []string{
		"╔═══════════════════════════════════════════════════════╗",
		"║              ♪  YouTube Music CLI Player  ♪           ║",
		"╚═══════════════════════════════════════════════════════╝",
	}
	fmt.Fprintln(p.w)
	for _, l := range lines {
		fmt.Fprintln(p.w, indent+p.header.Render(l))
	}
	fmt.Fprintln(p.w)
}

// Help prints the command reference.
func (p *Printer) Help(lines []HelpLine) {
	width := 0
	for _, l := range lines {
		width = max(width, len(l.Usage))
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, indent+p.title.Render("Commands:"))
	for _, l := range lines {
		fmt.Fprintf(p.w, "%s%s%s  %s\n", indent+indent,
			p.number.Render(l.Usage), strings.Repeat(" ", width-len(l.Usage)), l.Description)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, indent+p.dim.Render("Typing anything else searches for songs."))
	fmt.Fprintln(p.w)
}

// Info prints a progress message.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.info, format, args...)
}

// Success prints a confirmation.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.success, format, args...)
}

// Warn prints a notice about something that did not happen.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.warn, format, args...)
}

// Dim prints a low-key status line.
func (p *Printer) Dim(format string, args ...any) {
	p.line(p.dim, format, args...)
}

// Error prints a failure.
func (p *Printer) Error(err error) {
	p.line(p.failure, "Error: %v", err)
}

// Tracks prints a numbered song list.
func (p *Printer) Tracks(heading string, tracks []track.Track) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, indent+p.title.Render(heading))
	fmt.Fprintln(p.w)
	for i, t := range tracks {
		fmt.Fprintf(p.w, "%s%s %s\n", indent, p.number.Render(fmt.Sprintf("%2d.", i+1)), t.Title)
		fmt.Fprintf(p.w, "%s    %s\n", indent, p.dim.Render(t.Artist()+" • "+track.FormatDuration(t.Duration)))
	}
	fmt.Fprintln(p.w)
}

// Playlists prints a numbered album or playlist list.
func (p *Printer) Playlists(heading string, pls []playlist.Playlist) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, indent+p.title.Render(heading))
	fmt.Fprintln(p.w)
	for i := range pls {
		pl := &pls[i]
		fmt.Fprintf(p.w, "%s%s %s\n", indent, p.number.Render(fmt.Sprintf("%2d.", i+1)), pl.Name)
		sub := pl.Subtitle()
		if pl.TrackCount > 0 {
			sub += fmt.Sprintf(" • %d tracks", pl.TrackCount)
		}
		fmt.Fprintf(p.w, "%s    %s\n", indent, p.dim.Render(sub))
	}
	fmt.Fprintln(p.w)
}

// Queue prints the queue, marking the entry at index current.
func (p *Printer) Queue(tracks []track.Track, current int, total time.Duration) {
	if len(tracks) == 0 {
		fmt.Fprintln(p.w)
		p.Warn("Queue is empty.")
		return
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, indent+p.title.Render(fmt.Sprintf("Current Queue (%d tracks, %s):", len(tracks), track.FormatDuration(total))))
	fmt.Fprintln(p.w)
	for i, t := range tracks {
		line := fmt.Sprintf("%d. %s", i+1, t.Title)
		if i == current {
			fmt.Fprintf(p.w, "%s%s\n", indent, p.current.Render("▶ "+line))
		} else {
			fmt.Fprintf(p.w, "%s  %s\n", indent, line)
		}
		fmt.Fprintf(p.w, "%s     %s\n", indent, p.dim.Render(t.Artist()))
	}
	fmt.Fprintln(p.w)
}

// NowPlaying prints the current track with its position.
func (p *Printer) NowPlaying(t track.Track, state string, pos, dur time.Duration) {
	if state != "" {
		state = strings.ToUpper(state[:1]) + state[1:]
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, indent+p.current.Render(state+":"))
	fmt.Fprintf(p.w, "%s%s %s\n", indent, p.warn.Render("♪"), t.Title)
	fmt.Fprintf(p.w, "%s  %s\n", indent, p.dim.Render("by "+t.Artist()))
	fmt.Fprintf(p.w, "%s  %s\n", indent, p.dim.Render(track.FormatDuration(pos)+" / "+track.FormatDuration(dur)))
	fmt.Fprintln(p.w)
}

// ClearScreen clears the terminal.
func (p *Printer) ClearScreen() {
	fmt.Fprint(p.w, "\033[H\033[2J")
}

// Goodbye prints the exit message.
func (p *Printer) Goodbye() {
	fmt.Fprintln(p.w)
	p.Info("Goodbye! ♪")
	fmt.Fprintln(p.w)
}

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.w, indent+style.Render(fmt.Sprintf(format, args...)))
}

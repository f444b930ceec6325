// Package main provides the remote-control CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/ytmusic/internal/api/connect"
)

var (
	app     = kingpin.New("ytmusic-remote", "ytmusic remote control client")
	server  = app.Flag("server", "Server address").Default("http://localhost:7777").String()
	token   = app.Flag("token", "Remote token (or set YTMUSIC_REMOTE_TOKEN env)").Envar("YTMUSIC_REMOTE_TOKEN").String()
	timeout = app.Flag("timeout", "Request timeout").Default("2m").Duration()

	// exec command
	execCmd   = app.Command("exec", "Run a player command (e.g. exec next, exec s daft punk)")
	execWords = execCmd.Arg("command", "Command words").Required().Strings()

	// status command
	statusCmd = app.Command("status", "Get playback status")

	// watch command
	watchCmd = app.Command("watch", "Stream playback notifications until interrupted")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := apiconnect.NewRemoteClient(http.DefaultClient, *server, *token)

	// Streaming runs until interrupted rather than until the request timeout
	if command == watchCmd.FullCommand() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		watch(ctx, client)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Execute command
	switch command {
	case execCmd.FullCommand():
		execute(ctx, client, strings.Join(*execWords, " "))
	case statusCmd.FullCommand():
		status(ctx, client)
	}
}

func execute(ctx context.Context, client *apiconnect.RemoteClient, line string) {
	out, err := client.Execute(ctx, line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func status(ctx context.Context, client *apiconnect.RemoteClient) {
	s, err := client.Status(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n=== PLAYBACK STATUS ===")
	fmt.Printf("State: %v\n", s["state"])
	fmt.Printf("Volume: %v%%\n", s["volume"])
	fmt.Printf("Queue: %v/%v\n", position(s["queue_index"]), s["queue_size"])

	if t, ok := s["track"].(map[string]any); ok {
		fmt.Printf("\nCurrent Track:\n")
		fmt.Printf("  Title: %v\n", t["title"])
		fmt.Printf("  Artist: %v\n", t["artist"])
		if album, _ := t["album"].(string); album != "" {
			fmt.Printf("  Album: %s\n", album)
		}
		fmt.Printf("  Source: %v\n", t["source"])
		fmt.Printf("  Position: %s / %s\n", seconds(s["position_sec"]), seconds(s["duration_sec"]))
	}
	fmt.Println()
}

func watch(ctx context.Context, client *apiconnect.RemoteClient) {
	fmt.Println("Watching playback (Ctrl-C to stop)...")
	err := client.Watch(ctx, func(n map[string]any) error {
		fmt.Printf("[%v] #%v %v", n["time"], n["sequence_no"], n["type"])
		if t, ok := n["track"].(map[string]any); ok {
			fmt.Printf(": %v - %v", t["artist"], t["title"])
		}
		if msg, _ := n["message"].(string); msg != "" {
			fmt.Printf(" (%s)", msg)
		}
		fmt.Printf(" [%v]\n", n["state"])
		return nil
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// position converts the zero-based queue index to a 1-based position.
func position(v any) int {
	f, _ := v.(float64)
	return int(f) + 1
}

func seconds(v any) string {
	f, _ := v.(float64)
	return (time.Duration(f) * time.Second).Round(time.Second).String()
}

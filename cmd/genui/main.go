package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nmirabets/gen-ui-app/attachment"
	"github.com/nmirabets/gen-ui-app/dispatch"
	"github.com/nmirabets/gen-ui-app/observability"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to JSON config file")
		sessionName = flag.String("session", "", "Display label of the session to select or create")
		input       = flag.String("input", "", "User input to submit (required)")
		filePath    = flag.String("file", "", "Path of an attachment to upload with the turn")
		gatewayName = flag.String("gateway", "", "Named gateway from config to dispatch against")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: genui -input <text> [-config <file>] [-session <label>] [-file <path>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := dispatch.DefaultConfig()
	if *configFile != "" {
		loaded, err := dispatch.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	d, err := dispatch.New(&cfg, dispatch.WithObserver(observability.NewSlogObserver(logger)))
	if err != nil {
		log.Fatalf("Failed to create dispatcher: %v", err)
	}

	if *gatewayName != "" {
		if err := d.UseGateway(*gatewayName); err != nil {
			log.Fatalf("Failed to select gateway: %v", err)
		}
	}

	store := d.Store()
	if *sessionName != "" {
		if _, err := store.SelectOrCreate(*sessionName); err != nil {
			log.Fatalf("Failed to select session: %v", err)
		}
	} else if _, ok := store.Active(); !ok {
		store.CreateNew()
	}

	var file *attachment.File
	if *filePath != "" {
		f, err := attachment.FromPath(*filePath)
		if err != nil {
			log.Fatalf("Failed to read attachment: %v", err)
		}
		file = &f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	turn, err := d.SubmitTurn(ctx, *input, file)
	if err != nil {
		log.Fatalf("Turn failed: %v", err)
	}
	if turn == nil {
		log.Fatal("Turn not eligible: no active session or blank input")
	}

	if err := turn.Wait(ctx); err != nil {
		log.Printf("Terminal event failed: %v", err)
	}

	active, _ := store.Active()
	fmt.Printf("Session: %s (%s)\n\n", active.Label(), active.ID())

	fmt.Println("Transcript:")
	for _, msg := range active.Messages() {
		fmt.Printf("  [%s] %s\n", msg.Role, msg.Content)
	}

	fmt.Println("\nTimeline:")
	for i, entry := range active.Timeline() {
		fmt.Printf("  [%d] %s %v\n", i+1, entry.Kind, entry.Fragment)
	}
}

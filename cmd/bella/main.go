// Bella is the Beauty Pizza order-taking assistant.
//
// It drives a language model through a staged order-taking dialogue,
// grounding every menu fact in a local SQLite knowledge base and every
// order mutation in the Beauty Pizza order service. Configuration is
// loaded from a single YAML file discovered automatically (see
// [config.DefaultSearchPaths]).
//
// Usage:
//
//	bella serve              Start the HTTP/WebSocket API server
//	bella chat               Interactive order-taking session in the terminal
//	bella ask <message>      Send a single message (for testing)
//	bella version            Print version and build information
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/beautypizza/bella/internal/api"
	"github.com/beautypizza/bella/internal/buildinfo"
	"github.com/beautypizza/bella/internal/config"
	"github.com/beautypizza/bella/internal/conversation"
	"github.com/beautypizza/bella/internal/llm"
	"github.com/beautypizza/bella/internal/menu"
	"github.com/beautypizza/bella/internal/orderapi"
	"github.com/beautypizza/bella/internal/tools"
)

// main constructs the OS-level environment and delegates to [run] so
// the full lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	// A .env next to the binary is a convenience for development; its
	// absence is not an error.
	_ = godotenv.Load()

	// Parse arguments by hand: the flag package's package-level globals
	// get in the way of calling run() from parallel tests, and the
	// argument surface is tiny.
	var configPath string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "chat":
		return runChat(ctx, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: bella ask <message>")
		}
		return runAsk(ctx, stdout, configPath, strings.Join(cmdArgs, " "))
	case "version":
		return runVersion(stdout)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Bella - Beauty Pizza order-taking assistant")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: bella [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the HTTP/WebSocket API server")
	fmt.Fprintln(w, "  chat         Interactive session in the terminal")
	fmt.Fprintln(w, "  ask          Send a single message (for testing)")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>   Path to config file (default: auto-discover)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/bella/config.yaml, /etc/bella/config.yaml")
	return nil
}

func runVersion(w io.Writer) error {
	fmt.Fprintln(w, buildinfo.String())
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildinfo.Info())
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// bootstrap wires the stack shared by every command that talks to the
// model: config, logger, knowledge base, order client, tool registry
// and the session manager.
func bootstrap(ctx context.Context, stdout io.Writer, configPath string) (*config.Config, *conversation.Manager, *menu.Store, *slog.Logger, error) {
	cfgPath, err := config.FindConfig(configPath)
	var cfg *config.Config
	if err != nil {
		// No config file is fine; defaults cover local development.
		cfg = config.Default()
	} else {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := newLogger(stdout, level)
	if cfgPath != "" {
		logger.Info("config loaded", "path", cfgPath)
	}

	store, err := menu.NewStore(cfg.Database.Path, logger)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("opening knowledge base: %w", err)
	}
	if err := store.EnsureSeeded(ctx, cfg.Database.SeedFile); err != nil {
		store.Close()
		return nil, nil, nil, nil, fmt.Errorf("seeding knowledge base: %w", err)
	}

	orders := orderapi.NewClient(cfg.OrderAPI.URL, cfg.OrderAPI.Timeout(), logger)
	registry := tools.NewRegistry(store, orders, logger)

	var client llm.Client
	switch cfg.Model.Provider {
	case "openai":
		client = llm.NewOpenAIClient(cfg.Model.BaseURL, cfg.Model.APIKey, logger)
	default:
		client = llm.NewOllamaClient(cfg.Model.OllamaURL)
	}
	if err := client.Ping(ctx); err != nil {
		logger.Warn("model backend not reachable", "provider", cfg.Model.Provider, "error", err)
	}

	manager := conversation.NewManager(client, cfg.Model.Name, registry,
		cfg.Conversation.MaxToolRounds, cfg.Conversation.HistoryExchanges, logger)

	return cfg, manager, store, logger, nil
}

func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, manager, store, logger, err := bootstrap(ctx, stdout, configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("starting", "build", buildinfo.String())

	server := api.NewServer(cfg.Listen.Address, cfg.Listen.Port, manager, cfg.Listen.AllowedOrigins, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// runChat runs an interactive terminal session. "reset" starts over,
// "sair" (or "exit"/"quit") ends the session.
func runChat(ctx context.Context, stdout io.Writer, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, manager, store, _, err := bootstrap(ctx, stdout, configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	conv := manager.Get("")
	fmt.Fprintln(stdout, "Bella — Beauty Pizza. Digite sua mensagem ('reset' recomeça, 'sair' encerra).")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "sair", "exit", "quit":
			fmt.Fprintln(stdout, "Até logo!")
			return nil
		case "reset":
			conv.Reset()
			fmt.Fprintln(stdout, "Conversa reiniciada.")
			continue
		}

		start := time.Now()
		reply, err := conv.Turn(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, reply)
		fmt.Fprintf(stdout, "(%.1fs)\n", time.Since(start).Seconds())
	}
}

func runAsk(ctx context.Context, stdout io.Writer, configPath, message string) error {
	_, manager, store, _, err := bootstrap(ctx, stdout, configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	reply, err := manager.Get("").Turn(ctx, message)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, reply)
	return nil
}

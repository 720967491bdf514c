package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/accordo-ai/accordo/engine"
	"github.com/accordo-ai/accordo/llm"
	"github.com/accordo-ai/accordo/observability"
	"github.com/accordo-ai/accordo/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "simulate":
		runSimulate(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: accordo <serve|simulate> [flags]")
	fmt.Fprintln(os.Stderr, "  serve     start the negotiation HTTP API")
	fmt.Fprintln(os.Stderr, "  simulate  run self-play negotiations against simulated vendors")
}

// loadConfig merges defaults, an optional JSON file, and environment
// variables, in that order.
func loadConfig(configFile string) (*engine.Config, error) {
	var cfg *engine.Config
	if configFile != "" {
		loaded, err := engine.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		c := engine.DefaultConfig()
		cfg = &c
	}

	if v := os.Getenv("ACCORDO_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("ACCORDO_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ACCORDO_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ACCORDO_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ACCORDO_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	return cfg, nil
}

func setupObserver(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))
}

func openStore(cfg *engine.Config) (store.Store, error) {
	if cfg.DatabasePath == "" {
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(cfg.DatabasePath)
}

func buildClient(ctx context.Context, cfg *engine.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "", "openai":
		return llm.NewHTTPClient(cfg.LLM), nil
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.LLM)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

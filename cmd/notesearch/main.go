// Package main is the notesearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/cli"
	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/internal/mcp"
	"github.com/hyperjump/notesearch/internal/models"
	"github.com/hyperjump/notesearch/internal/search"
	"github.com/hyperjump/notesearch/internal/server"
	"github.com/hyperjump/notesearch/internal/storage"
	"github.com/hyperjump/notesearch/internal/vector"
	"github.com/hyperjump/notesearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = config.DefaultPath

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence if it exists, and a missing default file yields the built-in
// defaults. NOTESEARCH_* environment variables are applied last. Returns the config and the
// path that was loaded ("" when defaults were used).
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := readConfig(path)
	if err != nil {
		return nil, "", err
	}
	config.ApplyEnv(cfg)
	return cfg, resolved, nil
}

func readConfig(path string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	if cwd, cwdErr := os.Getwd(); cwdErr == nil {
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			cfg, loadErr := config.Load(fallback)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, fallback, nil
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load(".env")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "query", "search":
		runQuery()
	case "serve", "server":
		runServe()
	case "mcp":
		runMCP()
	case "init":
		runInit()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("notesearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and builds the logger, exiting on failure.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger, string) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if debugFlag {
		cfg.Debug = true
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, resolved
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, resolved := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", cfg.Debug),
	)

	engine := search.NewEngineFromConfig(cfg, logger)
	defer engine.Close()

	srv := server.NewServer(engine, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runMCP() {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (stderr)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, _ := setup(*configPath, *debug)
	defer logger.Sync()

	engine := search.NewEngineFromConfig(cfg, logger)
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := mcp.NewServer(engine, cfg, version, logger).Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("MCP server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func printQueryUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: notesearch query [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Hybrid ranking fetches 3x top-k candidates by embedding similarity and re-ranks them with
keyword relevance. -vector-weight sets the share of embedding similarity in the fused score.

Examples:
  notesearch query machine learning
  notesearch query -top-k 10 "project kickoff notes"
  notesearch query -hybrid=false neural networks       # vector similarity only
  notesearch query -vector-weight 0.3 invoice march    # favour keyword matches
  notesearch query -server http://localhost:8080 -output json weekly review
`)
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// parseInterspersed parses args with fs, allowing flags between query words. Go's flag
// package stops at the first non-flag argument, so parsing resumes after each positional
// word. The positional words are returned in their original order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// withEngine runs fn against an engine built from cfg. The engine is closed and the logger
// flushed before withEngine returns, so callers may exit right after.
func withEngine(cfg *config.Config, logger *zap.Logger, fn func(*search.Engine) error, opts ...search.EngineOption) error {
	engine := search.NewEngineFromConfig(cfg, logger, opts...)
	defer func() {
		_ = engine.Close()
		_ = logger.Sync()
	}()
	return fn(engine)
}

// noteQueryFromFlags builds the request. Ranking fields are set only for flags given explicitly,
// so unset ones fall back to the configured defaults.
func noteQueryFromFlags(fs *flag.FlagSet, text string, topK int, hybrid bool, vectorWeight float64) *models.NoteQuery {
	q := &models.NoteQuery{Query: text}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "top-k":
			q.TopK = topK
		case "hybrid":
			h := hybrid
			q.Hybrid = &h
		case "vector-weight":
			w := vectorWeight
			q.VectorWeight = &w
		}
	})
	return q
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = query the vector store directly)")
	topK := fs.Int("top-k", 5, "number of results")
	hybrid := fs.Bool("hybrid", true, "re-rank with keyword relevance")
	vectorWeight := fs.Float64("vector-weight", config.DefaultVectorWeight, "weight of vector similarity in [0,1]")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printQueryUsage(fs) }
	words, _ := parseInterspersed(fs, os.Args[2:])

	text := buildQuery(words)
	if text == "" {
		printQueryUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	query := noteQueryFromFlags(fs, text, *topK, *hybrid, *vectorWeight)

	var response *models.QueryResponse
	if *serverURL != "" {
		response, err = queryViaHTTP(*serverURL, query)
	} else {
		cfg, logger, _ := setup(*configPath, *debug)
		err = withEngine(cfg, logger, func(engine *search.Engine) error {
			var searchErr error
			response, searchErr = engine.Search(context.Background(), query)
			return searchErr
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func queryViaHTTP(serverURL string, query *models.NoteQuery) (*models.QueryResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/notes/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	writeConfig := fs.Bool("write-config", false, "write the effective config to -config")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, _ := setup(*configPath, false)
	defer logger.Sync()

	ctx := context.Background()
	idx, err := vector.Create(ctx, vector.OpenOptions{
		IndexType:  cfg.Vector.IndexType,
		Location:   cfg.Storage.Location,
		Collection: cfg.Storage.Collection,
		DSN:        cfg.Vector.DSN,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	n, err := idx.Count(ctx)
	_ = idx.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Collection %q ready at %s (%d records)\n", cfg.Storage.Collection, cfg.Storage.Location, n)

	if *writeConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *configPath)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = inspect the vector store directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var st *storage.Status
	if *serverURL != "" {
		st, err = statusViaHTTP(*serverURL)
	} else {
		cfg, logger, _ := setup(*configPath, false)
		err = withEngine(cfg, logger, func(engine *search.Engine) error {
			var statusErr error
			st, statusErr = storage.CollectStatus(context.Background(), engine, cfg)
			return statusErr
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, st, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*storage.Status, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var st storage.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &st, nil
}

func printUsage() {
	fmt.Println(`notesearch - hybrid retrieval over personal notes

Usage:
  notesearch <command> [flags]

Commands:
  query <text>   Retrieve the most relevant note chunks
  serve          Start the HTTP API server
  mcp            Serve the get_relevant_notes tool over MCP stdio
  init           Create the configured vector store collection
  status         Show store location, record count and disk usage
  version        Print version
  help           Show this help

Run 'notesearch <command> -h' for command flags.`)
}

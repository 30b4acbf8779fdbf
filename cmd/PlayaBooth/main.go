package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/booth"
	"github.com/BTreeMap/PlayaBooth/internal/catalog"
	"github.com/BTreeMap/PlayaBooth/internal/genai"
	"github.com/BTreeMap/PlayaBooth/internal/prompt"
	"github.com/BTreeMap/PlayaBooth/internal/store"
	"github.com/BTreeMap/PlayaBooth/internal/ui"
	"github.com/BTreeMap/PlayaBooth/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for the session database and log file
	DefaultStateDir = "logs"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "sessions.db"
	// DefaultLogFileName is the default log filename inside the state directory
	DefaultLogFileName = "playabooth.log"
)

var _ booth.Screen = (*ui.Terminal)(nil)

func main() {
	if err := newRootCmd(loadEnvironmentConfig()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Config holds environment configuration
type Config struct {
	StateDir         string
	DatabaseURL      string
	Provider         string
	OpenAIKey        string
	OpenAIModel      string
	OllamaHost       string
	OllamaModel      string
	AnthropicKey     string
	ClaudeModel      string
	CatalogFile      string
	SystemPromptFile string
	QR               bool
	GenAIDebug       bool
	LogLevel         string
	LogFile          string
}

// Flags holds command line flag values
type Flags struct {
	prefill  string
	style    string
	once     bool
	avoid    []string
	qr       bool
	stateDir string
	dbDSN    string
	provider string
	model    string
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:         util.EnvOrDefault("PLAYABOOTH_STATE_DIR", DefaultStateDir),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Provider:         os.Getenv("LLM_PROVIDER"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      os.Getenv("OPENAI_MODEL"),
		OllamaHost:       os.Getenv("OLLAMA_HOST"),
		OllamaModel:      os.Getenv("OLLAMA_MODEL"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:      os.Getenv("CLAUDE_MODEL"),
		CatalogFile:      os.Getenv("PLAYABOOTH_CATALOG_FILE"),
		SystemPromptFile: os.Getenv("PLAYABOOTH_SYSTEM_PROMPT_FILE"),
		QR:               util.ParseBoolEnv("PLAYABOOTH_QR", false),
		GenAIDebug:       util.ParseBoolEnv("PLAYABOOTH_GENAI_DEBUG", false),
		LogLevel:         util.EnvOrDefault("PLAYABOOTH_LOG_LEVEL", "info"),
		LogFile:          os.Getenv("PLAYABOOTH_LOG_FILE"),
	}

	slog.Debug("environment variables loaded",
		"PLAYABOOTH_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"LLM_PROVIDER", config.Provider,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"ANTHROPIC_API_KEY_SET", config.AnthropicKey != "",
		"PLAYABOOTH_CATALOG_FILE", config.CatalogFile,
		"PLAYABOOTH_QR", config.QR)

	return config
}

// initializeLogger routes structured logs away from the booth screen. Logs go to
// PLAYABOOTH_LOG_FILE, or the state directory, and fall back to stderr.
// The returned function closes the log file.
func initializeLogger(config Config, stateDir string) func() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	path := config.LogFile
	if path == "" {
		path = filepath.Join(stateDir, DefaultLogFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			slog.SetDefault(slog.New(slog.NewTextHandler(f, handlerOpts)))
			slog.Debug("logger initialized", "path", path, "level", level)
			return func() { f.Close() }
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)))
	slog.Warn("failed to open log file, logging to stderr", "path", path)
	return func() {}
}

// resolveDSN picks the store DSN: the flag, then DATABASE_URL, then SQLite in the state directory.
func resolveDSN(flags Flags, config Config) string {
	if flags.dbDSN != "" {
		return flags.dbDSN
	}
	if config.DatabaseURL != "" {
		return config.DatabaseURL
	}
	return filepath.Join(flags.stateDir, DefaultDBFileName)
}

// openStore opens the session store, degrading to an unavailable store so the booth keeps running.
func openStore(ctx context.Context, dsn string) store.SessionStore {
	slog.Debug("opening session store", "dsn_type", store.DetectDSNType(dsn))
	st, err := store.Open(ctx, dsn)
	if err != nil {
		slog.Error("failed to open session store, sessions will not be logged", "dsn_type", store.DetectDSNType(dsn), "error", err)
		return store.NewUnavailableStore(err)
	}
	return st
}

// buildGenAIOptions constructs generation client options for the selected provider
func buildGenAIOptions(flags Flags, config Config) ([]genai.Option, error) {
	name := flags.provider
	if name == "" {
		name = config.Provider
	}
	provider, err := genai.ParseProvider(name)
	if err != nil {
		return nil, err
	}

	var key, model, baseURL string
	switch provider {
	case genai.ProviderOpenAI:
		key, model = config.OpenAIKey, config.OpenAIModel
	case genai.ProviderOllama:
		model, baseURL = config.OllamaModel, config.OllamaHost
	case genai.ProviderClaude:
		key, model = config.AnthropicKey, config.ClaudeModel
	}
	if flags.model != "" {
		model = flags.model
	}

	genaiOpts := []genai.Option{genai.WithProvider(provider)}
	if key != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(key))
	}
	if model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(model))
	}
	if baseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(baseURL))
	}
	if config.GenAIDebug {
		genaiOpts = append(genaiOpts, genai.WithDebugMode(true, flags.stateDir))
	}
	return genaiOpts, nil
}

// newGenerator builds the generation client, degrading to an unavailable generator
// when credentials are missing.
func newGenerator(genaiOpts []genai.Option) booth.Generator {
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Warn("generation client unavailable, booth will show fallback screens", "error", err)
		return genai.Unavailable(err)
	}
	return client
}

// loadCatalog returns the catalog file when configured, otherwise the built-in one.
func loadCatalog(config Config) (*catalog.Catalog, error) {
	if config.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(config.CatalogFile)
}

// buildPromptOptions constructs prompt builder options
func buildPromptOptions(config Config) ([]prompt.Option, error) {
	var promptOpts []prompt.Option
	if config.SystemPromptFile != "" {
		content, err := prompt.LoadSystemPrompt(config.SystemPromptFile)
		if err != nil {
			return nil, err
		}
		promptOpts = append(promptOpts, prompt.WithSystemPrompt(content))
	}
	return promptOpts, nil
}

// buildMachineOptions constructs state machine options
func buildMachineOptions(flags Flags, prefill map[string]string) []booth.Option {
	var machineOpts []booth.Option
	if prefill != nil {
		machineOpts = append(machineOpts, booth.WithPrefill(prefill))
	}
	if flags.style != "" {
		machineOpts = append(machineOpts, booth.WithStyle(flags.style))
	}
	var avoid []string
	for _, name := range flags.avoid {
		if name = strings.TrimSpace(name); name != "" {
			avoid = append(avoid, name)
		}
	}
	if len(avoid) > 0 {
		machineOpts = append(machineOpts, booth.WithAvoid(avoid))
	}
	if flags.once {
		machineOpts = append(machineOpts, booth.WithMaxCycles(1))
	}
	return machineOpts
}

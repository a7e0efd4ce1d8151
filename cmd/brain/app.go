package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/madebygps/second-brain/pkg/analysis"
	"github.com/madebygps/second-brain/pkg/config"
	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
	"github.com/madebygps/second-brain/pkg/llm/ollama"
	"github.com/madebygps/second-brain/pkg/llm/openai"
	"github.com/madebygps/second-brain/pkg/logging"
	"github.com/madebygps/second-brain/pkg/prompts"
	"github.com/madebygps/second-brain/pkg/usage"
)

// app wires the whole dependency graph for one CLI invocation: config,
// logger, entry store, usage ledger, and the completion gateway.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	store   *journal.Store
	ledger  *usage.Ledger
	gateway *llm.Gateway
}

// newApp loads config and constructs every component. The caller must
// close() the app to flush the ledger and log file.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.NewLogger("brain")
	if err != nil {
		// Logging falls back to stderr; not fatal.
		fmt.Printf("Warning: session log unavailable: %v\n", err)
	}

	var storeOpts []journal.StoreOption
	if cfg.MinSubstantialChars > 0 {
		storeOpts = append(storeOpts, journal.WithMinSubstantialChars(cfg.MinSubstantialChars))
	}
	store := journal.NewStore(cfg.DiaryPath, cfg.PlannerPath, storeOpts...)

	ledger, err := usage.Open(cfg.CostDBPath, priceTable(cfg))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		ledger.Close()
		log.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		ledger:  ledger,
		gateway: llm.NewGateway(completer, ledger, log),
	}, nil
}

func (a *app) close() {
	if err := a.ledger.Close(); err != nil {
		a.log.Errorf("failed to close ledger: %v", err)
	}
	a.log.Close()
}

func (a *app) analyzer() *analysis.Analyzer {
	return analysis.NewAnalyzer(a.gateway, a.log, analysis.DefaultLimits())
}

func (a *app) prompts() *prompts.Generator {
	return prompts.NewGenerator(a.gateway, a.log)
}

// checkConnection probes the provider and prints a hint when it is down.
// Callers decide whether to continue degraded or stop.
func (a *app) checkConnection(ctx context.Context) bool {
	if a.gateway.CheckConnection(ctx) {
		return true
	}
	fmt.Printf("Warning: LLM provider %q is not reachable\n", a.cfg.Provider)
	return false
}

// buildCompleter constructs the provider client named by the config.
func buildCompleter(cfg *config.Config) (llm.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []openai.Option{}
		if cfg.OpenAI.Model != "" {
			opts = append(opts, openai.WithModel(cfg.OpenAI.Model))
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		return openai.New(cfg.OpenAI.APIKey, opts...)
	case config.ProviderAzure:
		return openai.New(cfg.Azure.APIKey,
			openai.WithAzure(cfg.Azure.Endpoint, cfg.Azure.APIVersion),
			openai.WithModel(cfg.Azure.Deployment),
		)
	case config.ProviderOllama:
		return ollama.New(cfg.Ollama.BaseURL, ollama.WithModel(cfg.Ollama.Model)), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// priceTable merges config price overrides (per 1K tokens) over the
// built-in per-token defaults.
func priceTable(cfg *config.Config) usage.PriceTable {
	table := usage.DefaultPrices()
	for model, override := range cfg.Prices {
		table[model] = usage.Price{
			Input:  override.InputPer1K / 1000,
			Output: override.OutputPer1K / 1000,
		}
	}
	return table
}

// parseDateArg resolves "today", "yesterday", "tomorrow", or a
// YYYY-MM-DD literal.
func parseDateArg(arg string) (time.Time, error) {
	today := journal.Today()
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	date, err := time.Parse(journal.DateLayout, arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected today, yesterday, tomorrow, or YYYY-MM-DD", arg)
	}
	return date.UTC(), nil
}

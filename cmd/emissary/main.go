// Emissary serves a persona chatbot over HTTP: a representative for one
// person's website that answers questions about their career and
// background, records interested visitors, and tracks questions it
// could not answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/emissary-ai/emissary/internal/agent"
	"github.com/emissary-ai/emissary/internal/config"
	"github.com/emissary-ai/emissary/internal/leads"
	"github.com/emissary-ai/emissary/internal/model"
	"github.com/emissary-ai/emissary/internal/notify"
	"github.com/emissary-ai/emissary/internal/persona"
	"github.com/emissary-ai/emissary/internal/prompt"
	"github.com/emissary-ai/emissary/internal/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "emissary: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to config file")
		addr       = flag.String("addr", "", "listen address (overrides config)")
	)
	flag.Parse()

	// Secrets may live in a local .env file during development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := newLogger(cfg.Logging.Level)

	if cfg.Model.APIKey == "" {
		return fmt.Errorf("no API key configured: set OPENAI_API_KEY or model.api_key")
	}

	p, err := persona.Load(cfg.Persona.Name, cfg.Persona.SummaryPath, cfg.Persona.ProfilePath)
	if err != nil {
		return fmt.Errorf("loading persona: %w", err)
	}
	log.WithField("persona", p.Name).Info("persona loaded")

	if err := os.MkdirAll(cfg.Paths.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	store, err := leads.Open(cfg.Paths.LeadsDB)
	if err != nil {
		return fmt.Errorf("opening leads store: %w", err)
	}
	defer store.Close()

	notifier := notify.New(notifyConfig(cfg), log)
	if !cfg.NotifyConfigured() {
		log.Warn("pushover not configured, notifications will be dropped")
	}

	registry := tools.NewRegistry()
	registry.Initialize(notifier, store, log)

	timeout := time.Duration(cfg.Model.Timeout()) * time.Second
	chatModel := model.NewOpenAIClient(&model.OpenAIConfig{
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
		Model:   cfg.Model.ChatModel,
		Timeout: timeout,
	})
	evalModel := model.NewOpenAIClient(&model.OpenAIConfig{
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
		Model:   cfg.Model.EvalModel,
		Timeout: timeout,
	})

	a := agent.New(&agent.Config{
		Model:         chatModel,
		EvalModel:     evalModel,
		Tools:         registry,
		Prompts:       prompt.NewBuilder(p),
		Log:           log,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		Evaluate:      cfg.Agent.Evaluate,
		Temperature:   cfg.Model.Temperature,
	})

	srv := newServer(a, store, log)
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a turn may take several model calls
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}

	// Let in-flight notifications drain before the process exits.
	notifier.Flush()
	return nil
}

// notifyConfig maps the notify settings onto the client. Disabling the
// channel withholds the credentials so the client drops every push.
func notifyConfig(cfg *config.Config) notify.Config {
	nc := notify.Config{URL: cfg.Notify.URL}
	if cfg.Notify.Enabled {
		nc.User = cfg.Notify.User
		nc.Token = cfg.Notify.Token
	}
	return nc
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(homeDir, ".emissary", "config.toml")
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/spf13/cobra"

	"github.com/shopbot/assistant/internal/agent/catalog"
	"github.com/shopbot/assistant/internal/agent/chat"
	"github.com/shopbot/assistant/internal/agent/functions"
	"github.com/shopbot/assistant/internal/agent/model"
	"github.com/shopbot/assistant/internal/agent/observers"
	"github.com/shopbot/assistant/internal/agent/prompts"
	"github.com/shopbot/assistant/internal/agent/providers"
	"github.com/shopbot/assistant/internal/config"
	"github.com/shopbot/assistant/internal/shell"
	logx "github.com/shopbot/assistant/pkg/logger"
)

var (
	catalogSource string
	catalogPath   string
	envFile       string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:           "shopbot",
	Short:         "A conversational shopping assistant.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&catalogSource, "catalog-source", "", "catalog source: embedded, file, sqlite or redis (overrides CATALOG_SOURCE)")
	rootCmd.Flags().StringVar(&catalogPath, "catalog-path", "", "catalog file or database path (overrides CATALOG_PATH)")
	rootCmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file to load before reading the environment")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level while chatting")
}

func run(ctx context.Context) error {
	cfg, warning, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if catalogSource != "" {
		cfg.Catalog.Source = catalogSource
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	logx.Init(logx.LoggerOpts{
		Environment: cfg.Environment,
		Quiet:       !verbose,
	})
	if warning != nil {
		logx.Warn().Err(warning).Msg("Continuing without env file")
	}
	logx.Info().
		Str("environment", cfg.Environment.String()).
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.ModelName()).
		Str("catalog_source", cfg.Catalog.Source).
		Msg("Starting ShopBot")

	store, err := catalog.Load(ctx, cfg.Catalog, cfg.Redis)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to load product catalog")
		return err
	}

	registry, err := functions.NewCatalogRegistry(store)
	if err != nil {
		return fmt.Errorf("build function registry: %w", err)
	}

	handler := observers.NewAllCallbacks()
	promptCtx := einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      "system_prompt",
		Component: components.ComponentOfPrompt,
	}, handler)
	systemPrompt, err := prompts.RenderSystem(promptCtx, cfg.Prompt)
	if err != nil {
		return fmt.Errorf("render system prompt: %w", err)
	}

	completer, err := providers.New(ctx, cfg.LLM, registry.DescribeAll())
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create completion provider")
		return err
	}

	orchestrator, err := chat.NewOrchestrator(completer, registry, chat.Config{
		MaxFunctionRounds: cfg.Conversation.MaxFunctionRounds,
		RequestTimeout:    cfg.LLM.RequestTimeout,
		ModelName:         cfg.LLM.ModelName(),
		Callbacks:         []einocb.Handler{handler},
	})
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	transcript := model.NewTranscript(systemPrompt)
	logx.Debug().Str("session_id", transcript.ID()).Msg("Session started")

	busy := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	busy.Suffix = " Just a moment..."

	sh := shell.New(orchestrator, transcript, shell.Options{
		ExitKeywords:  cfg.Conversation.ExitKeywords,
		Indicator:     busy,
		AssistantName: cfg.Prompt.BusinessName,
	})
	if err := sh.Run(ctx); err != nil {
		logx.Error().Err(err).Msg("Shell stopped")
		return err
	}
	logx.Debug().Str("session_id", transcript.ID()).Int("messages", transcript.Len()).Msg("Session ended")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shopbot: %v\n", err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/tutormesh"
	"github.com/hupe1980/tutormesh/config"
	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/model"
	"github.com/hupe1980/tutormesh/model/anthropic"
	"github.com/hupe1980/tutormesh/model/openai"
	"github.com/hupe1980/tutormesh/room/ws"
)

func newRunCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to a room relay and run a tutoring session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cfg.RoomURL == "" {
				return fmt.Errorf("TUTOR_ROOM_URL is required")
			}
			return runSession(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file (default ./.env)")
	return cmd
}

func runSession(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	r, err := ws.Dial(ctx, cfg.RoomURL, func(o *ws.Options) {
		if cfg.Identity != "" {
			o.Identity = cfg.Identity
		}
		o.Logger = logger
	})
	if err != nil {
		return err
	}
	defer r.Close()

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	logger.Info("worker.start", "room", cfg.RoomURL, "identity", r.Identity(), "model", m.Info().Name, "provider", m.Info().Provider)

	tm := tutormesh.New(func(o *tutormesh.Options) {
		o.Room = r
		o.Model = m
		o.Logger = logger
		o.ConfirmFlips = cfg.ConfirmFlips
	})

	if _, err := tm.Greet(ctx); err != nil {
		logger.Warn("worker.greet_failed", "error", err.Error())
	}

	// Inbound RPC handlers carry the session from here; block until the
	// process is told to stop.
	<-ctx.Done()
	logger.Info("worker.stop", "session_id", tm.Session().ID())
	return nil
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.ModelProvider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.ModelName != "" {
				o.Model = anthropicsdk.Model(cfg.ModelName)
			}
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case config.ProviderMock:
		return model.NewMockModel("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}
}

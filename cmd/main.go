package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/juru/adapters/capture"
	"github.com/satriahrh/juru/adapters/history"
	"github.com/satriahrh/juru/adapters/stt"
	"github.com/satriahrh/juru/adapters/translate"
	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
	"github.com/satriahrh/juru/internal/api"
	"github.com/satriahrh/juru/internal/auth"
	"github.com/satriahrh/juru/internal/config"
	"github.com/satriahrh/juru/internal/console"
	"github.com/satriahrh/juru/internal/metrics"
	"github.com/satriahrh/juru/internal/websocket"
	"github.com/satriahrh/juru/usecase"
)

const drainTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "juru: %v\n", err)
		return 2
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "juru: %v\n", err)
		return 2
	}
	defer logger.Sync()

	out := console.New(os.Stdout)
	out.Banner(cfg.Language.Source, cfg.Language.Target)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	source := newAudioSource(cfg.Capture, logger)
	if err := source.Open(); err != nil {
		return startupFailure(out, logger, "Capture device unavailable", err)
	}

	speechToText, closeSpeech, err := newSpeechToText(ctx, cfg.Speech, logger)
	if err != nil {
		return startupFailure(out, logger, "Failed to initialize speech-to-text", err)
	}
	defer closeSpeech()

	translator, err := newTranslator(ctx, cfg.Translation, logger)
	if err != nil {
		return startupFailure(out, logger, "Failed to initialize translator", err)
	}

	m := metrics.NewMetrics()
	writer := history.NewFileWriter(cfg.History.Path, logger.Named("history"),
		history.WithMetrics(m),
		history.WithErrorHandler(func(_ entities.Record, err error) {
			out.HistoryFailure(err.Error())
		}))

	opts := []usecase.Option{usecase.WithMetrics(m)}

	var hub *websocket.Hub
	if cfg.Status.Enabled {
		hub = websocket.NewHub(logger.Named("websocket"))
		go hub.Run(ctx)
		opts = append(opts, usecase.WithBroadcaster(hub))
	}

	service := usecase.NewTranslationService(source, speechToText, translator, writer, out,
		usecase.TranslationConfig{
			SourceLanguage:     cfg.Language.Source,
			TargetLanguage:     cfg.Language.Target,
			SpeechTimeout:      cfg.Speech.GetTimeoutDuration(),
			TranslationTimeout: cfg.Translation.GetTimeoutDuration(),
		},
		logger.Named("translation"),
		opts...)

	var e *echo.Echo
	if cfg.Status.Enabled {
		e, err = startStatusServer(cfg.Status, api.Dependencies{
			Hub:     hub,
			Tokens:  auth.NewTokenIssuer(cfg.Status.TokenSecret, cfg.Status.GetTokenTTLDuration()),
			Status:  service,
			Pending: writer,
			Metrics: m,
		}, out, logger.Named("api"))
		if err != nil {
			writer.Close(context.Background())
			return startupFailure(out, logger, "Failed to start status server", err)
		}
	}

	runErr := service.Run(ctx)

	logger.Info("Draining conversation log", zap.Int("pending", writer.Pending()))
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := writer.Close(drainCtx); err != nil {
		logger.Error("Conversation log not fully written", zap.Error(err))
		out.HistoryFailure(err.Error())
	}

	if e != nil {
		if err := e.Shutdown(drainCtx); err != nil {
			logger.Error("Status server forced to shutdown", zap.Error(err))
		}
	}

	if runErr != nil {
		out.Failure(runErr.Error())
		out.Exiting()
		return 1
	}

	out.Exiting()
	return 0
}

// startupFailure reports an error that prevents the loop from starting
func startupFailure(out *console.Console, logger *zap.Logger, msg string, err error) int {
	logger.Error(msg, zap.Error(err))
	out.Failure(err.Error())
	out.Exiting()
	return 1
}

func newAudioSource(c config.CaptureConfig, logger *zap.Logger) repositories.AudioSource {
	if c.ReplayDir != "" {
		return capture.NewReplaySource(c.ReplayDir, logger.Named("capture"))
	}
	return capture.NewRecorderSource(c.Command, c.RecorderArgs(), logger.Named("capture"))
}

func newSpeechToText(ctx context.Context, c config.SpeechConfig, logger *zap.Logger) (repositories.SpeechToText, func(), error) {
	logger = logger.Named("stt")

	switch c.Backend {
	case config.SpeechWhisper:
		return stt.NewWhisperSpeechToText(stt.WhisperConfig{
			APIKey:  c.APIKey,
			Model:   c.GetModel(),
			BaseURL: c.BaseURL,
		}, logger), func() {}, nil

	case config.SpeechGoogle:
		google, err := stt.NewGoogleSpeechToText(ctx, c.CredentialsFile, logger)
		if err != nil {
			return nil, nil, err
		}
		return google, func() {
			if err := google.Close(); err != nil {
				logger.Warn("Failed to close speech client", zap.Error(err))
			}
		}, nil

	case config.SpeechMock:
		return stt.NewMockSpeechToText(logger), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown speech backend %q", c.Backend)
	}
}

func newTranslator(ctx context.Context, c config.TranslationConfig, logger *zap.Logger) (repositories.Translator, error) {
	logger = logger.Named("translate")

	switch c.Backend {
	case config.TranslationGemini:
		return translate.NewGeminiTranslator(ctx, translate.GeminiConfig{
			APIKey:  c.APIKey,
			Model:   c.GetModel(),
			BaseURL: c.BaseURL,
		}, logger)

	case config.TranslationOpenAI:
		return translate.NewOpenAITranslator(translate.OpenAIConfig{
			APIKey:  c.APIKey,
			Model:   c.GetModel(),
			BaseURL: c.BaseURL,
		}, logger)

	case config.TranslationMock:
		return translate.NewMockTranslator(logger), nil

	default:
		return nil, fmt.Errorf("unknown translation backend %q", c.Backend)
	}
}

func startStatusServer(c config.StatusConfig, deps api.Dependencies, out *console.Console, logger *zap.Logger) (*echo.Echo, error) {
	token, err := deps.Tokens.GenerateViewerToken("operator")
	if err != nil {
		return nil, err
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, deps, logger)

	go func() {
		if err := e.Start(c.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server stopped", zap.Error(err))
		}
	}()

	logger.Info("Status server started", zap.String("address", c.Address))
	out.Info(fmt.Sprintf("Status: http://%s/api/v1/status", c.Address))
	out.Info(fmt.Sprintf("Live feed: ws://%s/ws?token=%s", c.Address, token))
	return e, nil
}

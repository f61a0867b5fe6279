package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shop-chat-agent/internal/config"
	"shop-chat-agent/internal/logging"
	"shop-chat-agent/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "shopchat",
	Short: "Conversational intent router for the shop backend",
	Long: `shopchat classifies chat utterances into shop actions and runs them
against the shop REST API.

Without a subcommand it runs as an AWS Lambda handler for API Gateway.`,
	SilenceUsage: true,
	RunE:         runLambda,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /chat over HTTP for local development",
	RunE:  runServe,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [utterance]",
	Short: "Print the classified intent of an utterance as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

var (
	listenAddr      string
	classifyOffline bool
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default LISTEN_ADDR)")
	classifyCmd.Flags().BoolVar(&classifyOffline, "offline", false, "use the keyword rules only, without calling the model")
	rootCmd.AddCommand(serveCmd, classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLambda(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := buildApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build app")
		return err
	}
	defer a.Close()

	lambda.Start(a.handler.Handle)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build app")
		return err
	}
	defer a.Close()

	mux := http.NewServeMux()
	mux.Handle("/chat", a.handler)
	mux.Handle("/healthz", a.handler)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Str("catalog", cfg.CatalogBaseURL).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runClassify(cmd *cobra.Command, args []string) error {
	utterance := strings.Join(args, " ")
	var classifier *usecase.Classifier
	if classifyOffline {
		classifier = usecase.NewClassifier(nil)
	} else {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		model, err := buildModel(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		cmd.SetContext(logger.WithContext(cmd.Context()))
		classifier = usecase.NewClassifier(model)
	}
	return printClassification(cmd.Context(), cmd.OutOrStdout(), classifier, utterance)
}

func printClassification(ctx context.Context, w io.Writer, c *usecase.Classifier, utterance string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(c.Classify(ctx, utterance))
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogPretty), nil
}

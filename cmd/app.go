package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"

	"shop-chat-agent/handler"
	"shop-chat-agent/internal/config"
	"shop-chat-agent/internal/integrations/catalog"
	"shop-chat-agent/internal/integrations/gemini"
	"shop-chat-agent/internal/integrations/paramstore"
	"shop-chat-agent/internal/repository"
	"shop-chat-agent/internal/usecase"
)

type app struct {
	handler *handler.Handler
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func buildApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	var awsCfg *aws.Config
	if cfg.NeedsAWS() {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg = &loaded
	}

	model, err := buildModelWith(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	catalogClient, err := catalog.NewClient(cfg.CatalogBaseURL, catalog.WithTimeout(cfg.UpstreamTimeout))
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	var sessions usecase.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendDynamoDB:
		store, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(*awsCfg), cfg.SessionTable, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("create session store: %w", err)
		}
		sessions = store
	default:
		store := repository.NewMemoryStore(cfg.SessionTTL)
		store.StartJanitor(cfg.SessionTTL / 2)
		a.closers = append(a.closers, store.Close)
		sessions = store
	}

	chat, err := usecase.NewChatService(model, catalogClient, sessions, cfg.MaxUtteranceLength)
	if err != nil {
		return nil, fmt.Errorf("create chat service: %w", err)
	}
	h, err := handler.NewHandler(chat, handler.WithAllowOrigin(cfg.CORSAllowOrigin), handler.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}
	a.handler = h
	return a, nil
}

// buildModel is used by commands that need only the language model.
func buildModel(ctx context.Context, cfg config.Config) (*gemini.Client, error) {
	var awsCfg *aws.Config
	if cfg.NeedsAWS() {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg = &loaded
	}
	return buildModelWith(cfg, awsCfg)
}

func buildModelWith(cfg config.Config, awsCfg *aws.Config) (*gemini.Client, error) {
	opts := []gemini.Option{gemini.WithModel(cfg.GeminiModel), gemini.WithTimeout(cfg.UpstreamTimeout)}
	if cfg.GeminiAPIKey != "" {
		opts = append(opts, gemini.WithAPIKey(cfg.GeminiAPIKey))
	} else {
		store, err := paramstore.New(awsssm.NewFromConfig(*awsCfg), cfg.SSMPrefix)
		if err != nil {
			return nil, fmt.Errorf("create parameter store: %w", err)
		}
		opts = append(opts, gemini.WithParamStore(store, cfg.GeminiAPIKeyParam))
	}
	model, err := gemini.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return model, nil
}

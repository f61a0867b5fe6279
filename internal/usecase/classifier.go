package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"shop-chat-agent/internal/domain"
)

// LanguageModel is the text-generation capability. ClassifyIntent is expected
// to answer with the classification JSON; GenerateText with prose.
type LanguageModel interface {
	ClassifyIntent(ctx context.Context, prompt string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Classifier turns an utterance into a ClassifiedIntent. It never fails: a
// missing model, a model error or an unusable answer all route to
// FallbackClassify.
type Classifier struct {
	model LanguageModel
}

// NewClassifier returns a Classifier. A nil model classifies with the
// keyword rules only.
func NewClassifier(model LanguageModel) *Classifier {
	return &Classifier{model: model}
}

func (c *Classifier) Classify(ctx context.Context, utterance string) domain.ClassifiedIntent {
	logger := zerolog.Ctx(ctx)
	if c == nil || c.model == nil {
		return FallbackClassify(utterance)
	}

	raw, err := c.model.ClassifyIntent(ctx, buildClassificationPrompt(utterance))
	if err != nil {
		logger.Warn().Err(err).Msg("intent model failed, using keyword rules")
		return FallbackClassify(utterance)
	}

	resp, err := parseClassification(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("intent model answer unusable, using keyword rules")
		return FallbackClassify(utterance)
	}
	ci, err := resp.toClassifiedIntent(utterance)
	if err != nil {
		logger.Warn().Err(err).Msg("intent model answer unusable, using keyword rules")
		return FallbackClassify(utterance)
	}
	return ci
}

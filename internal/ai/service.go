package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"travelgram/internal/common"
	"travelgram/internal/observability"
)

const (
	describePrompt = "What do you see in this picture? If it shows a historic place or object, " +
		"what is its history? Why is it worth seeing? Why should other people visit it? " +
		"Which similar places or objects would someone who enjoyed this also like?"

	analyzePrompt = "Answer the following questions about this image:\n" +
		"1. What do you see in this picture?\n" +
		"2. If there is a historic place or object, what is its history?\n" +
		"3. Why is it important to see what is shown here?\n" +
		"4. Why should other people see this place or object?\n" +
		"5. What other places or objects would interest people who saw this one, and where can they be found?\n\n" +
		"Write the answer as one flowing paragraph rather than numbered sections. " +
		"The user will share it on social media."

	noAnalysisText = "No analysis available for this image."
	maxTags        = 5
)

var defaultTags = []string{"travel", "trip", "discovery"}

type Analysis struct {
	AnalysisText string   `json:"analysisText"`
	Tags         []string `json:"tags,omitempty"`
}

type AIUsecase interface {
	GenerateDescription(ctx context.Context, imageRef string) (*Analysis, error)
	AnalyzeImage(ctx context.Context, imageRef string) (*Analysis, error)
}

type ImageLoader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

type Service struct {
	images    ImageLoader
	generator ContentGenerator
	logger    *zap.Logger
	metrics   *observability.Metrics
}

func NewService(images ImageLoader, generator ContentGenerator, logger *zap.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{images: images, generator: generator, logger: logger, metrics: metrics}
}

// GenerateDescription asks the model for a caption. An empty answer from
// the model is an upstream failure here.
func (s *Service) GenerateDescription(ctx context.Context, imageRef string) (*Analysis, error) {
	text, err := s.relay(ctx, imageRef, describePrompt)
	if err != nil {
		return nil, err
	}
	if text == "" {
		s.metrics.AIRelay("empty")
		return nil, fmt.Errorf("%w: model returned no description", common.ErrUpstream)
	}
	return &Analysis{AnalysisText: text}, nil
}

// AnalyzeImage asks the structured travel questions and derives tags
func (s *Service) AnalyzeImage(ctx context.Context, imageRef string) (*Analysis, error) {
	text, err := s.relay(ctx, imageRef, analyzePrompt)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return &Analysis{AnalysisText: noAnalysisText, Tags: append([]string(nil), defaultTags...)}, nil
	}
	return &Analysis{AnalysisText: text, Tags: ExtractTags(text)}, nil
}

func (s *Service) relay(ctx context.Context, imageRef, prompt string) (string, error) {
	data, err := s.images.Load(ctx, imageRef)
	if err != nil {
		s.metrics.AIRelay("image_error")
		return "", err
	}
	mimeType, payload, err := PrepareImage(data)
	if err != nil {
		s.metrics.AIRelay("image_error")
		return "", err
	}

	text, err := s.generator.Generate(ctx, prompt, mimeType, payload)
	if err != nil {
		s.metrics.AIRelay(relayOutcome(err))
		s.logger.Warn("AI relay failed", zap.String("image_ref", imageRef), zap.Error(err))
		return "", err
	}
	s.metrics.AIRelay("ok")
	return strings.TrimSpace(text), nil
}

// ExtractTags takes the first words longer than five characters
func ExtractTags(text string) []string {
	tags := make([]string, 0, maxTags)
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) > 5 {
			tags = append(tags, word)
			if len(tags) == maxTags {
				break
			}
		}
	}
	if len(tags) == 0 {
		return append([]string(nil), defaultTags...)
	}
	return tags
}

func relayOutcome(err error) string {
	switch {
	case errors.Is(err, common.ErrUnavailable):
		return "unavailable"
	case common.IsTimeout(err):
		return "timeout"
	default:
		return "upstream_error"
	}
}

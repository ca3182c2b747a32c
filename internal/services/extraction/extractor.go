package extraction

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fieldtrace/fieldtrace-backend/internal/clients/openai"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

// InferenceResult mirrors the inference capability's contract: free text
// plus a confidence estimate, or a failure. Success=false with an empty
// Error means the model looked and found nothing.
type InferenceResult struct {
	Success       bool
	ExtractedText string
	Confidence    float64 // 0..100
	Error         string
}

// Extractor is the single-field vision-inference boundary. The production
// implementation wraps the OpenAI client; tests use a deterministic fake.
type Extractor interface {
	Model() string
	Extract(ctx context.Context, image openai.ImageInput, instruction string) (*InferenceResult, error)
}

const (
	notFoundMarker     = "NOT_FOUND"
	maxExtractTokens   = 120
	defaultConfidence  = 60.0
	extractSystemRole  = "You extract one labeled value from a field-service photo. Be literal; never guess a value that is not visible."
	extractFormatLines = "Respond with exactly two lines:\nvalue: <the extracted value, or NOT_FOUND if it is not visible>\nconfidence: <integer 0-100>"
)

type openaiExtractor struct {
	log    *logger.Logger
	client openai.Client
}

func NewOpenAIExtractor(log *logger.Logger, client openai.Client) Extractor {
	return &openaiExtractor{
		log:    log.With("service", "OpenAIExtractor"),
		client: client,
	}
}

func (e *openaiExtractor) Model() string { return e.client.Model() }

func (e *openaiExtractor) Extract(ctx context.Context, image openai.ImageInput, instruction string) (*InferenceResult, error) {
	user := fmt.Sprintf("Extraction instruction: %s\n\n%s", strings.TrimSpace(instruction), extractFormatLines)

	raw, err := e.client.GenerateTextWithImages(ctx, extractSystemRole, user, []openai.ImageInput{image}, openai.GenerateOptions{
		Temperature:     0,
		MaxOutputTokens: maxExtractTokens,
	})
	if err != nil {
		return &InferenceResult{Success: false, Error: err.Error()}, err
	}

	value, confidence := parseExtractionReply(raw)
	if value == "" {
		return &InferenceResult{Success: false}, nil
	}
	return &InferenceResult{Success: true, ExtractedText: value, Confidence: confidence}, nil
}

// parseExtractionReply reads the two-line reply format. Models drift, so a
// reply that skips the format is taken wholesale as the value with a
// default confidence.
func parseExtractionReply(raw string) (string, float64) {
	value := ""
	confidence := defaultConfidence
	sawFormat := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "value:"):
			sawFormat = true
			value = strings.TrimSpace(line[len("value:"):])
		case strings.HasPrefix(lower, "confidence:"):
			sawFormat = true
			if n, err := strconv.Atoi(strings.TrimSpace(line[len("confidence:"):])); err == nil {
				confidence = clampConfidence(float64(n))
			}
		}
	}

	if !sawFormat {
		value = strings.TrimSpace(raw)
	}
	if strings.EqualFold(value, notFoundMarker) {
		return "", 0
	}
	return value, confidence
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// Provenance tags recorded on each generated insight
const (
	SourceModel            = "openai-json"
	SourceFallback         = "metrics-fallback"
	SourceInsufficientData = "insufficient-data"
)

// Generator produces the structured analysis. The completion API gets one
// attempt; any failure along the remote path (call error, unparseable
// output, schema violation) substitutes the deterministic fallback. From the
// caller's point of view generation always succeeds.
type Generator struct {
	client    Client
	validator *SchemaValidator
	fallback  *FallbackGenerator
	logger    logging.Logger
}

// NewGenerator creates a Generator. A nil client disables the remote path
// entirely, leaving only the fallback.
func NewGenerator(client Client, logger logging.Logger) (*Generator, error) {
	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize schema validator: %w", err)
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Generator{
		client:    client,
		validator: validator,
		fallback:  NewFallbackGenerator(),
		logger:    logger.WithComponent("insight-generator"),
	}, nil
}

// Generate returns a schema-valid analysis plus its provenance tag.
func (g *Generator) Generate(ctx context.Context, collected *types.CollectedData, period types.Period, metrics types.MetricsSnapshot) (types.InsightPayload, string) {
	// Nothing to analyze: skip both the model call and the metrics-driven
	// fallback, neither would say anything meaningful.
	if collected == nil || collected.IsEmpty() {
		g.logger.InfoContext(ctx, "no activity in period, returning onboarding analysis",
			"period", string(period))
		return g.fallback.InsufficientData(), SourceInsufficientData
	}

	if g.client != nil {
		payload, err := g.remoteGenerate(ctx, collected, period, metrics)
		if err == nil {
			return payload, SourceModel
		}
		g.logger.WarnContext(ctx, "model generation failed, using deterministic fallback",
			"period", string(period), "error", err.Error())
	}

	return g.fallback.Generate(period, metrics, collected), SourceFallback
}

// remoteGenerate runs the single-attempt model path: prompt, call, parse,
// validate, decode.
func (g *Generator) remoteGenerate(ctx context.Context, collected *types.CollectedData, period types.Period, metrics types.MetricsSnapshot) (types.InsightPayload, error) {
	var payload types.InsightPayload

	resp, err := g.client.Complete(ctx, CompletionRequest{
		SystemMessage: systemMessage,
		Prompt:        BuildPrompt(period, metrics, collected),
		JSONMode:      true,
	})
	if err != nil {
		return payload, fmt.Errorf("completion call failed: %w", err)
	}

	doc, err := parseModelJSON(resp.Content)
	if err != nil {
		return payload, err
	}

	if err := g.validator.Validate(doc); err != nil {
		return payload, err
	}

	if err := decodePayload(doc, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// parseModelJSON parses the model's text output, tolerating the markdown
// code fences some models wrap around JSON even in constrained mode.
func parseModelJSON(content string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(content)
	if after, found := strings.CutPrefix(trimmed, "```json"); found {
		trimmed = after
	} else if after, found := strings.CutPrefix(trimmed, "```"); found {
		trimmed = after
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	return doc, nil
}

// decodePayload converts the validated document into the typed payload.
// Weak typing tolerates a model emitting "7.5" where a number belongs.
func decodePayload(doc map[string]interface{}, payload *types.InsightPayload) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           payload,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build payload decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return fmt.Errorf("failed to decode analysis payload: %w", err)
	}
	return nil
}

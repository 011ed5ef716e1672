package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL") // e.g., "gpt-4o"
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API Key from container secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI insight client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// GenerateInsights implements the Client interface.
func (o *OpenAIClient) GenerateInsights(ctx context.Context, summary datatypes.FinancialSummary) (*datatypes.AIInsights, error) {
	raw, err := o.complete(ctx, insightsPrompt(summary))
	if err != nil {
		return nil, err
	}
	var insights datatypes.AIInsights
	if err := decodeModelJSON(raw, &insights); err != nil {
		return nil, err
	}
	if err := insights.Validate(); err != nil {
		return nil, fmt.Errorf("insight response failed shape validation: %w", err)
	}
	return &insights, nil
}

// GenerateSavingsPlan implements the Client interface.
func (o *OpenAIClient) GenerateSavingsPlan(ctx context.Context, summary datatypes.FinancialSummary, goal datatypes.SavingsGoal) (*datatypes.SavingsPlan, error) {
	raw, err := o.complete(ctx, savingsPlanPrompt(summary, goal))
	if err != nil {
		return nil, err
	}
	var plan datatypes.SavingsPlan
	if err := decodeModelJSON(raw, &plan); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("savings plan response failed shape validation: %w", err)
	}
	return &plan, nil
}

func (o *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	slog.Debug("Requesting financial insights via OpenAI", "model", o.model)
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return "", wrapProviderError(err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices or empty content")
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	slog.Debug("Received insight response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// decodeModelJSON parses a model answer into out. Models occasionally wrap
// the object in a markdown fence even in JSON mode, so fences are stripped
// before decoding. Any decode failure is a transient model misbehavior, not a
// client error.
func decodeModelJSON(raw string, out any) error {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("malformed insight response: %w", err)
	}
	return nil
}

package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"tarot-reading/configs"
	"tarot-reading/internal/ports/output"
)

const defaultModel = "gemini-1.5-flash"

// Compile-time check to ensure GeminiClientAdapter implements ModelClient interface
var _ output.ModelClient = (*GeminiClientAdapter)(nil)

// GeminiClientAdapter struct - Output adapter for Google Gemini
type GeminiClientAdapter struct {
	apiKey       string
	model        string
	temperature  float32
	systemPrompt string
}

// NewGeminiClientAdapter builds the adapter. The API key falls back to GEMINI_API_KEY.
func NewGeminiClientAdapter(config configs.Gemini, systemPrompt string) (*GeminiClientAdapter, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	logrus.Infof("Gemini client adapter initialized with model: %s", model)

	return &GeminiClientAdapter{
		apiKey:       apiKey,
		model:        model,
		temperature:  config.Temperature,
		systemPrompt: strings.TrimSpace(systemPrompt),
	}, nil
}

// Generate returns the text of the first part of the first candidate
func (g *GeminiClientAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if g.temperature > 0 {
		model.SetTemperature(g.temperature)
	}
	if g.systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(g.systemPrompt)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	out := strings.TrimSpace(string(txt))
	if out == "" {
		return "", fmt.Errorf("empty content returned from Gemini")
	}
	return out, nil
}

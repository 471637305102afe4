package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/smart-evolve/grading-service/internal/config"
)

// Part is one piece of multimodal model input: either text or inline
// image bytes.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func ImagePart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// Generator abstracts the hosted model so the pipeline can be tested
// without network access.
type Generator interface {
	// Generate sends the parts to the model and returns the concatenated
	// text of the response. Temperature <= 0 means model default.
	Generate(ctx context.Context, parts []Part, temperature float32) (string, error)
}

// GeminiClient implements Generator against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

// Extracted pages and graded sheets both run with all harm categories
// disabled: exam answers routinely trip the default filters (biology,
// history, chemistry papers).
func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryHarassment,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return settings
}

func (g *GeminiClient) Generate(ctx context.Context, parts []Part, temperature float32) (string, error) {
	genaiParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			genaiParts = append(genaiParts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		} else {
			genaiParts = append(genaiParts, genai.NewPartFromText(p.Text))
		}
	}

	contents := []*genai.Content{genai.NewContentFromParts(genaiParts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		SafetySettings: safetySettings(),
	}
	if temperature > 0 {
		cfg.Temperature = genai.Ptr[float32](temperature)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		reason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("gemini returned no content (finish reason: %s)", reason)
	}

	return text, nil
}

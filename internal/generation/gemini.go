package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const systemInstruction = `You are an orthopaedic surgery attending preparing a medical student or junior resident for a case.
Given a short case description, produce:
- pimpQuestions: 5 to 10 questions an attending is likely to ask in the OR, ordered from basic to advanced.
- otherUsefulFacts: 3 to 8 short, high-yield facts (anatomy, classification, approach, complications).
Be concise and clinically accurate. Do not include patient identifiers.`

// contentGenerator is the slice of the GenAI SDK this package uses;
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator produces answers with Google's Gemini models, asking for a
// JSON response constrained by answerSchema.
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// NewGeminiGenerator creates a GenAI client for apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiGenerator(client.Models, model), nil
}

func newGeminiGenerator(models contentGenerator, model string) *GeminiGenerator {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{models: models, model: model}
}

func answerSchema() *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"pimpQuestions":    list("Questions an attending would ask about this case"),
			"otherUsefulFacts": list("Short high-yield facts relevant to this case"),
		},
		Required: []string{"pimpQuestions", "otherUsefulFacts"},
	}
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (domain.AnswerPayload, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    answerSchema(),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return domain.AnswerPayload{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return domain.AnswerPayload{}, ErrEmptyPayload
	}

	var out domain.AnswerPayload
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return domain.AnswerPayload{}, fmt.Errorf("decode GenAI response: %w", err)
	}
	return normalize(out)
}

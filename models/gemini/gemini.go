package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/draftsmith/draftsmith/models"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func init() {
	// Load .env file if it exists (not present in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// Gemini_Model implements models.Model against the Gemini API.
// The client reads GEMINI_API_KEY from the environment.
type Gemini_Model struct {
	Model string `json:"model"`

	clientOnce sync.Once
	client     *genai.Client
	clientErr  error
}

func (g *Gemini_Model) getClient(ctx context.Context) (*genai.Client, error) {
	g.clientOnce.Do(func() {
		g.client, g.clientErr = genai.NewClient(ctx, nil)
	})
	if g.clientErr != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", g.clientErr)
	}
	return g.client, nil
}

func (g *Gemini_Model) Model_Request(ctx context.Context, request models.Model_Request) (models.Model_Response, error) {
	if strings.TrimSpace(request.Prompt) == "" {
		return models.Model_Response{}, fmt.Errorf("request must contain a prompt")
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return models.Model_Response{}, err
	}

	modelToUse := g.Model
	if modelToUse == "" {
		modelToUse = "gemini-2.0-flash"
	}

	config := &genai.GenerateContentConfig{}
	if request.System != "" {
		config.SystemInstruction = genai.NewContentFromText(request.System, genai.RoleUser)
	}
	if request.ForceJSON {
		config.ResponseMIMEType = "application/json"
	}

	prompt := request.Prompt
	if request.Context != "" {
		prompt = fmt.Sprintf("Conversation so far:\n%s\n\n%s", request.Context, request.Prompt)
	}

	result, err := client.Models.GenerateContent(ctx, modelToUse, genai.Text(prompt), config)
	if err != nil {
		return models.Model_Response{}, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return models.Model_Response{}, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	return models.Model_Response{Text: text.String()}, nil
}

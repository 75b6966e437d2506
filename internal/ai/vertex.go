package ai

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// VertexClient is the Gemini-backed Completer.
type VertexClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexClient connects to Vertex AI and configures the generative
// model for deterministic JSON output.
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("creating vertex ai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	model.GenerationConfig.ResponseMIMEType = "application/json"

	return &VertexClient{client: client, model: model}, nil
}

func (v *VertexClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}
	return result, nil
}

func (v *VertexClient) Close() error {
	return v.client.Close()
}

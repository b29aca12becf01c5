package claude

import (
	"context"
	"fmt"
	"io"

	"github.com/liushuangls/go-anthropic/v2"

	"roomproof/internal/vision"
)

// 2048 tokens covers a densely furnished room (≈60 items at ~25 JSON tokens
// each) with headroom; the reply is structured JSON, not prose.
const maxTokens = 2048

type ClaudeAnalyzer struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewClaudeAnalyzer(apiKey, model string) *ClaudeAnalyzer {
	return &ClaudeAnalyzer{
		client: anthropic.NewClient(apiKey),
		model:  anthropic.Model(model),
	}
}

func (a *ClaudeAnalyzer) Analyze(ctx context.Context, r io.Reader, mimeType string) (*vision.AnalysisResult, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64,
						normaliseMIME(mimeType),
						imageData,
					)),
					anthropic.NewTextMessageContent(vision.AnalysisPrompt),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	var responseText string
	for _, content := range resp.Content {
		if text := content.GetText(); text != "" {
			responseText = text
			break
		}
	}

	return &vision.AnalysisResult{
		List:        vision.ParseResponse(responseText),
		RawResponse: responseText,
	}, nil
}

// normaliseMIME maps browser MIME types to the values the Anthropic API
// accepts (jpeg, png, gif, webp). Unknown types are coerced to jpeg as the
// most universally supported lossy fallback.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}

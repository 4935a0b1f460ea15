package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/gen"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

// maxContentChars truncates post bodies before prompting.
const maxContentChars = 15000

const analyzeSystem = "You are an expert B2B content analyst. Respond with " +
	"a single JSON object with \"description\" (one crisp sentence naming " +
	"the problem the article solves) and \"persona\" (the primary target " +
	"persona) string fields. No prose outside the JSON."

const analyzePrompt = `TARGET PERSONAS: CMO / VP Marketing, VP Demand Generation, Head of Marketing Ops, Head of Performance Marketing.

ANALYZE THE FOLLOWING BLOG POST:
Title: %q
Content: %q`

// Analysis is the model's summary of one post.
type Analysis struct {
	Description string `json:"description"`
	Persona     string `json:"persona"`
}

// Analyze summarizes a post into a description and target persona.
func Analyze(ctx context.Context, client anthropic.Client, model string, maxTokens int64, post *Post) (*Analysis, error) {
	content := post.Content
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    analyzeSystem,
		Prompt:    fmt.Sprintf(analyzePrompt, post.Title, content),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: analyze %s", post.URL)
	}

	payload, ok := gen.ExtractJSON(resp.Text)
	if !ok {
		return nil, eris.Errorf("catalog: no JSON in analysis of %s", post.URL)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, eris.Wrapf(err, "catalog: unmarshal analysis of %s", post.URL)
	}
	if a.Description == "" {
		return nil, eris.Errorf("catalog: empty description for %s", post.URL)
	}
	if a.Persona == "" {
		a.Persona = "N/A"
	}
	return &a, nil
}

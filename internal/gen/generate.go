// Package gen invokes the generation model and coerces its output into a
// three-step email sequence.
package gen

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

const systemPrompt = "You are an expert B2B outbound copywriter. " +
	"Respond with a single JSON array of exactly 3 objects, each with " +
	"\"subject\" and \"body\" string fields. No prose outside the JSON."

// DefaultTemplate is used when the operator has not configured
// MESSAGE_PROMPT_TEMPLATE.
const DefaultTemplate = `Write a 3-step outbound email sequence.

Recipient: {contact_name}, {contact_title} at {company_name} ({company_domain}).
Pipeline stage: {contact_stage}.
Recent contact activity: {contact_story}
Recent account activity: {account_story}
Sender: {sender_name}

Relevant content to reference where it fits the recipient's persona:
{content_library}

Each email must be under 120 words, reference the recipient's observed
activity, and end with a low-friction ask.`

// Sequence holds one generation outcome: the parsed drafts on success, or
// the raw model text for operator diagnosis on parse failure.
type Sequence struct {
	Drafts [SequenceLen]model.EmailDraft
	Raw    string
}

// Generate renders a completed prompt through the model and parses the
// response. A transport failure returns an error; a parse failure returns
// the raw text with ok=false so the caller can record both marker and raw
// response without failing the row batch differently.
func Generate(ctx context.Context, client anthropic.Client, modelID string, maxTokens int64, prompt string) (Sequence, bool, error) {
	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     modelID,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Prompt:    prompt,
	})
	if err != nil {
		return Sequence{}, false, eris.Wrap(err, "gen: create message")
	}
	resp.Usage.LogUsage(modelID, "generate")

	drafts, err := ParseSequence(resp.Text)
	if err != nil {
		return Sequence{Raw: resp.Text}, false, nil
	}
	return Sequence{Drafts: drafts, Raw: resp.Text}, true, nil
}

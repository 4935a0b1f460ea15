package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/sells-group/prospect-cli/internal/gen"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/prompt"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/internal/step"
)

// GenerateMessages renders a prompt per selected contact and asks the
// model for a 3-step sequence. Parsed drafts land in the six email cells
// plus the gem cells (first touch); a response that won't parse leaves the
// error marker and the raw model text for diagnosis.
func (p *Pipeline) GenerateMessages(ctx context.Context) (step.Summary, error) {
	accounts, err := p.accountsByDomain()
	if err != nil {
		return step.Summary{}, err
	}
	senders, err := p.senderIdentities()
	if err != nil {
		return step.Summary{}, err
	}
	catalog, err := p.contentLibrary()
	if err != nil {
		return step.Summary{}, err
	}
	template := p.settings.GetDefault(settings.KeyMessagePromptTmpl, gen.DefaultTemplate)

	return step.Run(ctx, p.store, step.Step{
		Name:    "generate",
		Table:   model.ContactsSheet,
		Columns: model.ContactColumns,
		Selected: func(row []string) bool {
			return model.ContactFromRow(row).Selected
		},
		Pending: func(row []string) bool {
			c := model.ContactFromRow(row)
			return strings.TrimSpace(c.Emails[0].Subject) == "" && strings.TrimSpace(c.GemSubject) == ""
		},
		Process: func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error) {
			c := model.ContactFromRow(row)
			acct := accounts[c.Domain]
			sender := senders[strings.ToLower(acct.OwnerEmail)]

			rendered := prompt.Render(template, prompt.Vars(c, acct, sender, catalog))

			seq, ok, err := gen.Generate(ctx, p.ai, p.cfg.Anthropic.Model, p.cfg.Anthropic.MaxTokens, rendered)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &parseFailure{raw: seq.Raw}
			}

			return []sheet.CellWrite{
				{Row: idx, Col: model.ConGemSubject, Value: seq.Drafts[0].Subject},
				{Row: idx, Col: model.ConGemBody, Value: seq.Drafts[0].Body},
				{Row: idx, Col: model.ConEmail1Subject, Value: seq.Drafts[0].Subject},
				{Row: idx, Col: model.ConEmail1Body, Value: seq.Drafts[0].Body},
				{Row: idx, Col: model.ConEmail2Subject, Value: seq.Drafts[1].Subject},
				{Row: idx, Col: model.ConEmail2Body, Value: seq.Drafts[1].Body},
				{Row: idx, Col: model.ConEmail3Subject, Value: seq.Drafts[2].Subject},
				{Row: idx, Col: model.ConEmail3Body, Value: seq.Drafts[2].Body},
			}, nil
		},
		OnError: func(idx int, row []string, err error) []sheet.CellWrite {
			// A shape failure preserves the raw model text verbatim so
			// the operator can see what came back; transport failures
			// record the error instead.
			body := errorCell(err)
			var pf *parseFailure
			if errors.As(err, &pf) {
				body = pf.raw
			}
			return []sheet.CellWrite{
				{Row: idx, Col: model.ConGemSubject, Value: gen.ParseErrorMarker},
				{Row: idx, Col: model.ConGemBody, Value: body},
			}
		},
	})
}

// parseFailure carries the raw model output of a response that failed
// shape validation.
type parseFailure struct {
	raw string
}

func (e *parseFailure) Error() string {
	return "generation response failed to parse"
}

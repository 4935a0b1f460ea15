package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/prospect-cli/internal/gen"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/internal/step"
)

// PushMessages writes each selected contact's generated message into its
// Apollo custom fields. Outcomes append to the row's status log; a row
// that already carries apollo_pushed is skipped.
func (p *Pipeline) PushMessages(ctx context.Context) (step.Summary, error) {
	subjectField, err := p.fieldID(settings.KeyApolloSubjectField, p.cfg.Apollo.SubjectFieldID)
	if err != nil {
		return step.Summary{}, err
	}
	bodyField, err := p.fieldID(settings.KeyApolloBodyField, p.cfg.Apollo.BodyFieldID)
	if err != nil {
		return step.Summary{}, err
	}

	return step.Run(ctx, p.store, step.Step{
		Name:    "push",
		Table:   model.ContactsSheet,
		Columns: model.ContactColumns,
		Selected: func(row []string) bool {
			c := model.ContactFromRow(row)
			return c.Selected && c.ApolloID != "" && hasDraft(c)
		},
		Pending: func(row []string) bool {
			return !model.ContactFromRow(row).Status.Has(model.StatusApolloPushed)
		},
		Process: func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error) {
			c := model.ContactFromRow(row)

			err := p.apollo.UpdateContactFields(ctx, c.ApolloID, map[string]string{
				subjectField: c.GemSubject,
				bodyField:    c.GemBody,
			})
			if err != nil {
				return nil, err
			}

			c.Status.Append(model.StatusApolloPushed)
			return []sheet.CellWrite{{Row: idx, Col: model.ConStatus, Value: c.Status.String()}}, nil
		},
		OnError: func(idx int, row []string, err error) []sheet.CellWrite {
			c := model.ContactFromRow(row)
			c.Status.AppendDetail(model.StatusPushFailed, err.Error())
			return []sheet.CellWrite{{Row: idx, Col: model.ConStatus, Value: c.Status.String()}}
		},
	})
}

// hasDraft reports whether the row holds a pushable generated message, as
// opposed to nothing or a recorded generation error.
func hasDraft(c model.Contact) bool {
	subj := strings.TrimSpace(c.GemSubject)
	return subj != "" && subj != gen.ParseErrorMarker
}

// fieldID resolves an Apollo custom field id from settings, falling back
// to the static config value.
func (p *Pipeline) fieldID(key, fallback string) (string, error) {
	if fallback != "" {
		return p.settings.GetDefault(key, fallback), nil
	}
	return p.settings.Get(key)
}

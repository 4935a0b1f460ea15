package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/internal/step"
)

// DiscoverContacts runs the contact resolver for every selected account
// and appends genuinely new contacts to the Contacts sheet. Discovery has
// no done-marker; re-runs are idempotent because resolved candidates
// dedup against the rows already present.
func (p *Pipeline) DiscoverContacts(ctx context.Context) (step.Summary, error) {
	stages, err := p.apollo.ListStages(ctx)
	if err != nil {
		return step.Summary{}, eris.Wrap(err, "contacts: list stages")
	}

	existing, err := p.contactKeys()
	if err != nil {
		return step.Summary{}, eris.Wrap(err, "contacts: load existing")
	}

	return step.Run(ctx, p.store, step.Step{
		Name:    "contacts",
		Table:   model.AccountsSheet,
		Columns: model.AccountColumns,
		Selected: func(row []string) bool {
			a := model.AccountFromRow(row)
			return a.Selected && a.Domain != ""
		},
		Process: func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error) {
			acct := model.AccountFromRow(row)

			found, err := p.resolveContacts(ctx, acct, stages, existing)
			if err != nil {
				return nil, err
			}

			rows := make([][]string, len(found))
			for i, c := range found {
				rows[i] = c.Row()
				existing[c.DedupKey()] = true
			}
			if len(rows) > 0 {
				if err := p.store.AppendRows(model.ContactsSheet, rows); err != nil {
					return nil, eris.Wrapf(err, "contacts: append for %s", acct.Domain)
				}
			}
			return nil, nil
		},
	})
}

package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/internal/step"
)

// EnrichAccounts fills the account story column from the warehouse for
// selected accounts that don't have one yet. A failed query writes an
// error text into the story cell for that account only.
func (p *Pipeline) EnrichAccounts(ctx context.Context) (step.Summary, error) {
	project, err := p.settings.Get(settings.KeyGCPProject)
	if err != nil {
		return step.Summary{}, err
	}
	query, err := p.settings.Get(settings.KeyAccountStoryQuery)
	if err != nil {
		return step.Summary{}, err
	}

	return step.Run(ctx, p.store, step.Step{
		Name:    "enrich-accounts",
		Table:   model.AccountsSheet,
		Columns: model.AccountColumns,
		Selected: func(row []string) bool {
			a := model.AccountFromRow(row)
			return a.Selected && a.HubSpotID != ""
		},
		Pending: func(row []string) bool {
			return strings.TrimSpace(model.AccountFromRow(row).Story) == ""
		},
		Process: func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error) {
			a := model.AccountFromRow(row)
			story, err := p.bigquery.Story(ctx, project, query, "companyId", "hubspot-"+a.HubSpotID)
			if err != nil {
				return nil, err
			}
			return []sheet.CellWrite{{Row: idx, Col: model.AccStory, Value: story}}, nil
		},
		OnError: func(idx int, row []string, err error) []sheet.CellWrite {
			return []sheet.CellWrite{{Row: idx, Col: model.AccStory, Value: errorCell(err)}}
		},
	})
}

// EnrichContacts fills the contact journey column from the warehouse for
// selected contacts with a CRM contact id and no story yet.
func (p *Pipeline) EnrichContacts(ctx context.Context) (step.Summary, error) {
	project, err := p.settings.Get(settings.KeyGCPProject)
	if err != nil {
		return step.Summary{}, err
	}
	query, err := p.settings.Get(settings.KeyContactStoryQuery)
	if err != nil {
		return step.Summary{}, err
	}

	return step.Run(ctx, p.store, step.Step{
		Name:    "enrich-contacts",
		Table:   model.ContactsSheet,
		Columns: model.ContactColumns,
		Selected: func(row []string) bool {
			c := model.ContactFromRow(row)
			return c.Selected && c.HubSpotID != ""
		},
		Pending: func(row []string) bool {
			return strings.TrimSpace(model.ContactFromRow(row).Story) == ""
		},
		Process: func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error) {
			c := model.ContactFromRow(row)
			story, err := p.bigquery.Story(ctx, project, query, "hubspotContactId", c.HubSpotID)
			if err != nil {
				return nil, err
			}
			return []sheet.CellWrite{{Row: idx, Col: model.ConStory, Value: story}}, nil
		},
		OnError: func(idx int, row []string, err error) []sheet.CellWrite {
			return []sheet.CellWrite{{Row: idx, Col: model.ConStory, Value: errorCell(err)}}
		},
	})
}

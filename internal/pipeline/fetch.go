package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/step"
)

// FetchAccounts pulls every CRM company whose marker property is set and
// upserts it into the Accounts sheet by HubSpot id. Operator-owned columns
// (selected, account story) are never touched on refresh.
func (p *Pipeline) FetchAccounts(ctx context.Context) (step.Summary, error) {
	log := zap.L().With(zap.String("step", "fetch"))

	if err := p.store.EnsureHeader(model.AccountsSheet, model.AccountColumns); err != nil {
		return step.Summary{}, err
	}
	rows, err := p.store.ReadRows(model.AccountsSheet, len(model.AccountColumns))
	if err != nil {
		return step.Summary{}, eris.Wrap(err, "fetch: read accounts")
	}

	// Row index per HubSpot id for upserts.
	byID := make(map[string]int, len(rows))
	for idx, row := range rows {
		a := model.AccountFromRow(row)
		if a.HubSpotID != "" {
			byID[a.HubSpotID] = idx
		}
	}

	ownerEmails := map[string]string{}
	resolveOwner := func(ownerID string) string {
		if ownerID == "" {
			return ""
		}
		if email, ok := ownerEmails[ownerID]; ok {
			return email
		}
		email, err := p.hubspot.OwnerEmail(ctx, ownerID)
		if err != nil {
			log.Warn("owner lookup failed", zap.String("owner_id", ownerID), zap.Error(err))
			email = ""
		}
		ownerEmails[ownerID] = email
		return email
	}

	var sum step.Summary
	after := ""
	for {
		page, err := p.hubspot.SearchMarkedCompanies(ctx, p.cfg.HubSpot.MarkerProperty, after, p.cfg.HubSpot.PageSize)
		if err != nil {
			return sum, eris.Wrap(err, "fetch: search companies")
		}

		for _, company := range page.Companies {
			fetched := model.Account{
				HubSpotID:  company.ID,
				Name:       company.Name,
				Domain:     model.NormalizeDomain(company.Domain),
				Sessions7:  company.Sessions7,
				Sessions30: company.Sessions30,
				OwnerEmail: resolveOwner(company.OwnerID),
			}

			if idx, ok := byID[company.ID]; ok {
				existing := model.AccountFromRow(rows[idx])
				fetched.Selected = existing.Selected
				fetched.Story = existing.Story
				if err := p.store.WriteRow(model.AccountsSheet, idx, fetched.Row()); err != nil {
					return sum, eris.Wrapf(err, "fetch: update account %s", company.ID)
				}
			} else {
				if err := p.store.AppendRows(model.AccountsSheet, [][]string{fetched.Row()}); err != nil {
					return sum, eris.Wrapf(err, "fetch: append account %s", company.ID)
				}
				byID[company.ID] = len(rows)
				rows = append(rows, fetched.Row())
			}
			sum.Processed++
		}

		if page.After == "" {
			break
		}
		after = page.After
	}

	log.Info("step complete", zap.Int("processed", sum.Processed))
	return sum, nil
}

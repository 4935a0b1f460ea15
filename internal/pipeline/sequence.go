package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/internal/step"
)

// SequenceContacts enrolls each selected, pushed contact in the outreach
// sequence, sending from the mailbox mapped to the account owner. Rows
// already carrying apollo_sequenced are skipped; failures append
// sequence_failed with the reason.
func (p *Pipeline) SequenceContacts(ctx context.Context) (step.Summary, error) {
	sequenceID, err := p.fieldID(settings.KeyApolloSequenceID, p.cfg.Apollo.SequenceID)
	if err != nil {
		return step.Summary{}, err
	}

	accounts, err := p.accountsByDomain()
	if err != nil {
		return step.Summary{}, err
	}
	senders, err := p.senderIdentities()
	if err != nil {
		return step.Summary{}, err
	}

	return step.Run(ctx, p.store, step.Step{
		Name:    "sequence",
		Table:   model.ContactsSheet,
		Columns: model.ContactColumns,
		Selected: func(row []string) bool {
			c := model.ContactFromRow(row)
			return c.Selected && c.ApolloID != ""
		},
		Pending: func(row []string) bool {
			return !model.ContactFromRow(row).Status.Has(model.StatusApolloSequenced)
		},
		Process: func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error) {
			c := model.ContactFromRow(row)

			mailboxID, err := p.mailboxFor(accounts[c.Domain], senders)
			if err != nil {
				return nil, err
			}

			if err := p.apollo.AddToSequence(ctx, sequenceID, mailboxID, []string{c.ApolloID}); err != nil {
				return nil, err
			}

			c.Status.Append(model.StatusApolloSequenced)
			return []sheet.CellWrite{{Row: idx, Col: model.ConStatus, Value: c.Status.String()}}, nil
		},
		OnError: func(idx int, row []string, err error) []sheet.CellWrite {
			c := model.ContactFromRow(row)
			c.Status.AppendDetail(model.StatusSequenceFailed, err.Error())
			return []sheet.CellWrite{{Row: idx, Col: model.ConStatus, Value: c.Status.String()}}
		},
	})
}

// mailboxFor picks the sending mailbox for an account owner, falling back
// to the configured default mailbox when the owner has no mapping.
func (p *Pipeline) mailboxFor(acct model.Account, senders map[string]model.SenderIdentity) (string, error) {
	owner := strings.ToLower(strings.TrimSpace(acct.OwnerEmail))
	if s, ok := senders[owner]; ok && s.MailboxID != "" {
		return s.MailboxID, nil
	}
	if p.cfg.Apollo.DefaultMailboxID != "" {
		return p.cfg.Apollo.DefaultMailboxID, nil
	}
	return "", eris.Errorf("no mailbox mapped for owner %q and no default configured", acct.OwnerEmail)
}

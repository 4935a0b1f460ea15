// Package pipeline defines the prospecting workflow steps. Each step is an
// independently triggered batch over one workbook sheet, idempotent via
// row status, and safe to re-run after a partial failure.
package pipeline

import (
	"strings"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/apollo"
	"github.com/sells-group/prospect-cli/pkg/bigquery"
	"github.com/sells-group/prospect-cli/pkg/hubspot"
)

// Pipeline holds the dependencies shared by every step.
type Pipeline struct {
	cfg      *config.Config
	store    sheet.Store
	settings *settings.Resolver
	hubspot  hubspot.Client
	apollo   apollo.Client
	bigquery bigquery.Client
	ai       anthropic.Client
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	store sheet.Store,
	resolver *settings.Resolver,
	hsClient hubspot.Client,
	apClient apollo.Client,
	bqClient bigquery.Client,
	aiClient anthropic.Client,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		settings: resolver,
		hubspot:  hsClient,
		apollo:   apClient,
		bigquery: bqClient,
		ai:       aiClient,
	}
}

// accountsByDomain loads the Accounts sheet keyed by normalized domain.
func (p *Pipeline) accountsByDomain() (map[string]model.Account, error) {
	if err := p.store.EnsureHeader(model.AccountsSheet, model.AccountColumns); err != nil {
		return nil, err
	}
	rows, err := p.store.ReadRows(model.AccountsSheet, len(model.AccountColumns))
	if err != nil {
		return nil, err
	}
	accounts := make(map[string]model.Account, len(rows))
	for _, row := range rows {
		a := model.AccountFromRow(row)
		if a.Domain != "" {
			accounts[a.Domain] = a
		}
	}
	return accounts, nil
}

// senderIdentities loads the Mailbox Mapping sheet keyed by owner email.
func (p *Pipeline) senderIdentities() (map[string]model.SenderIdentity, error) {
	if err := p.store.EnsureHeader(model.MailboxMapSheet, model.MailboxColumns); err != nil {
		return nil, err
	}
	rows, err := p.store.ReadRows(model.MailboxMapSheet, len(model.MailboxColumns))
	if err != nil {
		return nil, err
	}
	senders := make(map[string]model.SenderIdentity, len(rows))
	for _, row := range rows {
		s := model.SenderIdentityFromRow(row)
		if s.OwnerEmail != "" {
			senders[s.OwnerEmail] = s
		}
	}
	return senders, nil
}

// contentLibrary loads the Content Library sheet.
func (p *Pipeline) contentLibrary() ([]model.ContentItem, error) {
	if err := p.store.EnsureHeader(model.ContentSheet, model.ContentColumns); err != nil {
		return nil, err
	}
	rows, err := p.store.ReadRows(model.ContentSheet, len(model.ContentColumns))
	if err != nil {
		return nil, err
	}
	items := make([]model.ContentItem, 0, len(rows))
	for _, row := range rows {
		item := model.ContentItemFromRow(row)
		if item.URL != "" {
			items = append(items, item)
		}
	}
	return items, nil
}

// contactKeys loads the dedup keys of every persisted contact.
func (p *Pipeline) contactKeys() (map[string]bool, error) {
	if err := p.store.EnsureHeader(model.ContactsSheet, model.ContactColumns); err != nil {
		return nil, err
	}
	rows, err := p.store.ReadRows(model.ContactsSheet, len(model.ContactColumns))
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(rows))
	for _, row := range rows {
		keys[model.ContactFromRow(row).DedupKey()] = true
	}
	return keys, nil
}

func errorCell(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return "Error: " + msg
}

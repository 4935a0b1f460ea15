package pipeline

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/apollo"
	"github.com/sells-group/prospect-cli/pkg/bigquery"
	"github.com/sells-group/prospect-cli/pkg/hubspot"
)

// memStore is an in-memory sheet.Store holding multiple named tables.
type memStore struct {
	headers map[string][]string
	tables  map[string][][]string
}

func newMemStore() *memStore {
	return &memStore{
		headers: map[string][]string{},
		tables:  map[string][][]string{},
	}
}

func (m *memStore) EnsureHeader(table string, want []string) error {
	if _, ok := m.headers[table]; !ok {
		m.headers[table] = want
	}
	return nil
}

func (m *memStore) ReadRows(table string, colCount int) ([][]string, error) {
	rows := m.tables[table]
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, colCount)
		copy(padded, row)
		out[i] = padded
	}
	return out, nil
}

func (m *memStore) WriteCell(table string, row, col int, value string) error {
	for len(m.tables[table][row]) <= col {
		m.tables[table][row] = append(m.tables[table][row], "")
	}
	m.tables[table][row][col] = value
	return nil
}

func (m *memStore) WriteRow(table string, row int, cells []string) error {
	m.tables[table][row] = cells
	return nil
}

func (m *memStore) AppendRows(table string, rows [][]string) error {
	m.tables[table] = append(m.tables[table], rows...)
	return nil
}

func (m *memStore) Clear(table string) error {
	delete(m.headers, table)
	delete(m.tables, table)
	return nil
}

func (m *memStore) Flush() error { return nil }
func (m *memStore) Close() error { return nil }

func (m *memStore) contact(row int) model.Contact {
	return model.ContactFromRow(m.tables[model.ContactsSheet][row])
}

func (m *memStore) account(row int) model.Account {
	return model.AccountFromRow(m.tables[model.AccountsSheet][row])
}

// testSettings is a single-tier provider for pipeline tests.
type testSettings map[string]string

func (t testSettings) Name() string { return "test" }

func (t testSettings) Lookup(key string) (string, bool, error) {
	val, ok := t[key]
	return val, ok, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Apollo: config.ApolloConfig{
			MaxPerAccount:      5,
			PlaceholderAddress: "email_not_unlocked@domain.com",
		},
		HubSpot: config.HubSpotConfig{
			MarkerProperty: "prospecting_selected",
			PageSize:       100,
		},
		Anthropic: config.AnthropicConfig{
			Model:     "model-x",
			MaxTokens: 2048,
		},
	}
}

func newTestPipeline(cfg *config.Config, store *memStore, vals testSettings,
	hs hubspot.Client, ap apollo.Client, bq bigquery.Client, ai anthropic.Client) *Pipeline {
	if cfg == nil {
		cfg = testConfig()
	}
	return New(cfg, store, settings.NewResolver(vals), hs, ap, bq, ai)
}

// fakeApollo implements apollo.Client with programmable responses.
type fakeApollo struct {
	pages        map[string][]*apollo.MixedPage // keyed by domain or org id
	orgs         []apollo.Organization
	orgCalls     int
	enriched     map[string]*apollo.Person
	enrichErr    error
	created      []apollo.Person
	createErr    error
	stages       map[string]string
	mailboxes    []apollo.Mailbox
	fieldUpdates map[string]map[string]string
	updateErr    error
	sequenced    [][]string // sequenceID, mailboxID, contactID per call
	sequenceErr  error
}

func newFakeApollo() *fakeApollo {
	return &fakeApollo{
		pages:        map[string][]*apollo.MixedPage{},
		enriched:     map[string]*apollo.Person{},
		stages:       map[string]string{},
		fieldUpdates: map[string]map[string]string{},
	}
}

func (f *fakeApollo) SearchMixed(ctx context.Context, q apollo.MixedQuery) (*apollo.MixedPage, error) {
	key := q.Domain
	if key == "" {
		key = q.OrgID
	}
	pages := f.pages[key]
	if q.Page < 1 || q.Page > len(pages) {
		return &apollo.MixedPage{Page: q.Page, TotalPages: len(pages)}, nil
	}
	page := pages[q.Page-1]
	page.Page = q.Page
	page.TotalPages = len(pages)
	return page, nil
}

func (f *fakeApollo) SearchOrganizations(ctx context.Context, name string) ([]apollo.Organization, error) {
	f.orgCalls++
	return f.orgs, nil
}

func (f *fakeApollo) EnrichPerson(ctx context.Context, personID string) (*apollo.Person, error) {
	if f.enrichErr != nil {
		return nil, f.enrichErr
	}
	if p, ok := f.enriched[personID]; ok {
		return p, nil
	}
	return &apollo.Person{ID: personID}, nil
}

func (f *fakeApollo) CreateContact(ctx context.Context, p apollo.Person) (*apollo.Person, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	saved := p
	saved.ID = "saved-" + p.ID
	return &saved, nil
}

func (f *fakeApollo) ListMailboxes(ctx context.Context) ([]apollo.Mailbox, error) {
	return f.mailboxes, nil
}

func (f *fakeApollo) ListStages(ctx context.Context) (map[string]string, error) {
	return f.stages, nil
}

func (f *fakeApollo) UpdateContactFields(ctx context.Context, contactID string, fields map[string]string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.fieldUpdates[contactID] = fields
	return nil
}

func (f *fakeApollo) AddToSequence(ctx context.Context, sequenceID, mailboxID string, contactIDs []string) error {
	if f.sequenceErr != nil {
		return f.sequenceErr
	}
	for _, id := range contactIDs {
		f.sequenced = append(f.sequenced, []string{sequenceID, mailboxID, id})
	}
	return nil
}

// fakeHubSpot implements hubspot.Client over static pages.
type fakeHubSpot struct {
	pages  []*hubspot.CompanyPage
	owners map[string]string
}

func (f *fakeHubSpot) SearchMarkedCompanies(ctx context.Context, markerProperty, after string, limit int) (*hubspot.CompanyPage, error) {
	idx := 0
	if after != "" {
		for i := range f.pages {
			if f.pages[i].After == after {
				idx = i + 1
				break
			}
		}
	}
	if idx >= len(f.pages) {
		return &hubspot.CompanyPage{}, nil
	}
	return f.pages[idx], nil
}

func (f *fakeHubSpot) OwnerEmail(ctx context.Context, ownerID string) (string, error) {
	return f.owners[ownerID], nil
}

// fakeBigQuery returns canned stories per parameter value.
type fakeBigQuery struct {
	stories map[string]string
	err     error
	calls   int
}

func (f *fakeBigQuery) Story(ctx context.Context, projectID, query, paramName, paramValue string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if story, ok := f.stories[paramValue]; ok {
		return story, nil
	}
	return bigquery.NoEventsStory, nil
}

// fakeAI returns a fixed model response.
type fakeAI struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{Text: f.text}, nil
}

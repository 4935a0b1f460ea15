package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/gen"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/step"
)

const modelArray = `[
	{"subject": "s1", "body": "b1"},
	{"subject": "s2", "body": "b2"},
	{"subject": "s3", "body": "b3"}
]`

func seedGenerateSheets(store *memStore) {
	store.EnsureHeader(model.AccountsSheet, model.AccountColumns)
	store.AppendRows(model.AccountsSheet, [][]string{
		model.Account{
			Selected: true, HubSpotID: "1", Name: "Acme Inc", Domain: "acme.com",
			OwnerEmail: "Rep@Sells.Group", Story: "Busy account.",
		}.Row(),
	})
	store.EnsureHeader(model.MailboxMapSheet, model.MailboxColumns)
	store.AppendRows(model.MailboxMapSheet, [][]string{
		{"rep@sells.group", "mb-1", "Alex Rep"},
	})
	store.EnsureHeader(model.ContentSheet, model.ContentColumns)
	store.AppendRows(model.ContentSheet, [][]string{
		{"https://x.com/a", "Guide", "How to", "Ops"},
	})
}

func TestGenerateMessagesWritesDrafts(t *testing.T) {
	store := newMemStore()
	seedGenerateSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "acme.com", Name: "Jordan", ApolloID: "a1"}.Row(),
	})

	ai := &fakeAI{text: modelArray}
	p := newTestPipeline(nil, store, testSettings{}, nil, nil, nil, ai)

	sum, err := p.GenerateMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.Summary{Processed: 1}, sum)

	c := store.contact(0)
	assert.Equal(t, "s1", c.GemSubject)
	assert.Equal(t, "b1", c.GemBody)
	assert.Equal(t, "s1", c.Emails[0].Subject, "the gem mirrors email one")
	assert.Equal(t, "b2", c.Emails[1].Body)
	assert.Equal(t, "s3", c.Emails[2].Subject)
}

func TestGenerateMessagesPromptContext(t *testing.T) {
	store := newMemStore()
	seedGenerateSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "acme.com", Name: "Jordan", Title: "VP Ops"}.Row(),
	})

	ai := &fakeAI{text: modelArray}
	p := newTestPipeline(nil, store, testSettings{
		settings.KeyMessagePromptTmpl: "To {contact_name} at {company_name}, from {sender_name}. Assets: {content_library}",
	}, nil, nil, nil, ai)

	_, err := p.GenerateMessages(context.Background())
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	assert.Equal(t, "To Jordan at Acme Inc, from Alex Rep. Assets: 1. Guide (https://x.com/a) - How to [for: Ops]", ai.prompts[0])
}

func TestGenerateMessagesParseFailureKeepsRawText(t *testing.T) {
	store := newMemStore()
	seedGenerateSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "acme.com"}.Row(),
	})

	ai := &fakeAI{text: "Sorry, I'd rather write a haiku."}
	p := newTestPipeline(nil, store, testSettings{}, nil, nil, nil, ai)

	sum, err := p.GenerateMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)

	c := store.contact(0)
	assert.Equal(t, gen.ParseErrorMarker, c.GemSubject)
	assert.Equal(t, "Sorry, I'd rather write a haiku.", c.GemBody,
		"the raw model text is preserved verbatim for diagnosis")
	assert.Empty(t, c.Emails[0].Subject)
}

func TestGenerateMessagesTransportFailure(t *testing.T) {
	store := newMemStore()
	seedGenerateSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "acme.com"}.Row(),
	})

	ai := &fakeAI{err: fmt.Errorf("api unreachable")}
	p := newTestPipeline(nil, store, testSettings{}, nil, nil, nil, ai)

	sum, err := p.GenerateMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)

	c := store.contact(0)
	assert.Equal(t, gen.ParseErrorMarker, c.GemSubject)
	assert.Contains(t, c.GemBody, "Error: ", "transport errors record the error, not raw text")
}

func TestGenerateMessagesSkipsDrafted(t *testing.T) {
	store := newMemStore()
	seedGenerateSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)

	drafted := model.Contact{Selected: true, Domain: "acme.com", GemSubject: "already here"}
	errored := model.Contact{Selected: true, Domain: "acme.com", GemSubject: gen.ParseErrorMarker}
	fresh := model.Contact{Selected: true, Domain: "acme.com"}
	store.AppendRows(model.ContactsSheet, [][]string{drafted.Row(), errored.Row(), fresh.Row()})

	ai := &fakeAI{text: modelArray}
	p := newTestPipeline(nil, store, testSettings{}, nil, nil, nil, ai)

	sum, err := p.GenerateMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.Summary{Processed: 1, Skipped: 2}, sum,
		"a recorded parse error also counts as drafted until the operator clears it")
	assert.Equal(t, "already here", store.contact(0).GemSubject)
	assert.Len(t, ai.prompts, 1)
}

func TestGenerateMessagesUnknownDomainUsesDefaults(t *testing.T) {
	store := newMemStore()
	seedGenerateSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "nowhere.com", Name: "Sam"}.Row(),
	})

	ai := &fakeAI{text: modelArray}
	p := newTestPipeline(nil, store, testSettings{
		settings.KeyMessagePromptTmpl: "{company_name} / {account_story} / {sender_name}",
	}, nil, nil, nil, ai)

	_, err := p.GenerateMessages(context.Background())
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	assert.Equal(t, "nowhere.com / No account activity available. / ", ai.prompts[0])
}

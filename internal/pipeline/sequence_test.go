package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/step"
)

var sequenceSettings = testSettings{
	settings.KeyApolloSequenceID: "seq-1",
}

func seedSequenceSheets(store *memStore) {
	store.EnsureHeader(model.AccountsSheet, model.AccountColumns)
	store.AppendRows(model.AccountsSheet, [][]string{
		model.Account{Selected: true, HubSpotID: "1", Domain: "acme.com", OwnerEmail: "rep@sells.group"}.Row(),
	})
	store.EnsureHeader(model.MailboxMapSheet, model.MailboxColumns)
	store.AppendRows(model.MailboxMapSheet, [][]string{
		{"rep@sells.group", "mb-1", "Alex Rep"},
	})
}

func TestSequenceContacts(t *testing.T) {
	store := newMemStore()
	seedSequenceSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "acme.com", ApolloID: "a1"}.Row(),
	})

	ap := newFakeApollo()
	p := newTestPipeline(nil, store, sequenceSettings, nil, ap, nil, nil)

	sum, err := p.SequenceContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.Summary{Processed: 1}, sum)

	require.Len(t, ap.sequenced, 1)
	assert.Equal(t, []string{"seq-1", "mb-1", "a1"}, ap.sequenced[0])
	assert.True(t, store.contact(0).Status.Has(model.StatusApolloSequenced))
}

func TestSequenceContactsSkipsSequenced(t *testing.T) {
	store := newMemStore()
	seedSequenceSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	done := model.Contact{Selected: true, Domain: "acme.com", ApolloID: "a1"}
	done.Status.Append(model.StatusApolloSequenced)
	store.AppendRows(model.ContactsSheet, [][]string{done.Row()})

	ap := newFakeApollo()
	p := newTestPipeline(nil, store, sequenceSettings, nil, ap, nil, nil)

	sum, err := p.SequenceContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.Summary{Skipped: 1}, sum)
	assert.Empty(t, ap.sequenced)
}

func TestSequenceContactsDefaultMailbox(t *testing.T) {
	store := newMemStore()
	store.EnsureHeader(model.AccountsSheet, model.AccountColumns)
	store.EnsureHeader(model.MailboxMapSheet, model.MailboxColumns)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "unmapped.com", ApolloID: "a1"}.Row(),
	})

	cfg := testConfig()
	cfg.Apollo.DefaultMailboxID = "mb-default"

	ap := newFakeApollo()
	p := newTestPipeline(cfg, store, sequenceSettings, nil, ap, nil, nil)

	sum, err := p.SequenceContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	require.Len(t, ap.sequenced, 1)
	assert.Equal(t, "mb-default", ap.sequenced[0][1])
}

func TestSequenceContactsNoMailboxFailsRow(t *testing.T) {
	store := newMemStore()
	store.EnsureHeader(model.AccountsSheet, model.AccountColumns)
	store.EnsureHeader(model.MailboxMapSheet, model.MailboxColumns)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "unmapped.com", ApolloID: "a1"}.Row(),
	})

	ap := newFakeApollo()
	p := newTestPipeline(nil, store, sequenceSettings, nil, ap, nil, nil)

	sum, err := p.SequenceContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Empty(t, ap.sequenced)

	status := store.contact(0).Status
	assert.True(t, status.Has(model.StatusSequenceFailed))
	assert.Contains(t, status.String(), "no mailbox mapped")
}

func TestSequenceContactsEnrollFailureAppendsReason(t *testing.T) {
	store := newMemStore()
	seedSequenceSheets(store)
	store.EnsureHeader(model.ContactsSheet, model.ContactColumns)
	store.AppendRows(model.ContactsSheet, [][]string{
		model.Contact{Selected: true, Domain: "acme.com", ApolloID: "a1"}.Row(),
	})

	ap := newFakeApollo()
	ap.sequenceErr = fmt.Errorf("sequence archived")
	p := newTestPipeline(nil, store, sequenceSettings, nil, ap, nil, nil)

	sum, err := p.SequenceContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, "sequence_failed(sequence archived)", store.contact(0).Status.String())
}

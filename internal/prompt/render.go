// Package prompt renders generation prompts from {token} templates joined
// across the contact, its account, the sender identity, and the content
// catalog.
package prompt

import (
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Token names accepted in prompt templates.
const (
	TokContactName   = "contact_name"
	TokContactTitle  = "contact_title"
	TokContactEmail  = "contact_email"
	TokContactStage  = "contact_stage"
	TokContactStory  = "contact_story"
	TokCompanyName   = "company_name"
	TokCompanyDomain = "company_domain"
	TokAccountStory  = "account_story"
	TokSenderName    = "sender_name"
	TokContentList   = "content_library"
)

// defaults substituted for tokens with no computed value. The sender name
// intentionally collapses to empty so a missing mapping doesn't leak
// placeholder text into an email signature.
var defaults = map[string]string{
	TokContactName:   "No contact name available.",
	TokContactTitle:  "No title available.",
	TokContactEmail:  "No email available.",
	TokContactStage:  "No stage available.",
	TokContactStory:  "No contact activity available.",
	TokCompanyName:   "No company name available.",
	TokCompanyDomain: "No company domain available.",
	TokAccountStory:  "No account activity available.",
	TokSenderName:    "",
	TokContentList:   "No content available.",
}

// Vars builds the token map for one contact. Account may be zero-valued
// when no account row shares the contact's domain; sender likewise.
func Vars(c model.Contact, a model.Account, sender model.SenderIdentity, catalog []model.ContentItem) map[string]string {
	vals := map[string]string{
		TokContactName:  c.Name,
		TokContactTitle: c.Title,
		TokContactEmail: c.Email,
		TokContactStage: c.Stage,
		TokContactStory: c.Story,
		TokCompanyName:  a.Name,
		TokAccountStory: a.Story,
		TokSenderName:   sender.SenderName,
		TokContentList:  model.FormatContentList(catalog),
	}

	// A missing account name falls back to the contact's domain, which is
	// always known for discovered contacts.
	if vals[TokCompanyName] == "" {
		vals[TokCompanyName] = c.Domain
	}
	vals[TokCompanyDomain] = c.Domain

	return vals
}

// Render substitutes every {token} occurrence globally. Tokens with an
// empty computed value get their documented default, never the literal
// placeholder or a bare empty string (sender_name excepted). Substituted
// values are not re-scanned, so a value containing {braces} stays as-is.
func Render(template string, vals map[string]string) string {
	pairs := make([]string, 0, len(defaults)*2)
	for token, def := range defaults {
		val, ok := vals[token]
		if !ok || strings.TrimSpace(val) == "" {
			val = def
		}
		pairs = append(pairs, "{"+token+"}", val)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

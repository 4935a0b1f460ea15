package model

import (
	"fmt"
	"strings"
)

// ContentColumns is the header contract for the Content Library sheet.
var ContentColumns = []string{"url", "title", "description", "persona"}

// ContentItem is one cataloged marketing asset, used as read-only context
// in generation prompts.
type ContentItem struct {
	URL         string
	Title       string
	Description string
	Persona     string
}

// ContentItemFromRow parses a Content Library row.
func ContentItemFromRow(row []string) ContentItem {
	row = padRow(row, len(ContentColumns))
	return ContentItem{
		URL:         strings.TrimSpace(row[0]),
		Title:       strings.TrimSpace(row[1]),
		Description: strings.TrimSpace(row[2]),
		Persona:     strings.TrimSpace(row[3]),
	}
}

// Row serializes the item back to its sheet form.
func (c ContentItem) Row() []string {
	return []string{c.URL, c.Title, c.Description, c.Persona}
}

// FormatContentList serializes a catalog as a numbered list for prompt
// injection.
func FormatContentList(items []ContentItem) string {
	if len(items) == 0 {
		return "No content available."
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s) - %s [for: %s]\n", i+1, item.Title, item.URL, item.Description, item.Persona)
	}
	return strings.TrimRight(b.String(), "\n")
}

// MailboxColumns is the header contract for the Mailbox Mapping sheet.
var MailboxColumns = []string{"owner_email", "mailbox_id", "sender_name"}

// SenderIdentity maps an account owner to the Apollo mailbox that sends on
// their behalf.
type SenderIdentity struct {
	OwnerEmail string
	MailboxID  string
	SenderName string
}

// SenderIdentityFromRow parses a Mailbox Mapping row.
func SenderIdentityFromRow(row []string) SenderIdentity {
	row = padRow(row, len(MailboxColumns))
	return SenderIdentity{
		OwnerEmail: strings.ToLower(strings.TrimSpace(row[0])),
		MailboxID:  strings.TrimSpace(row[1]),
		SenderName: strings.TrimSpace(row[2]),
	}
}

// Row serializes the identity back to its sheet form.
func (s SenderIdentity) Row() []string {
	return []string{s.OwnerEmail, s.MailboxID, s.SenderName}
}

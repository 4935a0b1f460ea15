package model

import (
	"strings"
)

// ContactColumns is the header contract for the Contacts sheet.
var ContactColumns = []string{
	"selected",
	"domain",
	"name",
	"title",
	"stage",
	"email",
	"apollo_id",
	"hubspot_contact_id",
	"contact_story_30_days",
	"gem_subject",
	"gem_body",
	"status",
	"email1_subject",
	"email1_body",
	"email2_subject",
	"email2_body",
	"email3_subject",
	"email3_body",
}

// Contact column indexes.
const (
	ConSelected = iota
	ConDomain
	ConName
	ConTitle
	ConStage
	ConEmail
	ConApolloID
	ConHubSpotID
	ConStory
	ConGemSubject
	ConGemBody
	ConStatus
	ConEmail1Subject
	ConEmail1Body
	ConEmail2Subject
	ConEmail2Body
	ConEmail3Subject
	ConEmail3Body
)

// Contact is one person associated with an account, denormalized from its
// Contacts row.
type Contact struct {
	Selected   bool
	Domain     string
	Name       string
	Title      string
	Stage      string
	Email      string
	ApolloID   string
	HubSpotID  string
	Story      string
	GemSubject string
	GemBody    string
	Status     StatusLog
	Emails     [3]EmailDraft
}

// EmailDraft is one step of a generated outreach sequence.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ContactFromRow parses a Contacts row.
func ContactFromRow(row []string) Contact {
	row = padRow(row, len(ContactColumns))
	return Contact{
		Selected:   ParseBool(row[ConSelected]),
		Domain:     NormalizeDomain(row[ConDomain]),
		Name:       strings.TrimSpace(row[ConName]),
		Title:      strings.TrimSpace(row[ConTitle]),
		Stage:      strings.TrimSpace(row[ConStage]),
		Email:      strings.TrimSpace(row[ConEmail]),
		ApolloID:   strings.TrimSpace(row[ConApolloID]),
		HubSpotID:  strings.TrimSpace(row[ConHubSpotID]),
		Story:      row[ConStory],
		GemSubject: row[ConGemSubject],
		GemBody:    row[ConGemBody],
		Status:     ParseStatusLog(row[ConStatus]),
		Emails: [3]EmailDraft{
			{Subject: row[ConEmail1Subject], Body: row[ConEmail1Body]},
			{Subject: row[ConEmail2Subject], Body: row[ConEmail2Body]},
			{Subject: row[ConEmail3Subject], Body: row[ConEmail3Body]},
		},
	}
}

// Row serializes the contact back to its sheet form.
func (c Contact) Row() []string {
	return []string{
		FormatBool(c.Selected),
		c.Domain,
		c.Name,
		c.Title,
		c.Stage,
		c.Email,
		c.ApolloID,
		c.HubSpotID,
		c.Story,
		c.GemSubject,
		c.GemBody,
		c.Status.String(),
		c.Emails[0].Subject,
		c.Emails[0].Body,
		c.Emails[1].Subject,
		c.Emails[1].Body,
		c.Emails[2].Subject,
		c.Emails[2].Body,
	}
}

// DedupKey identifies a contact for append-time deduplication: domain plus
// lowercased email, falling back to the Apollo person id when the email is
// still locked.
func (c Contact) DedupKey() string {
	return ContactDedupKey(c.Domain, c.Email, c.ApolloID)
}

// ContactDedupKey builds the composite dedup key from raw parts.
func ContactDedupKey(domain, email, apolloID string) string {
	id := strings.ToLower(strings.TrimSpace(email))
	if id == "" {
		id = strings.TrimSpace(apolloID)
	}
	return NormalizeDomain(domain) + "|" + id
}

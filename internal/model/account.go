package model

import (
	"strconv"
	"strings"
)

// Sheet names in the operator workbook.
const (
	AccountsSheet   = "Accounts"
	ContactsSheet   = "Contacts"
	ContentSheet    = "Content Library"
	MailboxMapSheet = "Mailbox Mapping"
	ConfigSheet     = "Config"
)

// AccountColumns is the header contract for the Accounts sheet.
var AccountColumns = []string{
	"selected",
	"hubspot_company_id",
	"name",
	"domain",
	"sessions_7d",
	"sessions_30d",
	"owner_email",
	"account_story_30_days",
}

// Account column indexes.
const (
	AccSelected = iota
	AccHubSpotID
	AccName
	AccDomain
	AccSessions7
	AccSessions30
	AccOwnerEmail
	AccStory
)

// Account is one company under consideration, denormalized from its
// Accounts row. Domain is the join key to contacts.
type Account struct {
	Selected   bool
	HubSpotID  string
	Name       string
	Domain     string
	Sessions7  int
	Sessions30 int
	OwnerEmail string
	Story      string
}

// AccountFromRow parses an Accounts row. Short rows are tolerated; missing
// cells read as zero values.
func AccountFromRow(row []string) Account {
	row = padRow(row, len(AccountColumns))
	return Account{
		Selected:   ParseBool(row[AccSelected]),
		HubSpotID:  strings.TrimSpace(row[AccHubSpotID]),
		Name:       strings.TrimSpace(row[AccName]),
		Domain:     NormalizeDomain(row[AccDomain]),
		Sessions7:  parseCount(row[AccSessions7]),
		Sessions30: parseCount(row[AccSessions30]),
		OwnerEmail: strings.TrimSpace(row[AccOwnerEmail]),
		Story:      row[AccStory],
	}
}

// Row serializes the account back to its sheet form.
func (a Account) Row() []string {
	return []string{
		FormatBool(a.Selected),
		a.HubSpotID,
		a.Name,
		a.Domain,
		strconv.Itoa(a.Sessions7),
		strconv.Itoa(a.Sessions30),
		a.OwnerEmail,
		a.Story,
	}
}

// NormalizeDomain lower-cases and trims a domain so it can serve as the
// account/contact join key.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, "/")
}

// ParseBool interprets a selection cell. Sheets store booleans as TRUE/FALSE
// but operators also type 1/yes/x.
func ParseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1", "yes", "x":
		return true
	}
	return false
}

// FormatBool renders a selection flag the way sheets render checkboxes.
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseCount(cell string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0
	}
	return n
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}

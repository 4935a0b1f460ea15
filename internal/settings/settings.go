// Package settings resolves named operator settings with a two-tier
// precedence: the per-operator secrets file wins, then the shared Config
// sheet in the workbook.
package settings

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/sheet"
)

// Well-known setting keys.
const (
	KeyHubSpotToken        = "HUBSPOT_TOKEN"
	KeyApolloAPIKey        = "APOLLO_API_KEY"
	KeyAnthropicAPIKey     = "ANTHROPIC_API_KEY"
	KeyGCPProject          = "GCP_PROJECT_ID"
	KeyGCPAccessToken      = "GCP_ACCESS_TOKEN"
	KeyAccountStoryQuery   = "BQ_ACCOUNT_STORY_QUERY"
	KeyContactStoryQuery   = "BQ_CONTACT_STORY_QUERY"
	KeyMessagePromptTmpl   = "MESSAGE_PROMPT_TEMPLATE"
	KeyApolloSequenceID    = "APOLLO_SEQUENCE_ID"
	KeyApolloSubjectField  = "APOLLO_SUBJECT_FIELD_ID"
	KeyApolloBodyField     = "APOLLO_BODY_FIELD_ID"
	KeyApolloStageAllow    = "APOLLO_ALLOWED_STAGES"
	KeyCatalogIndexURLs    = "CATALOG_INDEX_URLS"
	KeyCatalogSiteRoot     = "CATALOG_SITE_ROOT"
)

// SecretKeys are the credentials stored in the secure tier by `keys set`.
var SecretKeys = []string{KeyHubSpotToken, KeyApolloAPIKey, KeyAnthropicAPIKey}

// MissingError reports a key absent from every tier. Always fatal to the
// invoking step unless the caller explicitly substitutes a default.
type MissingError struct {
	Key   string
	Tiers []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("setting %q not found in %s", e.Key, strings.Join(e.Tiers, " or "))
}

// Provider is one tier of the lookup chain.
type Provider interface {
	Name() string
	// Lookup returns the raw value and whether the key is present.
	Lookup(key string) (string, bool, error)
}

// Resolver queries an ordered list of providers; the first present value
// wins. Key lookups are case-sensitive, values are trimmed.
type Resolver struct {
	providers []Provider
}

// NewResolver builds a resolver over the given tiers, highest precedence
// first.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Get resolves key or returns a *MissingError naming every tier searched.
func (r *Resolver) Get(key string) (string, error) {
	tiers := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		tiers = append(tiers, p.Name())
		val, ok, err := p.Lookup(key)
		if err != nil {
			return "", err
		}
		if ok {
			return strings.TrimSpace(val), nil
		}
	}
	return "", &MissingError{Key: key, Tiers: tiers}
}

// GetDefault resolves key, substituting def when the key is absent from
// every tier. Only keys a caller documents as optional should use this.
func (r *Resolver) GetDefault(key, def string) string {
	val, err := r.Get(key)
	if err != nil {
		return def
	}
	return val
}

// SheetProvider reads the shared Config sheet (key, value columns).
type SheetProvider struct {
	store sheet.Store
}

// NewSheetProvider builds the shared-tier provider over the workbook.
func NewSheetProvider(store sheet.Store) *SheetProvider {
	return &SheetProvider{store: store}
}

func (p *SheetProvider) Name() string { return "Config sheet" }

func (p *SheetProvider) Lookup(key string) (string, bool, error) {
	rows, err := p.store.ReadRows(model.ConfigSheet, 2)
	if err != nil {
		return "", false, err
	}
	for _, row := range rows {
		if strings.TrimSpace(row[0]) == key {
			return row[1], true, nil
		}
	}
	return "", false, nil
}

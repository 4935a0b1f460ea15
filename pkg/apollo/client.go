// Package apollo provides access to the Apollo.io people-search and
// sequencing API.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.apollo.io/v1"

// SearchPageSize is the fixed page size for mixed people searches.
const SearchPageSize = 100

// Client defines the Apollo operations used by the pipeline.
type Client interface {
	// SearchMixed returns one page of saved contacts and raw people for
	// an organization, addressed by domain or by organization id.
	SearchMixed(ctx context.Context, q MixedQuery) (*MixedPage, error)

	// SearchOrganizations searches organizations by name.
	SearchOrganizations(ctx context.Context, name string) ([]Organization, error)

	// EnrichPerson reveals a person's email. Paid action.
	EnrichPerson(ctx context.Context, personID string) (*Person, error)

	// CreateContact persists a person as a saved contact.
	CreateContact(ctx context.Context, p Person) (*Person, error)

	// ListMailboxes returns the email-sending mailboxes on the account.
	ListMailboxes(ctx context.Context) ([]Mailbox, error)

	// ListStages returns the pipeline stage id to name mapping.
	ListStages(ctx context.Context) (map[string]string, error)

	// UpdateContactFields sets custom field values on a contact.
	UpdateContactFields(ctx context.Context, contactID string, fields map[string]string) error

	// AddToSequence enrolls contacts in a sequence with the given sending
	// mailbox.
	AddToSequence(ctx context.Context, sequenceID, mailboxID string, contactIDs []string) error
}

// MixedQuery addresses a mixed people search. Exactly one of Domain or
// OrgID should be set.
type MixedQuery struct {
	Domain string
	OrgID  string
	Page   int
}

// Person is an Apollo person or saved contact.
type Person struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Email          string `json:"email"`
	ContactStageID string `json:"contact_stage_id"`
	// Contact reports whether this record is already a saved contact
	// rather than a raw person.
	Contact bool `json:"-"`
}

// MixedPage is one page of mixed search results.
type MixedPage struct {
	Contacts   []Person
	People     []Person
	Page       int
	TotalPages int
}

// Organization is one organization search match.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Mailbox is one email-sending account.
type Mailbox struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithRateLimit sets a per-second request rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Apollo API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type mixedSearchRequest struct {
	Domains []string `json:"q_organization_domains_list,omitempty"`
	OrgIDs  []string `json:"organization_ids,omitempty"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}

type mixedSearchResponse struct {
	Contacts   []Person `json:"contacts"`
	People     []Person `json:"people"`
	Pagination struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

func (c *httpClient) SearchMixed(ctx context.Context, q MixedQuery) (*MixedPage, error) {
	req := mixedSearchRequest{
		Page:    q.Page,
		PerPage: SearchPageSize,
	}
	switch {
	case q.OrgID != "":
		req.OrgIDs = []string{q.OrgID}
	case q.Domain != "":
		req.Domains = []string{q.Domain}
	default:
		return nil, eris.New("apollo: mixed query needs a domain or organization id")
	}

	var resp mixedSearchResponse
	if err := c.post(ctx, "/mixed_people/search", req, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Contacts {
		resp.Contacts[i].Contact = true
	}
	return &MixedPage{
		Contacts:   resp.Contacts,
		People:     resp.People,
		Page:       resp.Pagination.Page,
		TotalPages: resp.Pagination.TotalPages,
	}, nil
}

type orgSearchResponse struct {
	Organizations []Organization `json:"organizations"`
}

func (c *httpClient) SearchOrganizations(ctx context.Context, name string) ([]Organization, error) {
	body := map[string]any{"q_organization_name": name, "page": 1}
	var resp orgSearchResponse
	if err := c.post(ctx, "/mixed_companies/search", body, &resp); err != nil {
		return nil, err
	}
	return resp.Organizations, nil
}

type personEnvelope struct {
	Person  *Person `json:"person"`
	Contact *Person `json:"contact"`
}

func (c *httpClient) EnrichPerson(ctx context.Context, personID string) (*Person, error) {
	body := map[string]any{"id": personID, "reveal_personal_emails": false}
	var resp personEnvelope
	if err := c.post(ctx, "/people/match", body, &resp); err != nil {
		return nil, err
	}
	if resp.Person == nil {
		return nil, eris.Errorf("apollo: enrich %s returned no person", personID)
	}
	return resp.Person, nil
}

func (c *httpClient) CreateContact(ctx context.Context, p Person) (*Person, error) {
	body := map[string]any{
		"first_name": firstName(p.Name),
		"last_name":  lastName(p.Name),
		"title":      p.Title,
		"email":      p.Email,
	}
	var resp personEnvelope
	if err := c.post(ctx, "/contacts", body, &resp); err != nil {
		return nil, err
	}
	if resp.Contact == nil {
		return nil, eris.New("apollo: create contact returned no contact")
	}
	resp.Contact.Contact = true
	return resp.Contact, nil
}

type mailboxResponse struct {
	EmailAccounts []Mailbox `json:"email_accounts"`
}

func (c *httpClient) ListMailboxes(ctx context.Context) ([]Mailbox, error) {
	var resp mailboxResponse
	if err := c.get(ctx, "/email_accounts", &resp); err != nil {
		return nil, err
	}
	return resp.EmailAccounts, nil
}

type stageResponse struct {
	ContactStages []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"contact_stages"`
}

func (c *httpClient) ListStages(ctx context.Context) (map[string]string, error) {
	var resp stageResponse
	if err := c.get(ctx, "/contact_stages", &resp); err != nil {
		return nil, err
	}
	stages := make(map[string]string, len(resp.ContactStages))
	for _, s := range resp.ContactStages {
		stages[s.ID] = s.Name
	}
	return stages, nil
}

func (c *httpClient) UpdateContactFields(ctx context.Context, contactID string, fields map[string]string) error {
	typed := map[string]any{"typed_custom_fields": fields}
	var resp personEnvelope
	return c.request(ctx, http.MethodPut, "/contacts/"+contactID, typed, &resp)
}

func (c *httpClient) AddToSequence(ctx context.Context, sequenceID, mailboxID string, contactIDs []string) error {
	body := map[string]any{
		"contact_ids":                      contactIDs,
		"emailer_campaign_id":              sequenceID,
		"send_email_from_email_account_id": mailboxID,
	}
	var resp map[string]any
	return c.post(ctx, "/emailer_campaigns/"+sequenceID+"/add_contact_ids", body, &resp)
}

func (c *httpClient) post(ctx context.Context, path string, body, out any) error {
	return c.request(ctx, http.MethodPost, path, body, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	return c.request(ctx, http.MethodGet, path, nil, out)
}

func (c *httpClient) request(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "apollo: rate limit")
		}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "apollo: marshal request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "apollo: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "apollo: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "apollo: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.New(fmt.Sprintf("apollo: %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "apollo: unmarshal response")
	}
	return nil
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

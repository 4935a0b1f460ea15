// Package hubspot provides read access to the HubSpot CRM v3 API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.hubapi.com"

// Client defines the CRM operations used by the fetch step.
type Client interface {
	// SearchMarkedCompanies returns one page of companies whose marker
	// property is true. after is the paging cursor ("" for the first
	// page); the returned cursor is "" when no further pages exist.
	SearchMarkedCompanies(ctx context.Context, markerProperty, after string, limit int) (*CompanyPage, error)

	// OwnerEmail resolves an owner id to the owner's email address.
	OwnerEmail(ctx context.Context, ownerID string) (string, error)
}

// Company is one CRM company record with the fields the pipeline reads.
type Company struct {
	ID         string
	Name       string
	Domain     string
	Sessions7  int
	Sessions30 int
	OwnerID    string
}

// CompanyPage is one page of search results.
type CompanyPage struct {
	Companies []Company
	After     string
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
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a HubSpot API client with bearer token auth.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
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

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// searchRequest is the body for POST /crm/v3/objects/companies/search.
type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchResponse struct {
	Results []struct {
		ID         string            `json:"id"`
		Properties map[string]string `json:"properties"`
	} `json:"results"`
	Paging struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func (c *httpClient) SearchMarkedCompanies(ctx context.Context, markerProperty, after string, limit int) (*CompanyPage, error) {
	body := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{
				PropertyName: markerProperty,
				Operator:     "EQ",
				Value:        "true",
			}},
		}},
		Properties: []string{
			"name", "domain", "hs_analytics_num_visits",
			"sessions_last_7_days", "sessions_last_30_days", "hubspot_owner_id",
		},
		Limit: limit,
		After: after,
	}

	var resp searchResponse
	if err := c.post(ctx, "/crm/v3/objects/companies/search", body, &resp); err != nil {
		return nil, err
	}

	page := &CompanyPage{After: resp.Paging.Next.After}
	for _, r := range resp.Results {
		page.Companies = append(page.Companies, Company{
			ID:         r.ID,
			Name:       r.Properties["name"],
			Domain:     r.Properties["domain"],
			Sessions7:  atoi(r.Properties["sessions_last_7_days"]),
			Sessions30: atoi(r.Properties["sessions_last_30_days"]),
			OwnerID:    r.Properties["hubspot_owner_id"],
		})
	}
	return page, nil
}

type ownerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *httpClient) OwnerEmail(ctx context.Context, ownerID string) (string, error) {
	var resp ownerResponse
	if err := c.get(ctx, "/crm/v3/owners/"+ownerID, &resp); err != nil {
		return "", err
	}
	return resp.Email, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "hubspot: marshal request")
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(raw), out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *httpClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "hubspot: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "hubspot: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "hubspot: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "hubspot: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.New(fmt.Sprintf("hubspot: %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "hubspot: unmarshal response")
	}
	return nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Package bigquery runs parameterized warehouse queries through the
// BigQuery REST jobs API and polls them to completion.
package bigquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://bigquery.googleapis.com/bigquery/v2"

// NoEventsStory is the story text recorded when a query returns no rows.
const NoEventsStory = "No events found in the last 30 days."

// Client defines the warehouse operations used by the enrichment steps.
type Client interface {
	// Story runs the query with one named string parameter, waits for the
	// job to finish, and returns the first column of the first result row
	// (or NoEventsStory when the result set is empty).
	Story(ctx context.Context, projectID, query, paramName, paramValue string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client. The client must carry
// the caller's Google credentials (e.g. an oauth2 transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPollInterval sets the fixed delay between job status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *httpClient) {
		c.pollInterval = d
	}
}

// WithMaxPolls caps the poll loop. 0 means poll until the job reports
// DONE, which matches the original sheet automation and can hang on a
// stuck job.
func WithMaxPolls(n int) Option {
	return func(c *httpClient) {
		c.maxPolls = n
	}
}

type httpClient struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	maxPolls     int
}

// NewClient creates a BigQuery REST client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:      defaultBaseURL,
		http:         &http.Client{Timeout: 60 * time.Second},
		pollInterval: 500 * time.Millisecond,
		maxPolls:     240,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type jobRequest struct {
	Configuration struct {
		Query struct {
			Query           string       `json:"query"`
			UseLegacySQL    bool         `json:"useLegacySql"`
			QueryParameters []queryParam `json:"queryParameters"`
		} `json:"query"`
	} `json:"configuration"`
}

type queryParam struct {
	Name          string `json:"name"`
	ParameterType struct {
		Type string `json:"type"`
	} `json:"parameterType"`
	ParameterValue struct {
		Value string `json:"value"`
	} `json:"parameterValue"`
}

type jobResponse struct {
	JobReference struct {
		JobID string `json:"jobId"`
	} `json:"jobReference"`
	Status struct {
		State       string `json:"state"`
		ErrorResult *struct {
			Message string `json:"message"`
		} `json:"errorResult"`
	} `json:"status"`
}

type queryResults struct {
	Rows []struct {
		F []struct {
			V string `json:"v"`
		} `json:"f"`
	} `json:"rows"`
}

func (c *httpClient) Story(ctx context.Context, projectID, query, paramName, paramValue string) (string, error) {
	job, err := c.insertJob(ctx, projectID, query, paramName, paramValue)
	if err != nil {
		return "", err
	}

	job, err = c.pollJob(ctx, projectID, job)
	if err != nil {
		return "", err
	}
	if job.Status.ErrorResult != nil {
		return "", eris.Errorf("bigquery: job %s failed: %s", job.JobReference.JobID, job.Status.ErrorResult.Message)
	}

	results, err := c.results(ctx, projectID, job.JobReference.JobID)
	if err != nil {
		return "", err
	}
	if len(results.Rows) == 0 || len(results.Rows[0].F) == 0 {
		return NoEventsStory, nil
	}
	return results.Rows[0].F[0].V, nil
}

func (c *httpClient) insertJob(ctx context.Context, projectID, query, paramName, paramValue string) (*jobResponse, error) {
	var req jobRequest
	req.Configuration.Query.Query = query
	req.Configuration.Query.UseLegacySQL = false

	var p queryParam
	p.Name = paramName
	p.ParameterType.Type = "STRING"
	p.ParameterValue.Value = paramValue
	req.Configuration.Query.QueryParameters = []queryParam{p}

	var job jobResponse
	path := fmt.Sprintf("/projects/%s/jobs", projectID)
	if err := c.do(ctx, http.MethodPost, path, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// pollJob waits for the job to reach DONE at a fixed interval. With a
// maxPolls ceiling the loop gives up instead of hanging on a job that
// never terminates.
func (c *httpClient) pollJob(ctx context.Context, projectID string, job *jobResponse) (*jobResponse, error) {
	jobID := job.JobReference.JobID
	for polls := 0; job.Status.State != "DONE"; polls++ {
		if c.maxPolls > 0 && polls >= c.maxPolls {
			return nil, eris.Errorf("bigquery: job %s still %s after %d polls", jobID, job.Status.State, polls)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrapf(ctx.Err(), "bigquery: poll job %s", jobID)
		case <-timer.C:
		}

		var next jobResponse
		path := fmt.Sprintf("/projects/%s/jobs/%s", projectID, jobID)
		if err := c.do(ctx, http.MethodGet, path, nil, &next); err != nil {
			return nil, err
		}
		job = &next
	}
	return job, nil
}

func (c *httpClient) results(ctx context.Context, projectID, jobID string) (*queryResults, error) {
	var out queryResults
	path := fmt.Sprintf("/projects/%s/queries/%s", projectID, jobID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "bigquery: marshal request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "bigquery: create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "bigquery: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "bigquery: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.New(fmt.Sprintf("bigquery: %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "bigquery: unmarshal response")
	}
	return nil
}

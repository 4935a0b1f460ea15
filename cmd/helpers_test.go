package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

type staticProvider map[string]string

func (staticProvider) Name() string { return "test" }

func (p staticProvider) Lookup(key string) (string, bool, error) {
	v, ok := p[key]
	return v, ok, nil
}

func TestGoogleHTTPClientUsesTokenSetting(t *testing.T) {
	env := &cmdEnv{resolver: settings.NewResolver(staticProvider{
		settings.KeyGCPAccessToken: "test-token",
	})}

	hc, err := env.googleHTTPClient(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestFormatMailboxes(t *testing.T) {
	out := formatMailboxes([]apollo.Mailbox{
		{ID: "mb-1", Email: "rep@sells.group"},
		{ID: "mb-2", Email: "other@sells.group"},
	})
	assert.Equal(t, "mb-1\trep@sells.group\nmb-2\tother@sells.group\n", out)
}

func TestFormatMailboxesEmpty(t *testing.T) {
	assert.Equal(t, "No mailboxes configured in Apollo.\n", formatMailboxes(nil))
}

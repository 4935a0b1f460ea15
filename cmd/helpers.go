package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/sheet"
	"github.com/sells-group/prospect-cli/internal/step"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/apollo"
	"github.com/sells-group/prospect-cli/pkg/bigquery"
	"github.com/sells-group/prospect-cli/pkg/hubspot"
)

// cmdEnv bundles the store and settings resolver every command needs,
// plus lazy client constructors so a command only pays for the
// credentials it uses.
type cmdEnv struct {
	store    sheet.Store
	secrets  *settings.SecretsFile
	resolver *settings.Resolver
}

func initEnv() (*cmdEnv, error) {
	st, err := initStore()
	if err != nil {
		return nil, err
	}

	secretsPath := cfg.Workbook.SecretsPath
	if secretsPath == "" {
		secretsPath, err = settings.DefaultSecretsPath()
		if err != nil {
			return nil, err
		}
	}
	secrets, err := settings.LoadSecrets(secretsPath)
	if err != nil {
		return nil, err
	}

	return &cmdEnv{
		store:    st,
		secrets:  secrets,
		resolver: settings.NewResolver(secrets, settings.NewSheetProvider(st)),
	}, nil
}

func initStore() (sheet.Store, error) {
	switch cfg.Workbook.Driver {
	case "xlsx", "":
		return sheet.OpenXLSX(cfg.Workbook.Path)
	case "sqlite":
		return sheet.OpenSQLite(cfg.Workbook.Path)
	default:
		return nil, eris.Errorf("unknown workbook driver %q", cfg.Workbook.Driver)
	}
}

func (e *cmdEnv) Close() {
	_ = e.store.Close()
}

func (e *cmdEnv) HubSpot() (hubspot.Client, error) {
	token, err := e.resolver.Get(settings.KeyHubSpotToken)
	if err != nil {
		return nil, err
	}
	return hubspot.NewClient(token,
		hubspot.WithBaseURL(cfg.HubSpot.BaseURL),
		hubspot.WithRateLimit(cfg.HubSpot.RateLimit),
	), nil
}

func (e *cmdEnv) Apollo() (apollo.Client, error) {
	key, err := e.resolver.Get(settings.KeyApolloAPIKey)
	if err != nil {
		return nil, err
	}
	return apollo.NewClient(key,
		apollo.WithBaseURL(cfg.Apollo.BaseURL),
		apollo.WithRateLimit(cfg.Apollo.RateLimit),
	), nil
}

func (e *cmdEnv) Anthropic() (anthropic.Client, error) {
	key, err := e.resolver.Get(settings.KeyAnthropicAPIKey)
	if err != nil {
		return nil, err
	}
	return anthropic.NewClient(key), nil
}

const bigqueryScope = "https://www.googleapis.com/auth/bigquery"

func (e *cmdEnv) BigQuery(ctx context.Context) (bigquery.Client, error) {
	hc, err := e.googleHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return bigquery.NewClient(
		bigquery.WithHTTPClient(hc),
		bigquery.WithBaseURL(cfg.BigQuery.BaseURL),
		bigquery.WithPollInterval(time.Duration(cfg.BigQuery.PollInterval)*time.Millisecond),
		bigquery.WithMaxPolls(cfg.BigQuery.MaxPolls),
	), nil
}

// googleHTTPClient builds the credential-bearing client the warehouse
// requests go through. A GCP_ACCESS_TOKEN setting wins; otherwise
// application-default credentials are loaded from the environment.
func (e *cmdEnv) googleHTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := e.resolver.Get(settings.KeyGCPAccessToken)
	if err == nil {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return oauth2.NewClient(ctx, src), nil
	}
	if _, ok := err.(*settings.MissingError); !ok {
		return nil, err
	}

	hc, err := google.DefaultClient(ctx, bigqueryScope)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: google credentials (set GCP_ACCESS_TOKEN or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	return hc, nil
}

// confirm asks the operator before a mutating action. The --yes flag
// answers for them.
func confirm(question string) bool {
	if skipAsk {
		return true
	}
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printSummary(name string, sum step.Summary) {
	fmt.Printf("%s complete: %d processed, %d failed, %d skipped\n",
		name, sum.Processed, sum.Failed, sum.Skipped)
}

package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/catalog"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/settings"
	"github.com/sells-group/prospect-cli/internal/step"
)

// RebuildCatalog clears the Content Library sheet and repopulates it by
// scraping and summarizing every blog post found on the configured index
// pages. The catalog is always rebuilt whole, never incrementally.
func (p *Pipeline) RebuildCatalog(ctx context.Context) (step.Summary, error) {
	log := zap.L().With(zap.String("step", "catalog"))

	indexURLs := p.cfg.Catalog.IndexURLs
	if raw := p.settings.GetDefault(settings.KeyCatalogIndexURLs, ""); raw != "" {
		indexURLs = splitList(raw)
	}
	if len(indexURLs) == 0 {
		return step.Summary{}, &settings.MissingError{
			Key:   settings.KeyCatalogIndexURLs,
			Tiers: []string{"credentials file", "Config sheet", "config.yaml catalog.index_urls"},
		}
	}
	siteRoot := p.settings.GetDefault(settings.KeyCatalogSiteRoot, p.cfg.Catalog.SiteRoot)
	if siteRoot == "" {
		return step.Summary{}, &settings.MissingError{
			Key:   settings.KeyCatalogSiteRoot,
			Tiers: []string{"credentials file", "Config sheet", "config.yaml catalog.site_root"},
		}
	}

	scraper := catalog.NewScraper(siteRoot)
	urls, err := scraper.PostURLs(ctx, indexURLs)
	if err != nil {
		return step.Summary{}, err
	}
	log.Info("found posts", zap.Int("count", len(urls)))

	// Clear-then-repopulate: the library is rebuilt from scratch.
	if err := p.store.Clear(model.ContentSheet); err != nil {
		return step.Summary{}, eris.Wrap(err, "catalog: clear sheet")
	}
	if err := p.store.EnsureHeader(model.ContentSheet, model.ContentColumns); err != nil {
		return step.Summary{}, err
	}

	delay := time.Duration(p.cfg.Catalog.FetchDelayMs) * time.Millisecond

	var sum step.Summary
	for _, postURL := range urls {
		if err := sleepCtx(ctx, delay); err != nil {
			return sum, eris.Wrap(err, "catalog: cancelled")
		}

		post, err := scraper.FetchPost(ctx, postURL)
		if err != nil {
			sum.Failed++
			log.Warn("post fetch failed", zap.String("url", postURL), zap.Error(err))
			continue
		}
		if len(post.Content) < catalog.MinContentLen {
			sum.Skipped++
			log.Info("skipping thin post", zap.String("url", postURL))
			continue
		}

		analysis, err := catalog.Analyze(ctx, p.ai, p.cfg.Anthropic.Model, p.cfg.Anthropic.MaxTokens, post)
		if err != nil {
			sum.Failed++
			log.Warn("post analysis failed", zap.String("url", postURL), zap.Error(err))
			continue
		}

		item := model.ContentItem{
			URL:         post.URL,
			Title:       post.Title,
			Description: analysis.Description,
			Persona:     analysis.Persona,
		}
		if err := p.store.AppendRows(model.ContentSheet, [][]string{item.Row()}); err != nil {
			return sum, eris.Wrapf(err, "catalog: append %s", postURL)
		}
		sum.Processed++
	}

	log.Info("step complete",
		zap.Int("processed", sum.Processed),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package catalog scrapes the marketing blog and summarizes each post for
// the Content Library sheet.
package catalog

import (
	"context"
	"io"
	"mime"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	postLinkRe = regexp.MustCompile(`<a href="(/blog/[^"]+)"`)
	titleRe    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	contentRe  = regexp.MustCompile(`(?is)<div class="blog-item-content-wrapper"[^>]*>(.*?)</section>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	spaceRe    = regexp.MustCompile(`\s\s+`)
)

// MinContentLen is the shortest post body worth summarizing.
const MinContentLen = 50

// Scraper fetches blog index pages and posts via plain HTTP.
type Scraper struct {
	client   *http.Client
	siteRoot string
}

// NewScraper creates a Scraper. siteRoot prefixes the relative post links
// found on index pages.
func NewScraper(siteRoot string) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		siteRoot: strings.TrimSuffix(siteRoot, "/"),
	}
}

// PostURLs scrapes the index pages and returns the unique post URLs,
// excluding category listings. Index pages that fail to fetch are skipped.
func (s *Scraper) PostURLs(ctx context.Context, indexURLs []string) ([]string, error) {
	seen := map[string]bool{}
	for _, indexURL := range indexURLs {
		html, err := s.fetch(ctx, indexURL)
		if err != nil {
			continue
		}
		for _, m := range postLinkRe.FindAllStringSubmatch(html, -1) {
			if strings.Contains(m[1], "/category/") {
				continue
			}
			seen[s.siteRoot+m[1]] = true
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	if len(urls) == 0 {
		return nil, eris.New("catalog: no post links found on any index page")
	}
	return urls, nil
}

// Post holds the extracted title and plaintext content of one blog post.
type Post struct {
	URL     string
	Title   string
	Content string
}

// FetchPost downloads a post and extracts its title and main content
// block as plaintext.
func (s *Scraper) FetchPost(ctx context.Context, postURL string) (*Post, error) {
	html, err := s.fetch(ctx, postURL)
	if err != nil {
		return nil, err
	}

	post := &Post{URL: postURL, Title: "Title not found"}
	if m := titleRe.FindStringSubmatch(html); m != nil {
		post.Title = cleanText(m[1])
	}
	if m := contentRe.FindStringSubmatch(html); m != nil {
		post.Content = cleanText(m[1])
	}
	return post, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrapf(err, "catalog: create request %s", url)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ProspectBot/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "catalog: fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", eris.Errorf("catalog: fetch %s: status %d", url, resp.StatusCode)
	}

	reader := decodeCharset(resp.Body, resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(io.LimitReader(reader, 1024*1024))
	if err != nil {
		return "", eris.Wrapf(err, "catalog: read %s", url)
	}
	return string(body), nil
}

// decodeCharset converts a non-UTF-8 response body based on the declared
// charset. Unknown or missing charsets pass the body through unchanged.
func decodeCharset(body io.Reader, contentType string) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	charset, ok := params["charset"]
	if !ok || strings.EqualFold(charset, "utf-8") {
		return body
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return body
	}
	return enc.NewDecoder().Reader(body)
}

// cleanText strips tags, decodes the common entities, and collapses
// whitespace.
func cleanText(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	text = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

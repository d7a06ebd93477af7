package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/daysignal/pkg/models"
)

const (
	newsAPIBaseURL = "https://newsapi.org/v2/everything"
	newsPageSize   = 50

	// maxEntriesPerFeed caps how many items are taken from each RSS feed.
	maxEntriesPerFeed = 20
	// maxSummaryLen truncates article summaries before they reach the prompt.
	maxSummaryLen = 300
)

// Feed is one RSS source. URL templates may contain {query} and {ticker}
// placeholders.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds are keyless RSS fallbacks used when no NewsAPI key is set or
// the NewsAPI call fails.
var DefaultFeeds = []Feed{
	{Name: "Google News", URL: "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en"},
	{Name: "Bing News", URL: "https://www.bing.com/news/search?q={query}&format=rss"},
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/rss/headline?s={ticker}"},
}

// News fetches, deduplicates, and age-filters articles for a topic. An empty
// result is a degraded mode, not an error: the pipeline proceeds without
// headlines.
type News struct {
	apiKey   string
	baseURL  string
	lookback time.Duration
	feeds    []Feed
	cache    *Cache
	limiter  *RateLimiter
	parser   *gofeed.Parser
	log      log.Logger
	now      func() time.Time
}

// NewNews creates a news source. An empty apiKey skips NewsAPI entirely and
// goes straight to the RSS feeds.
func NewNews(apiKey string, lookback time.Duration, logger log.Logger) *News {
	return &News{
		apiKey:   apiKey,
		baseURL:  newsAPIBaseURL,
		lookback: lookback,
		feeds:    DefaultFeeds,
		cache:    NewCache(10 * time.Minute),
		limiter:  NewRateLimiter(2, time.Second),
		parser:   gofeed.NewParser(),
		log:      logger,
		now:      time.Now,
	}
}

// Fetch returns recent unique articles for the topic, newest first. Articles
// without a parseable publish time are kept (and sorted last) rather than
// discarded.
func (n *News) Fetch(ctx context.Context, topic, ticker string) ([]models.Article, error) {
	cacheKey := fmt.Sprintf("news:%s:%s", topic, ticker)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.Article), nil
	}

	var articles []models.Article
	if n.apiKey != "" {
		var err error
		articles, err = n.fetchNewsAPI(ctx, topic)
		if err != nil {
			n.log.Warn().Err(err).Msg("NewsAPI failed, falling back to RSS")
			articles = nil
		}
	}
	if len(articles) == 0 {
		n.log.Info().Msg("using RSS feeds for news ingestion")
		articles = n.fetchRSS(ctx, topic, ticker)
	}

	articles = deduplicate(articles)
	articles = n.filterByLookback(articles)
	sortNewestFirst(articles)

	n.log.Info().Int("count", len(articles)).Msg("news ingestion complete")
	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// --- NewsAPI ---

func (n *News) fetchNewsAPI(ctx context.Context, topic string) ([]models.Article, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	from := n.now().UTC().Add(-n.lookback)
	params := url.Values{}
	params.Set("q", topic)
	params.Set("from", from.Format("2006-01-02T15:04:05"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprint(newsPageSize))
	params.Set("apiKey", n.apiKey)

	n.log.Info().Str("topic", topic).Msg("fetching news from NewsAPI")
	body, _, err := doGet(ctx, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse newsapi response: %w", err)
	}
	if resp.Status != "ok" {
		n.log.Warn().Str("status", resp.Status).Str("message", resp.Message).Msg("NewsAPI returned a non-ok status")
		return nil, nil
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, item := range resp.Articles {
		articles = append(articles, models.Article{
			Title:     strings.TrimSpace(item.Title),
			Source:    coalesce(item.Source.Name, "unknown"),
			Published: item.PublishedAt,
			Summary:   truncate(item.Description, maxSummaryLen),
			URL:       item.URL,
		})
	}
	n.log.Info().Int("count", len(articles)).Msg("NewsAPI returned articles")
	return articles, nil
}

// --- RSS fallback ---

// fetchRSS pulls all configured feeds concurrently. A failing feed is logged
// and skipped; the others still contribute.
func (n *News) fetchRSS(ctx context.Context, topic, ticker string) []models.Article {
	var (
		mu  sync.Mutex
		all []models.Article
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, feed := range n.feeds {
		feed := feed
		g.Go(func() error {
			feedURL := expandFeedURL(feed.URL, topic, ticker)
			if err := n.limiter.Wait(ctx); err != nil {
				return nil
			}
			n.log.Info().Str("feed", feed.Name).Msg("fetching RSS feed")
			parsed, err := n.parser.ParseURLWithContext(feedURL, ctx)
			if err != nil {
				n.log.Warn().Str("feed", feed.Name).Err(err).Msg("RSS feed failed")
				return nil
			}
			articles := feedArticles(parsed, feed.Name)
			mu.Lock()
			all = append(all, articles...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	n.log.Info().Int("count", len(all)).Msg("RSS feeds returned articles")
	return all
}

func feedArticles(feed *gofeed.Feed, sourceName string) []models.Article {
	items := feed.Items
	if len(items) > maxEntriesPerFeed {
		items = items[:maxEntriesPerFeed]
	}
	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		articles = append(articles, models.Article{
			Title:     strings.TrimSpace(item.Title),
			Source:    sourceName,
			Published: published,
			Summary:   truncate(cleanHTML(item.Description), maxSummaryLen),
			URL:       item.Link,
		})
	}
	return articles
}

func expandFeedURL(template, topic, ticker string) string {
	s := strings.ReplaceAll(template, "{query}", url.QueryEscape(topic))
	return strings.ReplaceAll(s, "{ticker}", url.QueryEscape(ticker))
}

// --- Deduplication + filtering ---

// deduplicate drops repeated (url, title) pairs and every article with an
// empty title.
func deduplicate(articles []models.Article) []models.Article {
	seen := make(map[string]bool, len(articles))
	unique := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		key := a.DedupKey()
		if a.Title == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, a)
	}
	return unique
}

// filterByLookback keeps articles published inside the lookback window.
// Unknown or unparseable timestamps are kept: better to include than drop.
func (n *News) filterByLookback(articles []models.Article) []models.Article {
	cutoff := n.now().UTC().Add(-n.lookback)
	filtered := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.Published == "" {
			filtered = append(filtered, a)
			continue
		}
		pub, err := time.Parse(time.RFC3339, a.Published)
		if err != nil || !pub.Before(cutoff) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// sortNewestFirst orders by the published string descending; empty timestamps
// sort to the end.
func sortNewestFirst(articles []models.Article) {
	key := func(a models.Article) string {
		if a.Published == "" {
			return "0000"
		}
		return a.Published
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return key(articles[i]) > key(articles[j])
	})
}

// --- Helpers ---

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// --- Internal Types ---

type newsAPIResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []newsAPIItem `json:"articles"`
}

type newsAPIItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// RSSProvider fetches news items from a single RSS or Atom feed
type RSSProvider struct {
	feedURL string
	name    string
	parser  *gofeed.Parser
}

// NewRSSProvider creates a provider for the given feed URL.
// The provider name is derived from the feed host.
func NewRSSProvider(feedURL string, timeout time.Duration) *RSSProvider {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	name := feedURL
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		name = strings.TrimPrefix(u.Host, "www.")
	}

	return &RSSProvider{
		feedURL: feedURL,
		name:    name,
		parser:  parser,
	}
}

// Name returns the provider identifier
func (p *RSSProvider) Name() string {
	return p.name
}

// Fetch parses the feed and returns items published after since.
// Items without a parseable publish date are kept with the fetch time.
func (p *RSSProvider) Fetch(ctx context.Context, since time.Time) ([]models.NewsItem, error) {
	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", p.feedURL, err)
	}

	now := time.Now().UTC()
	items := make([]models.NewsItem, 0, len(feed.Items))

	for _, entry := range feed.Items {
		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		if published.Before(since) {
			continue
		}

		headline := strings.TrimSpace(entry.Title)
		if headline == "" {
			continue
		}

		body := strings.TrimSpace(entry.Description)
		if body == "" && entry.Content != "" {
			body = strings.TrimSpace(entry.Content)
		}

		items = append(items, models.NewsItem{
			ID:          uuid.NewString(),
			Headline:    headline,
			Body:        body,
			Source:      p.name,
			URL:         entry.Link,
			PublishedAt: published,
			IngestedAt:  now,
		})
	}

	return items, nil
}

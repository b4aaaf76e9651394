// Package competitors derives competitor context text from live sources.
package competitors

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Importer fetches competitor RSS/Atom feeds and condenses them into the
// free-text competitor context the generators accept.
type Importer struct {
	parser *gofeed.Parser
	// maxItems caps how many recent item titles are included per feed.
	maxItems int
}

func NewImporter() *Importer {
	parser := gofeed.NewParser()
	parser.UserAgent = "Copysmith/1.0"
	return &Importer{parser: parser, maxItems: 10}
}

// FromFeed fetches a competitor's feed and returns a one-paragraph summary:
// the feed title followed by its recent item titles. The result is meant to
// be appended to the competitors input of a generation request.
func (im *Importer) FromFeed(ctx context.Context, url string) (string, error) {
	feed, err := im.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return "", fmt.Errorf("fetch competitor feed %s: %w", url, err)
	}

	var titles []string
	for i, item := range feed.Items {
		if i >= im.maxItems {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title != "" {
			titles = append(titles, title)
		}
	}

	name := strings.TrimSpace(feed.Title)
	if name == "" {
		name = url
	}
	if len(titles) == 0 {
		return name, nil
	}
	return fmt.Sprintf("%s (recent content: %s)", name, strings.Join(titles, "; ")), nil
}

// FromFeeds imports several competitor feeds and joins them with newlines,
// matching the one-competitor-per-line input convention. Feeds that fail are
// reported together after the successful ones are collected.
func (im *Importer) FromFeeds(ctx context.Context, urls []string) (string, error) {
	var lines []string
	var failures []string
	for _, url := range urls {
		line, err := im.FromFeed(ctx, url)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 && len(failures) > 0 {
		return "", fmt.Errorf("all competitor feeds failed: %s", strings.Join(failures, "; "))
	}
	return strings.Join(lines, "\n"), nil
}

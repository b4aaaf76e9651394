package competitors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Rival Bakery Blog</title>
    <link>https://rival.example</link>
    <description>Baking news</description>
    <item><title>Our new sourdough line</title><link>https://rival.example/1</link></item>
    <item><title>Croissant masterclass</title><link>https://rival.example/2</link></item>
  </channel>
</rss>`

func TestFromFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testRSS)
	}))
	defer srv.Close()

	im := NewImporter()
	got, err := im.FromFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromFeed failed: %v", err)
	}

	if !strings.HasPrefix(got, "Rival Bakery Blog") {
		t.Errorf("Summary missing feed title: %s", got)
	}
	if !strings.Contains(got, "Our new sourdough line") || !strings.Contains(got, "Croissant masterclass") {
		t.Errorf("Summary missing item titles: %s", got)
	}
}

func TestFromFeedUnreachable(t *testing.T) {
	im := NewImporter()
	if _, err := im.FromFeed(context.Background(), "http://127.0.0.1:1/feed.xml"); err == nil {
		t.Fatal("Expected error for unreachable feed")
	}
}

func TestFromFeedsJoinsLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testRSS)
	}))
	defer srv.Close()

	im := NewImporter()
	got, err := im.FromFeeds(context.Background(), []string{srv.URL, srv.URL})
	if err != nil {
		t.Fatalf("FromFeeds failed: %v", err)
	}
	if len(strings.Split(got, "\n")) != 2 {
		t.Errorf("Expected one line per feed: %q", got)
	}
}

func TestFromFeedsAllFailing(t *testing.T) {
	im := NewImporter()
	if _, err := im.FromFeeds(context.Background(), []string{"http://127.0.0.1:1/a"}); err == nil {
		t.Fatal("Expected error when every feed fails")
	}
}

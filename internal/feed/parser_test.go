package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/newsmania/internal/model"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:atom="http://www.w3.org/2005/Atom">
<channel>
  <title>Metro Desk</title>
  <atom:link href="https://metro.example/rss" rel="self" type="application/rss+xml"/>
  <link>https://metro.example/</link>
  <description>Local news</description>
  <item>
    <title>Bridge reopens after repairs</title>
    <link>https://metro.example/bridge</link>
    <guid>metro-1001</guid>
    <dc:creator>A. Reporter</dc:creator>
    <pubDate>Wed, 01 May 2024 10:00:00 +0200</pubDate>
    <description>Short teaser</description>
    <content:encoded><![CDATA[<p>The bridge <b>reopened</b> on Wednesday, officials said.</p><script>x()</script>]]></content:encoded>
  </item>
  <item>
    <title>Parks & recreation budget</title>
    <link>https://metro.example/parks</link>
    <pubDate>not a date</pubDate>
    <description>Funding rises.</description>
  </item>
</channel>
</rss>`

const atomSample = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Science Wire</title>
  <subtitle>Research news</subtitle>
  <link rel="self" href="https://wire.example/atom.xml"/>
  <link rel="alternate" href="https://wire.example/"/>
  <entry>
    <title>New comet spotted</title>
    <id>tag:wire.example,2024:1</id>
    <link rel="alternate" href="https://wire.example/comet"/>
    <updated>2024-05-02T08:30:00Z</updated>
    <author><name>B. Astronomer</name></author>
    <summary>Astronomers reported a new comet.</summary>
  </entry>
</feed>`

func TestParser_ParseRSS(t *testing.T) {
	feed, err := NewParser(nil, model.HTTPConfig{}, nil).Parse(strings.NewReader(rssSample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if feed.Title != "Metro Desk" || feed.Link != "https://metro.example/" || feed.Description != "Local news" {
		t.Errorf("unexpected channel: %+v", feed)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(feed.Items))
	}

	first := feed.Items[0]
	if first.Title != "Bridge reopens after repairs" || first.Link != "https://metro.example/bridge" || first.GUID != "metro-1001" {
		t.Errorf("unexpected item: %+v", first)
	}
	if first.Creator != "A. Reporter" {
		t.Errorf("expected dc:creator, got %q", first.Creator)
	}
	if first.ISODate != "2024-05-01T08:00:00Z" {
		t.Errorf("unexpected isoDate %q", first.ISODate)
	}
	if !strings.Contains(first.Content, "<b>reopened</b>") {
		t.Errorf("content:encoded should win over description: %q", first.Content)
	}
	if first.ContentSnippet != "The bridge reopened on Wednesday, officials said." {
		t.Errorf("unexpected snippet %q", first.ContentSnippet)
	}

	second := feed.Items[1]
	if second.Title != "Parks & recreation budget" {
		t.Errorf("bare ampersand not handled: %q", second.Title)
	}
	if second.ISODate != "" || second.PubDate != "not a date" {
		t.Errorf("unparseable date should keep raw text only: %+v", second)
	}
	if second.Content != "Funding rises." {
		t.Errorf("description fallback failed: %q", second.Content)
	}
}

func TestParser_ParseAtom(t *testing.T) {
	feed, err := NewParser(nil, model.HTTPConfig{}, nil).Parse(strings.NewReader(atomSample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if feed.Title != "Science Wire" || feed.Link != "https://wire.example/" || feed.Description != "Research news" {
		t.Errorf("unexpected feed: %+v", feed)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(feed.Items))
	}

	entry := feed.Items[0]
	if entry.Link != "https://wire.example/comet" || entry.Creator != "B. Astronomer" || entry.ISODate != "2024-05-02T08:30:00Z" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Content != "Astronomers reported a new comet." {
		t.Errorf("summary fallback failed: %q", entry.Content)
	}
}

func TestParser_ParseUnsupported(t *testing.T) {
	p := NewParser(nil, model.HTTPConfig{}, nil)
	if _, err := p.Parse(strings.NewReader(`<html><body>nope</body></html>`)); err == nil {
		t.Error("expected error for HTML document")
	}
	if _, err := p.Parse(strings.NewReader(``)); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestParser_ParseURL(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/rss" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssSample))
	}))
	defer server.Close()

	p := NewParser(server.Client(), model.HTTPConfig{UserAgent: "Newsmania/0.1", Timeout: 5 * time.Second}, nil)

	feed, err := p.ParseURL(context.Background(), server.URL+"/rss")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if feed.FeedURL != server.URL+"/rss" || len(feed.Items) != 2 {
		t.Errorf("unexpected feed: %+v", feed)
	}
	if gotUA != "Newsmania/0.1" {
		t.Errorf("unexpected user agent %q", gotUA)
	}

	if _, err := p.ParseURL(context.Background(), server.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := p.ParseURL(context.Background(), "file:///etc/passwd"); err == nil {
		t.Error("expected error for non-http URL")
	}
}

func TestFeed_Articles(t *testing.T) {
	feed, err := NewParser(nil, model.HTTPConfig{}, nil).Parse(strings.NewReader(rssSample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	articles := feed.Articles()
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	a := articles[0]
	if a.ID != "metro-1001" || a.Source.Name != "Metro Desk" || a.Author != "A. Reporter" {
		t.Errorf("unexpected article: %+v", a)
	}
	if a.Content != "The bridge reopened on Wednesday, officials said." {
		t.Errorf("content should be plain text: %q", a.Content)
	}

	if !strings.HasPrefix(articles[1].ID, "rss-") {
		t.Errorf("items without guid should get a link hash ID, got %q", articles[1].ID)
	}
}

func TestSnippet_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 100)
	if got := []rune(snippet(long)); len(got) != snippetLength {
		t.Errorf("expected %d characters, got %d", snippetLength, len(got))
	}
}

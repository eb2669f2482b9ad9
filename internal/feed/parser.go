package feed

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/worker"
)

const snippetLength = 300

// Feed is a parsed RSS 2.0 or Atom feed
type Feed struct {
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
	FeedURL     string `json:"feedUrl,omitempty"`
	Items       []Item `json:"items"`
}

// Item is one entry of a feed
type Item struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	GUID           string `json:"guid,omitempty"`
	Creator        string `json:"creator,omitempty"`
	PubDate        string `json:"pubDate,omitempty"`
	ISODate        string `json:"isoDate,omitempty"`
	Content        string `json:"content,omitempty"`
	ContentSnippet string `json:"contentSnippet,omitempty"`
}

// Article converts an item into an article for scoring. The feed title is the source name.
func (i Item) Article(source string) model.Article {
	id := i.GUID
	if id == "" {
		h := sha1.Sum([]byte(i.Link))
		id = "rss-" + hex.EncodeToString(h[:8])
	}
	return model.Article{
		ID:          id,
		Source:      model.Source{Name: source},
		Author:      i.Creator,
		Title:       i.Title,
		Description: i.ContentSnippet,
		URL:         i.Link,
		PublishedAt: i.ISODate,
		Content:     plainText(i.Content),
	}
}

// Articles converts every item of the feed
func (f *Feed) Articles() []model.Article {
	out := make([]model.Article, 0, len(f.Items))
	for _, item := range f.Items {
		out = append(out, item.Article(f.Title))
	}
	return out
}

// Parser fetches and parses feeds
type Parser struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	userAgent  string
	maxBytes   int64
}

// NewParser creates a parser. A nil limiter disables rate limiting.
func NewParser(httpClient *http.Client, cfg model.HTTPConfig, limiter *worker.Limiter) *Parser {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	return &Parser{
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
	}
}

// ParseURL fetches a feed and parses it
func (p *Parser) ParseURL(ctx context.Context, rawURL string) (*Feed, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid feed URL: %q", rawURL)
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	feed, err := p.Parse(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return nil, err
	}
	feed.FeedURL = rawURL

	zap.L().Debug("parsed feed", zap.String("url", rawURL), zap.Int("items", len(feed.Items)))
	return feed, nil
}

// Parse reads an RSS 2.0 or Atom document
func (p *Parser) Parse(r io.Reader) (*Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	data = fixXMLEntities(data)

	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	switch root {
	case "rss", "RDF":
		return parseRSS(data)
	case "feed":
		return parseAtom(data)
	default:
		return nil, fmt.Errorf("unsupported feed format: <%s>", root)
	}
}

// --- RSS ---

type rssDocument struct {
	Channel rssChannel `xml:"channel"`
	Items   []rssItem  `xml:"item"` // RSS 1.0 puts items next to the channel
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Links       []string  `xml:"link"` // also collects empty atom:link elements
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title          string   `xml:"title"`
	Links          []string `xml:"link"`
	GUID           string   `xml:"guid"`
	Description    string   `xml:"description"`
	ContentEncoded string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Creator        string   `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Author         string   `xml:"author"`
	PubDate        string   `xml:"pubDate"`
	DCDate         string   `xml:"http://purl.org/dc/elements/1.1/ date"`
}

func parseRSS(data []byte) (*Feed, error) {
	var doc rssDocument
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("parse RSS XML: %w", err)
	}

	items := append(doc.Channel.Items, doc.Items...)
	feed := &Feed{
		Title:       strings.TrimSpace(doc.Channel.Title),
		Link:        firstNonEmpty(doc.Channel.Links),
		Description: strings.TrimSpace(doc.Channel.Description),
		Items:       make([]Item, 0, len(items)),
	}

	for _, it := range items {
		content := it.ContentEncoded
		if content == "" {
			content = it.Description
		}
		creator := it.Creator
		if creator == "" {
			creator = it.Author
		}
		date := it.PubDate
		if date == "" {
			date = it.DCDate
		}

		feed.Items = append(feed.Items, Item{
			Title:          strings.TrimSpace(it.Title),
			Link:           firstNonEmpty(it.Links),
			GUID:           strings.TrimSpace(it.GUID),
			Creator:        strings.TrimSpace(creator),
			PubDate:        strings.TrimSpace(date),
			ISODate:        isoDate(date),
			Content:        strings.TrimSpace(content),
			ContentSnippet: snippet(content),
		})
	}

	return feed, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// --- Atom ---

type atomFeed struct {
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle"`
	Links    []atomLink  `xml:"link"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	ID        string     `xml:"id"`
	Links     []atomLink `xml:"link"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

func parseAtom(data []byte) (*Feed, error) {
	var doc atomFeed
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("parse Atom XML: %w", err)
	}

	feed := &Feed{
		Title:       strings.TrimSpace(doc.Title),
		Link:        alternateLink(doc.Links),
		Description: strings.TrimSpace(doc.Subtitle),
		Items:       make([]Item, 0, len(doc.Entries)),
	}

	for _, e := range doc.Entries {
		content := e.Content
		if content == "" {
			content = e.Summary
		}
		date := e.Published
		if date == "" {
			date = e.Updated
		}

		feed.Items = append(feed.Items, Item{
			Title:          strings.TrimSpace(e.Title),
			Link:           alternateLink(e.Links),
			GUID:           strings.TrimSpace(e.ID),
			Creator:        strings.TrimSpace(e.Author.Name),
			PubDate:        strings.TrimSpace(date),
			ISODate:        isoDate(date),
			Content:        strings.TrimSpace(content),
			ContentSnippet: snippet(content),
		})
	}

	return feed, nil
}

func alternateLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

// --- helpers ---

// decode tries strict parsing first, then a lenient decoder for sloppy feeds
func decode(data []byte, v any) error {
	if err := xml.Unmarshal(data, v); err == nil {
		return nil
	}
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	return decoder.Decode(v)
}

func rootElement(data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("parse feed: no root element: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// fixXMLEntities escapes bare ampersands that some feeds emit in text
func fixXMLEntities(data []byte) []byte {
	result := bytes.ReplaceAll(data, []byte("& "), []byte("&amp; "))
	result = bytes.ReplaceAll(result, []byte("&,"), []byte("&amp;,"))
	result = bytes.ReplaceAll(result, []byte("&."), []byte("&amp;."))
	return bytes.ReplaceAll(result, []byte("&;"), []byte("&amp;;"))
}

var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	time.RFC3339Nano,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
	"2006-01-02",
}

// isoDate normalizes a feed date to RFC 3339 UTC, or "" when unparseable
func isoDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, value); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// snippet is the plain text of content, truncated
func snippet(content string) string {
	runes := []rune(plainText(content))
	if len(runes) > snippetLength {
		return string(runes[:snippetLength])
	}
	return string(runes)
}

// plainText strips markup and collapses whitespace
func plainText(content string) string {
	text := content
	if strings.Contains(content, "<") {
		if nodes, err := html.ParseFragment(strings.NewReader(content), nil); err == nil {
			var buf strings.Builder
			for _, n := range nodes {
				collectText(n, &buf)
			}
			text = buf.String()
		}
	}

	return strings.Join(strings.Fields(text), " ")
}

func collectText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		buf.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}

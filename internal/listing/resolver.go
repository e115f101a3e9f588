package listing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"folio/internal/config"
	"folio/internal/feed"
	"folio/internal/logging"
	"folio/internal/services"
)

const stageName = "listing"

// ChapterRef identifies one chapter discovered on the landing page.
type ChapterRef struct {
	Slug      string
	SourceURL string
}

// DroppedEntry describes a listing entry that could not become a ChapterRef.
type DroppedEntry struct {
	Position int
	Href     string
	Reason   string
}

// Selectors locate chapter entries in the HTML listing.
type Selectors struct {
	Container  string
	Entry      string
	SlugMarker string
}

// Options configures a Resolver.
type Options struct {
	Source    string
	Selectors Selectors
	Logger    *slog.Logger
	// OnDropped is called for every malformed entry, in listing order.
	OnDropped func(ctx context.Context, entry DroppedEntry)
}

// Resolver fetches and parses the landing page.
type Resolver struct {
	fetcher   feed.Fetcher
	source    string
	selectors Selectors
	logger    *slog.Logger
	onDropped func(context.Context, DroppedEntry)
}

// NewResolver builds a Resolver. Empty selector fields fall back to defaults.
func NewResolver(fetcher feed.Fetcher, opts Options) *Resolver {
	defaults := config.Default().Listing
	sel := opts.Selectors
	if sel.Container == "" {
		sel.Container = defaults.ContainerSelector
	}
	if sel.Entry == "" {
		sel.Entry = defaults.EntrySelector
	}
	if sel.SlugMarker == "" {
		sel.SlugMarker = defaults.SlugMarker
	}
	source := strings.ToLower(strings.TrimSpace(opts.Source))
	if source == "" {
		source = config.SourceHTML
	}
	return &Resolver{
		fetcher:   fetcher,
		source:    source,
		selectors: sel,
		logger:    logging.NewComponentLogger(opts.Logger, "listing"),
		onDropped: opts.OnDropped,
	}
}

// NewFromConfig wires a Resolver from the [feed] and [listing] sections.
func NewFromConfig(cfg *config.Config, fetcher feed.Fetcher, logger *slog.Logger) *Resolver {
	return NewResolver(fetcher, Options{
		Source: cfg.Feed.Source,
		Selectors: Selectors{
			Container:  cfg.Listing.ContainerSelector,
			Entry:      cfg.Listing.EntrySelector,
			SlugMarker: cfg.Listing.SlugMarker,
		},
		Logger: logger,
	})
}

// WithDropHook returns a copy of r that reports malformed entries to fn.
func (r *Resolver) WithDropHook(fn func(context.Context, DroppedEntry)) *Resolver {
	clone := *r
	clone.onDropped = fn
	return &clone
}

// Resolve returns the chapters in listing order. Slugs are unique; repeats
// after the first occurrence are dropped.
func (r *Resolver) Resolve(ctx context.Context, feedURL string) ([]ChapterRef, error) {
	base, err := url.Parse(feedURL)
	if err != nil {
		return nil, services.Wrap(services.ErrUnreachableFeed, stageName, "parse url", feedURL, err)
	}

	body, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, services.Wrap(services.ErrUnreachableFeed, stageName, "fetch", feedURL, err)
	}

	var hrefs []string
	switch r.source {
	case config.SourceRSS:
		hrefs, err = parseSyndication(body)
	default:
		hrefs, err = r.parseHTML(body)
	}
	if err != nil {
		return nil, err
	}

	chapters := make([]ChapterRef, 0, len(hrefs))
	seen := make(map[string]struct{}, len(hrefs))
	for i, href := range hrefs {
		position := i + 1
		if href == "" {
			r.drop(ctx, DroppedEntry{Position: position, Reason: "entry has no link"})
			continue
		}
		target, err := base.Parse(href)
		if err != nil {
			r.drop(ctx, DroppedEntry{Position: position, Href: href, Reason: err.Error()})
			continue
		}
		resolved := target.String()
		slug, err := SlugFromURL(resolved, r.selectors.SlugMarker)
		if err != nil {
			r.drop(ctx, DroppedEntry{Position: position, Href: href, Reason: err.Error()})
			continue
		}
		if _, dup := seen[slug]; dup {
			r.drop(ctx, DroppedEntry{Position: position, Href: href, Reason: "duplicate slug " + slug})
			continue
		}
		seen[slug] = struct{}{}
		chapters = append(chapters, ChapterRef{Slug: slug, SourceURL: resolved})
	}

	r.logger.Info("listing resolved",
		logging.String("feed_url", feedURL),
		logging.String("source", r.source),
		logging.Int("chapters", len(chapters)),
		logging.Int("dropped", len(hrefs)-len(chapters)),
	)
	return chapters, nil
}

func (r *Resolver) parseHTML(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedListing, stageName, "parse html", "", err)
	}
	container := doc.Find(r.selectors.Container).First()
	if container.Length() == 0 {
		return nil, services.Wrap(services.ErrMalformedListing, stageName, "locate container",
			fmt.Sprintf("no element matches %q", r.selectors.Container), nil)
	}

	var hrefs []string
	container.Find(r.selectors.Entry).Each(func(_ int, entry *goquery.Selection) {
		href, _ := entry.Find("a[href]").First().Attr("href")
		hrefs = append(hrefs, strings.TrimSpace(href))
	})
	return hrefs, nil
}

func parseSyndication(body []byte) ([]string, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedListing, stageName, "parse feed", "", err)
	}
	hrefs := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		hrefs = append(hrefs, link)
	}
	return hrefs, nil
}

func (r *Resolver) drop(ctx context.Context, entry DroppedEntry) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "listing entry dropped", "malformed_entry",
		logging.Int("position", entry.Position),
		logging.String("href", entry.Href),
		logging.String("reason", entry.Reason),
		logging.String(logging.FieldErrorHint, "entry skipped; the rest of the listing is processed"),
	)
	if r.onDropped != nil {
		r.onDropped(ctx, entry)
	}
}

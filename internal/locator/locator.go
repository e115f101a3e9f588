// Package locator finds the ordered page images of a chapter page.
package locator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"folio/internal/config"
	"folio/internal/feed"
	"folio/internal/logging"
	"folio/internal/services"
)

const stageName = "discovering"

// Candidate is one image slot in page order. Missing is set when the element
// carried no usable src; the slot keeps its index so later pages do not shift.
type Candidate struct {
	PageIndex int
	SourceURL string
	Missing   bool
}

// Locator fetches a chapter page and extracts its images.
type Locator struct {
	fetcher         feed.Fetcher
	contentSelector string
	imageSelector   string
	logger          *slog.Logger
}

// New builds a Locator. Empty selectors fall back to defaults.
func New(fetcher feed.Fetcher, contentSelector, imageSelector string, logger *slog.Logger) *Locator {
	defaults := config.Default().Locator
	if strings.TrimSpace(contentSelector) == "" {
		contentSelector = defaults.ContentSelector
	}
	if strings.TrimSpace(imageSelector) == "" {
		imageSelector = defaults.ImageSelector
	}
	return &Locator{
		fetcher:         fetcher,
		contentSelector: contentSelector,
		imageSelector:   imageSelector,
		logger:          logging.NewComponentLogger(logger, "locator"),
	}
}

// NewFromConfig wires a Locator from the [locator] section.
func NewFromConfig(cfg *config.Config, fetcher feed.Fetcher, logger *slog.Logger) *Locator {
	return New(fetcher, cfg.Locator.ContentSelector, cfg.Locator.ImageSelector, logger)
}

// Locate returns every image slot of the chapter in order of appearance.
func (l *Locator) Locate(ctx context.Context, chapterURL string) ([]Candidate, error) {
	base, err := url.Parse(chapterURL)
	if err != nil {
		return nil, services.Wrap(services.ErrUnreachableChapter, stageName, "parse url", chapterURL, err)
	}
	body, err := l.fetcher.Fetch(ctx, chapterURL)
	if err != nil {
		return nil, services.Wrap(services.ErrUnreachableChapter, stageName, "fetch", chapterURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedChapter, stageName, "parse html", "", err)
	}
	content := doc.Find(l.contentSelector).First()
	if content.Length() == 0 {
		return nil, services.Wrap(services.ErrMalformedChapter, stageName, "locate content",
			fmt.Sprintf("no element matches %q", l.contentSelector), nil)
	}

	var candidates []Candidate
	content.Find(l.imageSelector).Each(func(i int, img *goquery.Selection) {
		candidate := Candidate{PageIndex: i + 1}
		src, ok := img.Attr("src")
		src = strings.TrimSpace(src)
		if !ok || src == "" {
			candidate.Missing = true
			candidates = append(candidates, candidate)
			return
		}
		target, err := base.Parse(src)
		if err != nil {
			candidate.Missing = true
			candidates = append(candidates, candidate)
			return
		}
		target.Fragment = ""
		candidate.SourceURL = target.String()
		candidates = append(candidates, candidate)
	})

	logging.WithContext(ctx, l.logger).Debug("chapter images located",
		logging.String("url", chapterURL),
		logging.Int("images", len(candidates)),
	)
	return candidates, nil
}

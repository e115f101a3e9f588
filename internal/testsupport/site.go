package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
)

// Chapter describes one chapter served by a Site.
type Chapter struct {
	Slug string
	// Pages holds the image bodies in page order.
	Pages [][]byte
	// FailPages lists 1-based pages whose image request returns 500.
	FailPages []int
	// MissingSrc lists 1-based pages rendered without a src attribute.
	MissingSrc []int
	// Unreachable makes the chapter page itself return 503.
	Unreachable bool
}

// Site is an httptest server imitating the listing widget, chapter pages, and
// image CDN.
type Site struct {
	Server *httptest.Server

	mu          sync.Mutex
	chapters    []Chapter
	landingDown bool
	userAgents  map[string]struct{}
}

// NewSite starts a fake site and registers cleanup.
func NewSite(t testing.TB, chapters ...Chapter) *Site {
	t.Helper()

	site := &Site{chapters: chapters, userAgents: map[string]struct{}{}}
	site.Server = httptest.NewServer(http.HandlerFunc(site.serve))
	t.Cleanup(site.Server.Close)
	return site
}

// URL returns the landing page address.
func (s *Site) URL() string {
	return s.Server.URL + "/"
}

// SetLandingDown makes the landing page return 503.
func (s *Site) SetLandingDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.landingDown = down
}

// SetFailPages replaces the failing pages of the chapter with slug.
func (s *Site) SetFailPages(slug string, pages ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chapters := slices.Clone(s.chapters)
	for i := range chapters {
		if chapters[i].Slug == slug {
			chapters[i].FailPages = pages
		}
	}
	s.chapters = chapters
}

// UserAgents returns every distinct User-Agent seen.
func (s *Site) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.userAgents))
	for agent := range s.userAgents {
		out = append(out, agent)
	}
	return out
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.userAgents[r.UserAgent()] = struct{}{}
	landingDown := s.landingDown
	chapters := s.chapters
	s.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/":
		if landingDown {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		s.writeLanding(w, chapters)
	case strings.HasPrefix(path, "/manga/"):
		slug := strings.Trim(strings.TrimPrefix(path, "/manga/"), "/")
		chapter, ok := findChapter(chapters, slug)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if chapter.Unreachable {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		s.writeChapter(w, chapter)
	case strings.HasPrefix(path, "/img/"):
		var page int
		parts := strings.Split(strings.TrimPrefix(path, "/img/"), "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		slug := parts[0]
		if _, err := fmt.Sscanf(parts[1], "%d.png", &page); err != nil {
			http.NotFound(w, r)
			return
		}
		chapter, ok := findChapter(chapters, slug)
		if !ok || page < 1 || page > len(chapter.Pages) {
			http.NotFound(w, r)
			return
		}
		if slices.Contains(chapter.FailPages, page) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(chapter.Pages[page-1])
	default:
		http.NotFound(w, r)
	}
}

func (s *Site) writeLanding(w http.ResponseWriter, chapters []Chapter) {
	var b strings.Builder
	b.WriteString(`<html><body><ul><li id="ceo_latest_comics_widget-3"><ul>`)
	for _, chapter := range chapters {
		fmt.Fprintf(&b, `<li><a href="%s/manga/%s/">%s</a></li>`, s.Server.URL, chapter.Slug, chapter.Slug)
	}
	b.WriteString(`</ul></li></ul></body></html>`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Site) writeChapter(w http.ResponseWriter, chapter Chapter) {
	var b strings.Builder
	b.WriteString(`<html><body><div class="entry-content">`)
	for i := range chapter.Pages {
		page := i + 1
		if slices.Contains(chapter.MissingSrc, page) {
			b.WriteString(`<p><img class="article_ed__img" alt="missing"></p>`)
			continue
		}
		fmt.Fprintf(&b, `<p><img class="article_ed__img" src="/img/%s/%d.png"></p>`, chapter.Slug, page)
	}
	b.WriteString(`</div></body></html>`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func findChapter(chapters []Chapter, slug string) (Chapter, bool) {
	for _, chapter := range chapters {
		if chapter.Slug == slug {
			return chapter, true
		}
	}
	return Chapter{}, false
}

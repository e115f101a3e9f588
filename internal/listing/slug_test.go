package listing_test

import (
	"testing"

	"folio/internal/listing"
)

func TestSlugFromURL(t *testing.T) {
	tests := []struct {
		href    string
		want    string
		wantErr bool
	}{
		{href: "https://example.com/manga/chapter-12/", want: "chapter-12"},
		{href: "https://example.com/manga/chapter-12/page/2", want: "chapter-12"},
		{href: "/manga/gachiakuta-chapter-1/", want: "gachiakuta-chapter-1"},
		{href: "https://example.com/manga/chapter-12", wantErr: true},
		{href: "https://example.com/manga//", wantErr: true},
		{href: "https://example.com/comic/chapter-12/", wantErr: true},
		{href: "https://example.com/manga/../", wantErr: true},
		{href: "https://example.com/manga/a:b/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := listing.SlugFromURL(tt.href, "manga/")
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SlugFromURL(%q) = %q, expected error", tt.href, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SlugFromURL(%q) returned error: %v", tt.href, err)
		}
		if got != tt.want {
			t.Fatalf("SlugFromURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

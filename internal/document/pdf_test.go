package document_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"folio/internal/document"
	"folio/internal/services"
	"folio/internal/testsupport"
)

func pageWidths(t *testing.T, doc []byte) []float64 {
	t.Helper()
	dims, err := api.PageDims(bytes.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("PageDims: %v", err)
	}
	widths := make([]float64, 0, len(dims))
	for _, dim := range dims {
		widths = append(widths, dim.Width)
	}
	return widths
}

func increasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}

func decreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return false
		}
	}
	return true
}

func TestPDFCodecRoundTrip(t *testing.T) {
	codec := document.NewPDFCodec()
	images := [][]byte{
		testsupport.PNG(t, 20, 40),
		testsupport.PNG(t, 40, 40),
		testsupport.PNG(t, 60, 40),
	}

	doc, err := codec.Encode(context.Background(), images)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	n, err := codec.PageCount(context.Background(), doc)
	if err != nil {
		t.Fatalf("PageCount returned error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pages, got %d", n)
	}
	if widths := pageWidths(t, doc); !increasing(widths) {
		t.Fatalf("expected pages in source order, widths %v", widths)
	}

	reverser := document.NewReverser(codec, nil)
	reversed, err := reverser.Reverse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Reverse returned error: %v", err)
	}
	if widths := pageWidths(t, reversed); len(widths) != 3 || !decreasing(widths) {
		t.Fatalf("expected reversed pages, widths %v", widths)
	}

	restored, err := reverser.Reverse(context.Background(), reversed)
	if err != nil {
		t.Fatalf("second Reverse returned error: %v", err)
	}
	if widths := pageWidths(t, restored); len(widths) != 3 || !increasing(widths) {
		t.Fatalf("expected original order after double reverse, widths %v", widths)
	}
}

func TestPDFCodecRejectsNonImages(t *testing.T) {
	codec := document.NewPDFCodec()
	if _, err := codec.Encode(context.Background(), [][]byte{[]byte("<html>not an image</html>")}); err == nil {
		t.Fatal("expected encode error for non-image input")
	}
}

func TestPDFReverseRejectsGarbage(t *testing.T) {
	reverser := document.NewReverser(document.NewPDFCodec(), nil)
	if _, err := reverser.Reverse(context.Background(), []byte("%PDF-garbage")); !errors.Is(err, services.ErrReverse) {
		t.Fatalf("expected ErrReverse, got %v", err)
	}
}

package document_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
)

// fakeCodec stores pages as newline separated tokens after a header line.
type fakeCodec struct {
	encodeErr error
}

const fakeHeader = "FAKEDOC"

func (f fakeCodec) Encode(_ context.Context, images [][]byte) ([]byte, error) {
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	parts := []string{fakeHeader}
	for _, img := range images {
		parts = append(parts, string(img))
	}
	return []byte(strings.Join(parts, "\n")), nil
}

func (fakeCodec) PageCount(_ context.Context, doc []byte) (int, error) {
	pages, err := fakePages(doc)
	return len(pages), err
}

func (fakeCodec) Reorder(_ context.Context, doc []byte, order []int) ([]byte, error) {
	pages, err := fakePages(doc)
	if err != nil {
		return nil, err
	}
	parts := []string{fakeHeader}
	for _, page := range order {
		if page < 1 || page > len(pages) {
			return nil, fmt.Errorf("page %d out of range", page)
		}
		parts = append(parts, pages[page-1])
	}
	return []byte(strings.Join(parts, "\n")), nil
}

func fakePages(doc []byte) ([]string, error) {
	lines := strings.Split(string(doc), "\n")
	if len(lines) == 0 || lines[0] != fakeHeader {
		return nil, errors.New("not a fake document")
	}
	if len(lines) == 1 {
		return nil, nil
	}
	return lines[1:], nil
}

func pagesOf(doc []byte) []string {
	pages, _ := fakePages(bytes.Clone(doc))
	return pages
}

package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Codec encodes images into a paginated document and rearranges pages of an
// existing one.
type Codec interface {
	// Encode builds a document with one page per image, in slice order.
	Encode(ctx context.Context, images [][]byte) ([]byte, error)
	// PageCount reports the number of pages in doc.
	PageCount(ctx context.Context, doc []byte) (int, error)
	// Reorder emits a document whose i-th page is page order[i] (1-based) of
	// doc. Page content is carried over, not re-encoded.
	Reorder(ctx context.Context, doc []byte, order []int) ([]byte, error)
}

var disableConfigDir sync.Once

// PDFCodec implements Codec with pdfcpu. Each image becomes a page sized to
// the image.
type PDFCodec struct {
	conf *model.Configuration
}

// NewPDFCodec returns a codec with relaxed validation so documents written by
// other producers can still be reversed.
func NewPDFCodec() *PDFCodec {
	// pdfcpu otherwise installs a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCodec{conf: conf}
}

func (c *PDFCodec) Encode(ctx context.Context, images [][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("encode: no images")
	}
	readers := make([]io.Reader, 0, len(images))
	for _, img := range images {
		readers = append(readers, bytes.NewReader(img))
	}
	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, nil, c.conf); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}
	return out.Bytes(), nil
}

func (c *PDFCodec) PageCount(ctx context.Context, doc []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := api.PageCount(bytes.NewReader(doc), c.conf)
	if err != nil {
		return 0, fmt.Errorf("read page count: %w", err)
	}
	return n, nil
}

func (c *PDFCodec) Reorder(ctx context.Context, doc []byte, order []int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	selection := make([]string, 0, len(order))
	for _, page := range order {
		selection = append(selection, strconv.Itoa(page))
	}
	var out bytes.Buffer
	if err := api.Collect(bytes.NewReader(doc), &out, selection, c.conf); err != nil {
		return nil, fmt.Errorf("collect pages: %w", err)
	}
	return out.Bytes(), nil
}

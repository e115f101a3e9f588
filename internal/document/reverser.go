package document

import (
	"context"
	"log/slog"

	"folio/internal/logging"
	"folio/internal/services"
)

// Reverser emits documents with their page order inverted.
type Reverser struct {
	codec  Codec
	logger *slog.Logger
}

// NewReverser builds a Reverser on codec.
func NewReverser(codec Codec, logger *slog.Logger) *Reverser {
	return &Reverser{codec: codec, logger: logging.NewComponentLogger(logger, "reverser")}
}

// Reverse returns doc with pages n..1.
func (r *Reverser) Reverse(ctx context.Context, doc []byte) ([]byte, error) {
	n, err := r.codec.PageCount(ctx, doc)
	if err != nil {
		return nil, services.Wrap(services.ErrReverse, "reversing", "read document", "", err)
	}
	if n <= 0 {
		return nil, services.Wrap(services.ErrReverse, "reversing", "read document", "document has no pages", nil)
	}

	out, err := r.codec.Reorder(ctx, doc, ReverseOrder(n))
	if err != nil {
		return nil, services.Wrap(services.ErrReverse, "reversing", "reorder", "", err)
	}
	logging.WithContext(ctx, r.logger).Debug("document reversed", logging.Int("pages", n))
	return out, nil
}

// ReverseOrder returns the 1-based page list n, n-1, ..., 1.
func ReverseOrder(n int) []int {
	order := make([]int, 0, n)
	for page := n; page >= 1; page-- {
		order = append(order, page)
	}
	return order
}

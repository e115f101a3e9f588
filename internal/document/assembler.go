package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"folio/internal/fetchpool"
	"folio/internal/logging"
	"folio/internal/services"
)

// Document is an encoded PDF with the page indices it was built from.
type Document struct {
	Data  []byte
	Pages []int
}

// Assembler turns downloaded tasks into a Document.
type Assembler struct {
	codec  Codec
	logger *slog.Logger
}

// NewAssembler builds an Assembler on codec.
func NewAssembler(codec Codec, logger *slog.Logger) *Assembler {
	return &Assembler{codec: codec, logger: logging.NewComponentLogger(logger, "assembler")}
}

// Assemble encodes the Downloaded tasks sorted by PageIndex. Failed tasks are
// skipped. With no Downloaded task it returns ErrEmptyChapter and encodes
// nothing.
func (a *Assembler) Assemble(ctx context.Context, tasks []*fetchpool.ImageTask) (Document, error) {
	ready := make([]*fetchpool.ImageTask, 0, len(tasks))
	for _, task := range tasks {
		if task.Outcome.State == fetchpool.Downloaded {
			ready = append(ready, task)
		}
	}
	if len(ready) == 0 {
		return Document{}, services.Wrap(services.ErrEmptyChapter, "assembling", "", "no pages downloaded", nil)
	}
	sort.SliceStable(ready, func(i, j int) bool { return ready[i].PageIndex < ready[j].PageIndex })

	images := make([][]byte, 0, len(ready))
	pages := make([]int, 0, len(ready))
	for _, task := range ready {
		data, err := os.ReadFile(task.LocalPath)
		if err != nil {
			return Document{}, services.Wrap(services.ErrAssembly, "assembling", "read image",
				fmt.Sprintf("page %d", task.PageIndex), err)
		}
		images = append(images, data)
		pages = append(pages, task.PageIndex)
	}

	data, err := a.codec.Encode(ctx, images)
	if err != nil {
		return Document{}, services.Wrap(services.ErrAssembly, "assembling", "encode", "", err)
	}
	logging.WithContext(ctx, a.logger).Debug("document assembled",
		logging.Int("pages", len(pages)),
		logging.Int("bytes", len(data)),
	)
	return Document{Data: data, Pages: pages}, nil
}

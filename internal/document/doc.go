// Package document assembles downloaded page images into a PDF and produces
// its reading-order-reversed twin.
//
// Page order always comes from ImageTask.PageIndex, never from directory
// listings. The encoding itself sits behind Codec so the pipeline can be
// exercised without a real PDF library; PDFCodec is the production
// implementation.
package document

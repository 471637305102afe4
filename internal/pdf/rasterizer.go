package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

// Page is one rendered PDF page.
type Page struct {
	Number int // 1-based
	Image  image.Image
}

// EncodedPage is one rendered page as encoded bytes, ready for the
// multimodal OCR call.
type EncodedPage struct {
	Number   int
	MIMEType string
	Data     []byte
}

// Rasterizer renders PDF documents to images via MuPDF.
type Rasterizer struct {
	jpegQuality int
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{jpegQuality: 85}
}

// RenderPages renders every page of the PDF at the given DPI.
func (r *Rasterizer) RenderPages(path string, dpi int) ([]Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer doc.Close()

	pages := make([]Page, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d of %s: %w", i+1, path, err)
		}
		pages = append(pages, Page{Number: i + 1, Image: img})
	}

	return pages, nil
}

// RenderJPEGPages renders every page and JPEG-encodes it for transport to
// the OCR model.
func (r *Rasterizer) RenderJPEGPages(path string, dpi int) ([]EncodedPage, error) {
	pages, err := r.RenderPages(path, dpi)
	if err != nil {
		return nil, err
	}

	encoded := make([]EncodedPage, 0, len(pages))
	for _, page := range pages {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, page.Image, &jpeg.Options{Quality: r.jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d of %s: %w", page.Number, path, err)
		}
		encoded = append(encoded, EncodedPage{
			Number:   page.Number,
			MIMEType: "image/jpeg",
			Data:     buf.Bytes(),
		})
	}

	return encoded, nil
}

package ingest

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// pdfChunks walks a PDF page by page, chunking extracted text and
// converting each embedded raster image into an image chunk. A corrupt
// page or image never aborts the document: the failure is logged and
// the walk continues.
func (i *Ingestor) pdfChunks(content []byte, fileName string) (chunks []domain.Chunk, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf %s: %v", fileName, r)
		}
	}()

	reader := bytes.NewReader(content)
	doc, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, 0, fmt.Errorf("opening pdf %s: %w", fileName, err)
	}

	pageCount := doc.NumPage()

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text := extractPageText(page, fileName, pageNum)
		chunks = append(chunks, i.textChunks(text, fileName, pageNum)...)
		chunks = append(chunks, extractPageImages(page, fileName, pageNum)...)
	}

	return chunks, pageCount, nil
}

// extractPageText pulls the plain text of one page. The underlying
// parser panics on some malformed content streams, so the page is
// isolated behind a recover.
func extractPageText(page pdf.Page, fileName string, pageNum int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("text extraction panicked on %s page %d: %v", fileName, pageNum, r)
			text = ""
		}
	}()

	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Warn("failed to extract text from %s page %d: %v", fileName, pageNum, err)
		return ""
	}
	return text
}

// extractPageImages converts each image XObject on a page into an
// image chunk. Individual failures are skipped, never fatal.
func extractPageImages(page pdf.Page, fileName string, pageNum int) []domain.Chunk {
	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return nil
	}
	xobjects := resources.Key("XObject")
	if xobjects.IsNull() || xobjects.Kind() != pdf.Dict {
		return nil
	}

	var chunks []domain.Chunk
	imageIndex := 0

	for _, name := range xobjects.Keys() {
		obj := xobjects.Key(name)
		if obj.Kind() != pdf.Stream || obj.Key("Subtype").Name() != "Image" {
			continue
		}
		imageIndex++

		payload, err := decodeImageXObject(obj)
		if err != nil {
			logger.Warn("skipping image %d on %s page %d: %v", imageIndex, fileName, pageNum, err)
			continue
		}

		chunks = append(chunks, domain.Chunk{
			Type:       domain.ChunkTypeImage,
			Content:    fmt.Sprintf("Image from %s, Page %d, Image %d", fileName, pageNum, imageIndex),
			ImageData:  payload,
			FileName:   fileName,
			PageNumber: pageNum,
			ImageIndex: imageIndex,
		})
	}

	return chunks
}

// decodeImageXObject reads an image stream and normalises it to a
// base64 PNG payload. Raw Flate-compressed RGB and grayscale samples
// are reconstructed from the stream dictionary; self-describing
// formats go through image.Decode.
func decodeImageXObject(obj pdf.Value) (payload string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("image stream panicked: %v", r)
		}
	}()

	data, err := io.ReadAll(obj.Reader())
	if err != nil {
		return "", fmt.Errorf("reading image stream: %w", err)
	}

	img, err := decodeImageSamples(obj, data)
	if err != nil {
		return "", err
	}

	return encodeImagePayload(img)
}

// decodeImageSamples turns decoded stream bytes into an image.Image.
func decodeImageSamples(obj pdf.Value, data []byte) (image.Image, error) {
	// Self-describing payload (JPEG passed through, PNG, ...).
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	width := int(obj.Key("Width").Int64())
	height := int(obj.Key("Height").Int64())
	bits := int(obj.Key("BitsPerComponent").Int64())
	colorSpace := obj.Key("ColorSpace").Name()

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image has invalid dimensions %dx%d", width, height)
	}
	if bits != 8 {
		return nil, fmt.Errorf("unsupported bits per component: %d", bits)
	}

	switch colorSpace {
	case "DeviceRGB":
		if len(data) < width*height*3 {
			return nil, fmt.Errorf("short RGB sample data: %d bytes for %dx%d", len(data), width, height)
		}
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				off := (y*width + x) * 3
				pix := img.PixOffset(x, y)
				img.Pix[pix] = data[off]
				img.Pix[pix+1] = data[off+1]
				img.Pix[pix+2] = data[off+2]
				img.Pix[pix+3] = 0xff
			}
		}
		return img, nil

	case "DeviceGray":
		if len(data) < width*height {
			return nil, fmt.Errorf("short gray sample data: %d bytes for %dx%d", len(data), width, height)
		}
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, data[:width*height])
		return img, nil

	default:
		return nil, fmt.Errorf("unsupported color space %q", colorSpace)
	}
}

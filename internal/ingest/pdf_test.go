package ingest

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// buildPDF assembles a single-xref PDF from numbered object bodies.
// Object n is objects[n-1]; offsets are computed so the file parses
// without repair.
func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)
	return buf.Bytes()
}

// textOnlyPDF is one page with a single Helvetica text run.
func textOnlyPDF(t *testing.T, text string) []byte {
	t.Helper()
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	})
}

// imagePDF is one page with a text run and one embedded 2x2 DeviceRGB
// image XObject.
func imagePDF(t *testing.T, text string) []byte {
	t.Helper()

	// 2x2 raw RGB samples, zlib-compressed as FlateDecode requires.
	samples := []byte{
		0xff, 0x00, 0x00, 0x00, 0xff, 0x00,
		0x00, 0x00, 0xff, 0xff, 0xff, 0xff,
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(samples); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET\nq 100 0 0 100 72 500 cm /Im1 Do Q", text)
	imageDict := fmt.Sprintf(
		"<< /Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode /Length %d >>",
		compressed.Len(),
	)
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 6 0 R >> /XObject << /Im1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		imageDict + "\nstream\n" + compressed.String() + "\nendstream",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	})
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestChunk_PDFTextOnly(t *testing.T) {
	path := writeTemp(t, "report.pdf", textOnlyPDF(t, "Quarterly revenue held steady"))

	ing, err := New(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	chunks, meta, err := ing.Chunk(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected 1 text chunk, got %d", len(chunks))
	}
	if chunks[0].Type != domain.ChunkTypeText {
		t.Errorf("expected text chunk, got %s", chunks[0].Type)
	}
	if !strings.Contains(chunks[0].Content, "Quarterly revenue") {
		t.Errorf("page text missing from chunk: %q", chunks[0].Content)
	}
	if chunks[0].PageNumber != 1 {
		t.Errorf("expected page number 1, got %d", chunks[0].PageNumber)
	}

	if meta.PageCount != 1 {
		t.Errorf("expected page count 1, got %d", meta.PageCount)
	}
	if meta.FileType != domain.FileTypeText {
		t.Errorf("text-only pdf should aggregate to text, got %s", meta.FileType)
	}
}

func TestChunk_PDFWithEmbeddedImage(t *testing.T) {
	path := writeTemp(t, "mixed.pdf", imagePDF(t, "Figure one shows the layout"))

	ing, err := New(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	chunks, meta, err := ing.Chunk(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var textChunks, imageChunks []domain.Chunk
	for _, c := range chunks {
		switch c.Type {
		case domain.ChunkTypeText:
			textChunks = append(textChunks, c)
		case domain.ChunkTypeImage:
			imageChunks = append(imageChunks, c)
		}
	}

	if len(textChunks) != 1 {
		t.Fatalf("expected 1 text chunk, got %d", len(textChunks))
	}
	if len(imageChunks) != 1 {
		t.Fatalf("expected 1 image chunk, got %d", len(imageChunks))
	}

	img := imageChunks[0]
	want := "Image from mixed.pdf, Page 1, Image 1"
	if img.Content != want {
		t.Errorf("image description %q, want %q", img.Content, want)
	}
	if img.ImageData == "" {
		t.Error("expected a base64 payload on the image chunk")
	}
	if img.PageNumber != 1 || img.ImageIndex != 1 {
		t.Errorf("unexpected placement: page=%d image=%d", img.PageNumber, img.ImageIndex)
	}

	if meta.FileType != domain.FileTypeMixed {
		t.Errorf("pdf with text and images should aggregate to mixed, got %s", meta.FileType)
	}
	if !meta.HasText || !meta.HasImages {
		t.Errorf("unexpected modality flags: has_text=%t has_images=%t", meta.HasText, meta.HasImages)
	}
}

func TestChunk_CorruptPDF(t *testing.T) {
	path := writeTemp(t, "broken.pdf", []byte("%PDF-1.4\nthis is not a real pdf"))

	ing, err := New(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := ing.Chunk(context.Background(), path); err == nil {
		t.Error("expected an error for a structurally broken pdf")
	}
}

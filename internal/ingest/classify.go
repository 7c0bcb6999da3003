package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// Extension allow-lists. The three sets are disjoint; anything outside
// them is rejected before any processing.
var (
	textExtensions = map[string]bool{
		".txt": true,
		".md":  true,
		".csv": true,
	}

	imageExtensions = map[string]bool{
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".gif":  true,
		".bmp":  true,
	}

	pdfExtensions = map[string]bool{
		".pdf": true,
	}
)

// Classify determines the file type from the path's extension.
// Returns domain.ErrUnsupportedType for anything outside the
// allow-lists.
func Classify(path string) (domain.FileType, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case textExtensions[ext]:
		return domain.FileTypeText, nil
	case imageExtensions[ext]:
		return domain.FileTypeImage, nil
	case pdfExtensions[ext]:
		return domain.FileTypePDF, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
}

package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UnitKind identifies the kind of region a unit covers
type UnitKind string

const (
	KindParagraph    UnitKind = "paragraph"
	KindTableCell    UnitKind = "tableCell"
	KindMergedRegion UnitKind = "mergedCellRegion"
)

// OutputMode controls how translated text is written back
type OutputMode int

const (
	// ModeBilingual appends the translation after the original content
	ModeBilingual OutputMode = iota
	// ModeTranslationOnly replaces the original content
	ModeTranslationOnly
)

// ParseOutputMode parses a config value into an OutputMode
func ParseOutputMode(name string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bilingual":
		return ModeBilingual, nil
	case "translation_only", "translation-only", "replace":
		return ModeTranslationOnly, nil
	default:
		return ModeBilingual, fmt.Errorf("unknown output mode: %q", name)
	}
}

// Unit is an opaque handle to one translatable region plus its extracted
// plain text. Units are created by the walker, written through exactly once,
// and never retained past one pipeline pass.
type Unit interface {
	// Kind returns the region kind
	Kind() UnitKind

	// Text returns the extracted plain text
	Text() string

	// Ref returns a human-readable location for logs (e.g. "Sheet1!B2")
	Ref() string

	// WriteBilingual appends the translation after the original content,
	// visually distinguished; the original is never removed
	WriteBilingual(translated string) error

	// WriteTranslationOnly replaces the original content with the translation
	WriteTranslationOnly(translated string) error
}

// Document is an already-open, mutable in-memory document model
type Document interface {
	// Units enumerates translatable units in document order
	Units() ([]Unit, error)

	// Save writes the document to path; the input file is never overwritten
	Save(path string) error

	// Close releases underlying resources
	Close() error
}

// Open opens a document by file extension
func Open(path string, logger *zap.Logger) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return OpenDocx(path, logger)
	case ".xlsx":
		return OpenXlsx(path, logger)
	default:
		return nil, fmt.Errorf("unsupported document format: %s", filepath.Ext(path))
	}
}

// OutputPath builds the output file path:
// {originalBaseName}_translated_{timestamp}{ext} inside outputDir.
func OutputPath(inputPath, outputDir string, now time.Time) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	name := fmt.Sprintf("%s_translated_%s%s", base, now.Format("20060102_150405"), ext)
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	return filepath.Join(outputDir, name)
}

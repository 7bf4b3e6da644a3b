package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/blockbook/internal/block"
	"golang.org/x/net/html"
)

// ErrUnsupported is returned for file types with no importer.
var ErrUnsupported = errors.New("unsupported file type")

// Importer converts a raw document into blocks.
type Importer interface {
	Import(r io.Reader, filename string) ([]block.Block, error)
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes importers that need it.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the importer for a filename.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func heading(level int, content string) block.Block {
	return block.New("core/heading", map[string]any{"level": level, "content": content})
}

func paragraph(content string) block.Block {
	return block.New("core/paragraph", map[string]any{"content": content})
}

// textParagraphs splits plain text on blank lines into escaped paragraphs;
// single line breaks become <br>.
func textParagraphs(text string) []block.Block {
	var out []block.Block
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		escaped := make([]string, len(current))
		for i, line := range current {
			escaped[i] = html.EscapeString(line)
		}
		out = append(out, paragraph(strings.Join(escaped, "<br>")))
		current = nil
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	flush()
	return out
}

package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/blockbook/internal/block"
)

// TextImporter handles plain text files.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) ([]block.Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var text strings.Builder
	for scanner.Scan() {
		text.WriteString(scanner.Text())
		text.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return textParagraphs(text.String()), nil
}

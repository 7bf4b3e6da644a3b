package block

import (
	"encoding/json"
	"strings"
)

// Serialize writes blocks back to delimiter markup. Top-level blocks are
// separated by a blank line.
func Serialize(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, serializeBlock(b))
	}
	return strings.Join(parts, "\n\n")
}

func serializeBlock(b Block) string {
	if b.IsFreeform() {
		return b.InnerHTML
	}

	var sb strings.Builder
	sb.WriteString("<!-- wp:")
	sb.WriteString(strings.TrimPrefix(b.Name, DefaultNamespace+"/"))
	if len(b.Attrs) > 0 {
		if data, err := json.Marshal(b.Attrs); err == nil {
			sb.WriteByte(' ')
			// "--" would terminate the HTML comment early.
			sb.WriteString(strings.ReplaceAll(string(data), "--", `\u002d\u002d`))
		}
	}

	content := innerContent(b)
	if content == "" {
		sb.WriteString(" /-->")
		return sb.String()
	}
	sb.WriteString(" -->")
	sb.WriteString(content)
	sb.WriteString("<!-- /wp:")
	sb.WriteString(strings.TrimPrefix(b.Name, DefaultNamespace+"/"))
	sb.WriteString(" -->")
	return sb.String()
}

func innerContent(b Block) string {
	if len(b.InnerContent) == len(b.InnerBlocks)+1 {
		var sb strings.Builder
		for i, seg := range b.InnerContent {
			sb.WriteString(seg)
			if i < len(b.InnerBlocks) {
				sb.WriteString(serializeBlock(b.InnerBlocks[i]))
			}
		}
		return sb.String()
	}
	if len(b.InnerBlocks) == 0 {
		return b.InnerHTML
	}
	parts := make([]string, 0, len(b.InnerBlocks))
	for _, inner := range b.InnerBlocks {
		parts = append(parts, serializeBlock(inner))
	}
	return b.InnerHTML + "\n" + strings.Join(parts, "\n") + "\n"
}

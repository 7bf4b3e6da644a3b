package importer

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// MarkdownImporter handles Markdown files using goldmark.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) ([]block.Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))
	c := &mdConverter{src: src, r: md.Renderer()}
	return c.children(doc)
}

type mdConverter struct {
	src []byte
	r   renderer.Renderer
}

func (c *mdConverter) children(parent ast.Node) ([]block.Block, error) {
	var out []block.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		bs, err := c.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, bs...)
	}
	return out, nil
}

func (c *mdConverter) node(n ast.Node) ([]block.Block, error) {
	switch node := n.(type) {
	case *ast.Heading:
		content, err := c.inline(node)
		if err != nil {
			return nil, err
		}
		return []block.Block{heading(node.Level, content)}, nil

	case *ast.Paragraph, *ast.TextBlock:
		// A paragraph holding only an image becomes an image block.
		if img, ok := n.FirstChild().(*ast.Image); ok && n.ChildCount() == 1 {
			return []block.Block{block.New("core/image", map[string]any{
				"url": string(img.Destination),
				"alt": plainText(img, c.src),
			})}, nil
		}
		content, err := c.inline(n)
		if err != nil {
			return nil, err
		}
		if content == "" {
			return nil, nil
		}
		return []block.Block{paragraph(content)}, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return []block.Block{block.New("core/code", map[string]any{
			"content": html.EscapeString(strings.TrimRight(lines(n, c.src), "\n")),
		})}, nil

	case *ast.Blockquote:
		inner, err := c.children(node)
		if err != nil {
			return nil, err
		}
		return []block.Block{block.New("core/quote", nil, inner...)}, nil

	case *ast.List:
		items := make([]block.Block, 0, node.ChildCount())
		for li := node.FirstChild(); li != nil; li = li.NextSibling() {
			item, err := c.listItem(li)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return []block.Block{block.New("core/list", map[string]any{"ordered": node.IsOrdered()}, items...)}, nil

	case *ast.ThematicBreak:
		return []block.Block{block.New("core/separator", nil)}, nil

	case *ast.HTMLBlock:
		raw := lines(node, c.src)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(c.src))
		}
		return []block.Block{block.New("core/html", map[string]any{"content": strings.TrimSpace(raw)})}, nil
	}
	return nil, nil
}

// listItem keeps the item's own text as content and nested lists as
// inner blocks.
func (c *mdConverter) listItem(li ast.Node) (block.Block, error) {
	var parts []string
	var inner []block.Block
	for n := li.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			content, err := c.inline(n)
			if err != nil {
				return block.Block{}, err
			}
			if content != "" {
				parts = append(parts, content)
			}
		default:
			bs, err := c.node(n)
			if err != nil {
				return block.Block{}, err
			}
			inner = append(inner, bs...)
		}
	}
	return block.New("core/list-item", map[string]any{"content": strings.Join(parts, "<br>")}, inner...), nil
}

// inline renders the inline children of n to HTML.
func (c *mdConverter) inline(n ast.Node) (string, error) {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if err := c.r.Render(&buf, c.src, child); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func lines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	l := n.Lines()
	for i := 0; i < l.Len(); i++ {
		seg := l.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

// plainText gets the text content of a goldmark AST node.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.WriteString(plainText(c, src))
	}
	return strings.TrimSpace(buf.String())
}

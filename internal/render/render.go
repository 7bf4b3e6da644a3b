// Package render turns block trees into HTML for previews. Blocks parsed from
// markup keep their saved HTML; blocks built from attributes alone (examples,
// imports) are rendered from their attributes.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/blockbook/internal/block"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML renders blocks to an HTML string.
func HTML(blocks []block.Block) (string, error) {
	nodes, err := Nodes(blocks)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return sb.String(), nil
}

// Nodes renders blocks to detached HTML nodes.
func Nodes(blocks []block.Block) ([]*html.Node, error) {
	var out []*html.Node
	for _, b := range blocks {
		nodes, err := renderBlock(b)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", b.Name, err)
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// Element builds a detached element node.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text builds a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Fragment parses rich-text content in the context of parent and appends the
// result to it.
func Fragment(parent *html.Node, content string) error {
	ctx := &html.Node{Type: html.ElementNode, Data: parent.Data, DataAtom: parent.DataAtom}
	if ctx.DataAtom == 0 {
		ctx.Data, ctx.DataAtom = "div", atom.Div
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), ctx)
	if err != nil {
		return fmt.Errorf("parse rich text: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

func renderBlock(b block.Block) ([]*html.Node, error) {
	if b.IsFreeform() || (b.InnerHTML != "" && len(b.InnerContent) > 0) {
		return saved(b)
	}

	var el *html.Node
	switch b.Name {
	case "core/heading":
		el = Element(fmt.Sprintf("h%d", headingLevel(b.Attrs)), "class", "wp-block-heading")
	case "core/paragraph":
		el = Element("p")
	case "core/quote":
		el = Element("blockquote", "class", "wp-block-quote")
	case "core/list":
		tag := "ul"
		if ordered, _ := b.Attrs["ordered"].(bool); ordered {
			tag = "ol"
		}
		el = Element(tag, "class", "wp-block-list")
	case "core/list-item":
		el = Element("li")
	case "core/code":
		el = Element("pre", "class", "wp-block-code")
		code := Element("code")
		if err := Fragment(code, stringAttr(b.Attrs, "content")); err != nil {
			return nil, err
		}
		el.AppendChild(code)
		return []*html.Node{el}, nil
	case "core/image":
		el = Element("figure", "class", "wp-block-image")
		el.AppendChild(Element("img", "src", stringAttr(b.Attrs, "url"), "alt", stringAttr(b.Attrs, "alt")))
		if caption := stringAttr(b.Attrs, "caption"); caption != "" {
			fc := Element("figcaption")
			if err := Fragment(fc, caption); err != nil {
				return nil, err
			}
			el.AppendChild(fc)
		}
		return []*html.Node{el}, nil
	case "core/separator":
		return []*html.Node{Element("hr", "class", "wp-block-separator")}, nil
	case "core/button":
		el = Element("div", "class", "wp-block-button")
		link := Element("a", "class", "wp-block-button__link")
		if url := stringAttr(b.Attrs, "url"); url != "" {
			link.Attr = append(link.Attr, html.Attribute{Key: "href", Val: url})
		}
		if err := Fragment(link, stringAttr(b.Attrs, "text")); err != nil {
			return nil, err
		}
		el.AppendChild(link)
		return []*html.Node{el}, nil
	case "core/cover":
		style := ""
		if url := stringAttr(b.Attrs, "url"); url != "" {
			style = fmt.Sprintf("background-image:url(%s);", url)
		}
		if color := stringAttr(b.Attrs, "customOverlayColor"); color != "" {
			style += "background-color:" + color + ";"
		}
		el = Element("div", "class", "wp-block-cover", "style", style)
	case "core/table":
		return renderTable(b)
	default:
		el = Element("div", "class", "wp-block-"+strings.ReplaceAll(strings.TrimPrefix(b.Name, block.DefaultNamespace+"/"), "/", "-"))
	}

	if content := stringAttr(b.Attrs, "content"); content != "" {
		if err := Fragment(el, content); err != nil {
			return nil, err
		}
	}
	inner, err := Nodes(b.InnerBlocks)
	if err != nil {
		return nil, err
	}
	for _, n := range inner {
		el.AppendChild(n)
	}
	if b.Name == "core/quote" {
		if citation := stringAttr(b.Attrs, "citation"); citation != "" {
			cite := Element("cite")
			if err := Fragment(cite, citation); err != nil {
				return nil, err
			}
			el.AppendChild(cite)
		}
	}
	return []*html.Node{el}, nil
}

func renderTable(b block.Block) ([]*html.Node, error) {
	fig := Element("figure", "class", "wp-block-table")
	table := Element("table")
	fig.AppendChild(table)
	for _, section := range []struct{ key, tag, cell string }{{"head", "thead", "th"}, {"body", "tbody", "td"}} {
		rows, _ := b.Attrs[section.key].([]any)
		if len(rows) == 0 {
			continue
		}
		sec := Element(section.tag)
		for _, row := range rows {
			r, _ := row.(map[string]any)
			cells, _ := r["cells"].([]any)
			tr := Element("tr")
			for _, c := range cells {
				cell, _ := c.(map[string]any)
				td := Element(section.cell)
				if err := Fragment(td, stringAttr(cell, "content")); err != nil {
					return nil, err
				}
				tr.AppendChild(td)
			}
			sec.AppendChild(tr)
		}
		table.AppendChild(sec)
	}
	return []*html.Node{fig}, nil
}

// saved re-parses the HTML stored with a parsed block, with inner blocks
// rendered at their original positions.
func saved(b block.Block) ([]*html.Node, error) {
	var sb strings.Builder
	for i, seg := range b.InnerContent {
		sb.WriteString(seg)
		if i < len(b.InnerBlocks) {
			s, err := HTML([]block.Block{b.InnerBlocks[i]})
			if err != nil {
				return nil, err
			}
			sb.WriteString(s)
		}
	}
	container := Element("div")
	if err := Fragment(container, sb.String()); err != nil {
		return nil, err
	}
	var out []*html.Node
	for c := container.FirstChild; c != nil; {
		next := c.NextSibling
		container.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out, nil
}

func headingLevel(attrs map[string]any) int {
	level := 2
	switch v := attrs["level"].(type) {
	case int:
		level = v
	case float64:
		level = int(v)
	}
	if level < 1 || level > 6 {
		return 2
	}
	return level
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

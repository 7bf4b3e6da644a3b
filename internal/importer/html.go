package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/blockbook/internal/block"
	"golang.org/x/net/html"
)

// HTMLImporter handles HTML files. Recognised elements map to their block
// equivalents; everything else is descended into.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) ([]block.Block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	return htmlChildren(root)
}

func htmlChildren(n *html.Node) ([]block.Block, error) {
	var out []block.Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		bs, err := htmlNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, bs...)
	}
	return out, nil
}

func htmlNode(n *html.Node) ([]block.Block, error) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			return []block.Block{paragraph(html.EscapeString(t))}, nil
		}
		return nil, nil
	}
	if n.Type != html.ElementNode {
		return nil, nil
	}

	if level := headingLevel(n.Data); level > 0 {
		content, err := innerHTML(n)
		if err != nil {
			return nil, err
		}
		return []block.Block{heading(level, content)}, nil
	}

	switch n.Data {
	// Skip non-content elements.
	case "script", "style", "nav", "footer", "header", "noscript", "template":
		return nil, nil
	case "p":
		content, err := innerHTML(n)
		if err != nil || content == "" {
			return nil, err
		}
		return []block.Block{paragraph(content)}, nil
	case "ul", "ol":
		return htmlList(n)
	case "blockquote":
		inner, err := htmlChildren(n)
		if err != nil {
			return nil, err
		}
		return []block.Block{block.New("core/quote", nil, inner...)}, nil
	case "pre":
		return []block.Block{block.New("core/code", map[string]any{
			"content": html.EscapeString(strings.TrimRight(textContent(n), "\n")),
		})}, nil
	case "hr":
		return []block.Block{block.New("core/separator", nil)}, nil
	case "img":
		return []block.Block{block.New("core/image", map[string]any{
			"url": attr(n, "src"),
			"alt": attr(n, "alt"),
		})}, nil
	case "table":
		return []block.Block{htmlTable(n)}, nil
	}
	return htmlChildren(n)
}

func htmlList(n *html.Node) ([]block.Block, error) {
	var items []block.Block
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var inline strings.Builder
		var nested []block.Block
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				bs, err := htmlList(c)
				if err != nil {
					return nil, err
				}
				nested = append(nested, bs...)
				continue
			}
			if err := html.Render(&inline, c); err != nil {
				return nil, err
			}
		}
		items = append(items, block.New("core/list-item",
			map[string]any{"content": strings.TrimSpace(inline.String())}, nested...))
	}
	return []block.Block{block.New("core/list", map[string]any{"ordered": n.Data == "ol"}, items...)}, nil
}

func htmlTable(n *html.Node) block.Block {
	var head, body []any
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				walk(c, true)
			case "tbody", "tfoot":
				walk(c, false)
			case "tr":
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						cells = append(cells, textContent(td))
					}
				}
				if inHead {
					head = append(head, tableRow(cells))
				} else {
					body = append(body, tableRow(cells))
				}
			}
		}
	}
	walk(n, false)
	return block.New("core/table", map[string]any{"head": head, "body": body})
}

func innerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

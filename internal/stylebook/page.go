package stylebook

import (
	"fmt"
	"io"
	"net/url"

	"github.com/dgallion1/blockbook/internal/render"
	"github.com/dgallion1/blockbook/internal/settings"
	"golang.org/x/net/html"
)

const bookCSS = `.is-root-container { display: flow-root; }
body { position: relative; padding: 32px !important; }
.edit-site-style-book__example {
	background: none; border-radius: 2px; border: none; color: inherit; cursor: pointer;
	display: flex; flex-direction: column; gap: 40px; margin-bottom: 40px; padding: 16px;
	width: 100%; box-sizing: border-box;
}
.edit-site-style-book__example.is-selected { box-shadow: 0 0 0 1px var(--wp-admin-theme-color); }
.edit-site-style-book.is-wide .edit-site-style-book__example { flex-direction: row; }
`

// Page is one rendered tab of the style book.
type Page struct {
	Book     *Book
	Active   string // tab name; the first tab when empty
	Settings settings.Settings
	Width    int
	BaseURL  string // link target for tabs; the tab is set as ?category=, other query values are kept
}

// Render writes the page as a standalone HTML document, the content of the
// preview iframe.
func (p Page) Render(w io.Writer) error {
	active := p.Active
	if active == "" && len(p.Book.Tabs) > 0 {
		active = p.Book.Tabs[0].Name
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := render.Element("html")
	doc.AppendChild(root)

	head := render.Element("head")
	head.AppendChild(render.Element("meta", "charset", "utf-8"))
	for _, css := range editorStyles(PreviewSettings(p.Settings)) {
		style := render.Element("style")
		style.AppendChild(render.Text(css))
		head.AppendChild(style)
	}
	style := render.Element("style")
	style.AppendChild(render.Text(bookCSS))
	head.AppendChild(style)
	root.AppendChild(head)

	body := render.Element("body")
	root.AppendChild(body)

	class := "edit-site-style-book"
	if IsWide(p.Width) {
		class += " is-wide"
	}
	section := render.Element("section", "class", class, "aria-label", "Style Book")
	body.AppendChild(section)

	closeBtn := render.Element("button", "class", "edit-site-style-book__close-button", "aria-label", "Close Style Book", "data-action", "close")
	closeBtn.AppendChild(render.Text("×"))
	section.AppendChild(closeBtn)

	nav := render.Element("nav", "class", "edit-site-style-book__tab-panel", "role", "tablist")
	for _, tab := range p.Book.Tabs {
		selected := "false"
		if tab.Name == active {
			selected = "true"
		}
		a := render.Element("a", "role", "tab", "aria-selected", selected, "href", tabURL(p.BaseURL, tab.Name))
		a.AppendChild(render.Text(tab.Title))
		nav.AppendChild(a)
	}
	section.AppendChild(nav)

	list := render.Element("div", "class", "edit-site-style-book__examples")
	section.AppendChild(list)
	for _, ex := range ExamplesIn(p.Book.Examples, active) {
		node, err := exampleNode(ex, p.Book.IsSelected(ex.Name))
		if err != nil {
			return err
		}
		list.AppendChild(node)
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render style book: %w", err)
	}
	return nil
}

func tabURL(base, category string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?category=" + url.QueryEscape(category)
	}
	q := u.Query()
	q.Set("category", category)
	u.RawQuery = q.Encode()
	return u.String()
}

func exampleNode(ex Example, selected bool) (*html.Node, error) {
	class := "edit-site-style-book__example"
	if selected {
		class += " is-selected"
	}
	el := render.Element("div",
		"class", class,
		"role", "button",
		"aria-label", fmt.Sprintf("Open %s styles in Styles panel", ex.Title),
		"data-example", ex.Name,
	)

	title := render.Element("span", "class", "edit-site-style-book__example-title")
	title.AppendChild(render.Text(ex.Title))
	el.AppendChild(title)

	preview := render.Element("div", "class", "edit-site-style-book__example-preview")
	content := render.Element("div", "class", "edit-site-style-book__example-preview__content", "inert", "")
	nodes, err := render.Nodes(ex.Blocks)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", ex.Name, err)
	}
	for _, n := range nodes {
		content.AppendChild(n)
	}
	preview.AppendChild(content)
	el.AppendChild(preview)
	return el, nil
}

// editorStyles pulls CSS out of the "styles" setting, which holds either
// strings or objects with a "css" field.
func editorStyles(s settings.Settings) []string {
	raw, _ := s["styles"].([]any)
	var out []string
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if css, ok := v["css"].(string); ok {
				out = append(out, css)
			}
		}
	}
	return out
}

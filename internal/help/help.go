// Package help serves the editor's help topics sheet: a short list of basics,
// each opening a detail screen, plus an optional support section.
package help

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var ErrUnknownTopic = errors.New("unknown help topic")

//go:embed topics/*.md
var topicFS embed.FS

// Topic is one help screen.
type Topic struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Slug  string `json:"slug"`
	file  string
}

var topics = []Topic{
	{Label: "What is a block?", Icon: "help-filled", file: "what-is-a-block.md"},
	{Label: "Add blocks", Icon: "plus-circle-filled", file: "add-blocks.md"},
	{Label: "Move blocks", Icon: "move-blocks", file: "move-blocks.md"},
	{Label: "Remove blocks", Icon: "trash", file: "remove-blocks.md"},
	{Label: "Customize blocks", Icon: "cog", file: "customize-blocks.md"},
}

func init() {
	for i := range topics {
		topics[i].Slug = KebabCase(topics[i].Label)
	}
}

// Topics returns the help topics in display order.
func Topics() []Topic {
	return append([]Topic(nil), topics...)
}

// Row is a topic entry on the main help screen.
type Row struct {
	Topic
	Screen string `json:"screen"`
	IsLast bool   `json:"is_last"`
}

// SupportAction is a button in the support section.
type SupportAction struct {
	Title  string `json:"title"`
	Action string `json:"action"`
}

// Sheet is the main help screen.
type Sheet struct {
	Title        string          `json:"title"`
	SectionTitle string          `json:"section_title"`
	Rows         []Row           `json:"rows"`
	SupportTitle string          `json:"support_title,omitempty"`
	Support      []SupportAction `json:"support,omitempty"`
}

// NewSheet lays out the help screen for the post type being edited.
func NewSheet(postType string, showSupport bool) Sheet {
	title := "How to edit your post"
	if postType == "page" {
		title = "How to edit your page"
	}
	s := Sheet{Title: title, SectionTitle: "The basics"}
	for i, t := range topics {
		s.Rows = append(s.Rows, Row{Topic: t, Screen: t.Slug, IsLast: i == len(topics)-1})
	}
	if showSupport {
		s.SupportTitle = "Get support"
		s.Support = []SupportAction{
			{Title: "Contact support", Action: "contact-customer-support"},
			{Title: "More support options", Action: "goto-customer-support-options"},
		}
	}
	return s
}

// Lookup finds a topic by its slug.
func Lookup(slug string) (Topic, error) {
	for _, t := range topics {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Topic{}, fmt.Errorf("%w: %s", ErrUnknownTopic, slug)
}

// RenderTopic returns the detail screen body of a topic as HTML.
func RenderTopic(slug string) (string, error) {
	t, err := Lookup(slug)
	if err != nil {
		return "", err
	}
	src, err := topicFS.ReadFile("topics/" + t.file)
	if err != nil {
		return "", fmt.Errorf("read topic %s: %w", slug, err)
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render topic %s: %w", slug, err)
	}
	return buf.String(), nil
}

var (
	lowerUpperRe = regexp.MustCompile(`([\p{Ll}\p{Lo}\p{N}])([\p{Lu}\p{Lt}])`)
	upperWordRe  = regexp.MustCompile(`([\p{Lu}\p{Lt}])([\p{Lu}\p{Lt}][\p{Ll}\p{Lo}])`)
	stripRe      = regexp.MustCompile(`[\p{C}\p{P}\p{S}\p{Z}]+`)
)

// KebabCase turns a label into a screen name: words split at case changes,
// punctuation, symbols, control characters and spaces, lowercased and joined
// with hyphens. Letters of any script are kept.
func KebabCase(s string) string {
	s = lowerUpperRe.ReplaceAllString(s, "${1}\x00${2}")
	s = upperWordRe.ReplaceAllString(s, "${1}\x00${2}")
	s = stripRe.ReplaceAllString(s, "\x00")
	s = strings.Trim(s, "\x00")
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "\x00")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "-")
}

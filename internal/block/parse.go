package block

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrMalformed reports block markup whose delimiters cannot be read.
	ErrMalformed = errors.New("malformed block markup")
	// ErrUnbalanced reports a closing delimiter with no matching opener.
	// Only ParseStrict returns it.
	ErrUnbalanced = errors.New("unbalanced block delimiter")
)

// delimiterRe matches the body of a block comment, e.g.
// `wp:group {"tagName":"main"}`, `/wp:group` or `wp:spacer /`.
var delimiterRe = regexp.MustCompile(`(?s)^(/)?wp:([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)?)\s*(\{.*\})?\s*(/)?$`)

type delimiter struct {
	name   string
	attrs  map[string]any
	closer bool
	void   bool
}

func parseDelimiter(comment string) (delimiter, bool, error) {
	m := delimiterRe.FindStringSubmatch(strings.TrimSpace(comment))
	if m == nil {
		return delimiter{}, false, nil
	}
	d := delimiter{
		name:   NormalizeName(m[2]),
		closer: m[1] == "/",
		void:   m[4] == "/",
		attrs:  map[string]any{},
	}
	if m[3] != "" {
		if err := json.Unmarshal([]byte(m[3]), &d.attrs); err != nil {
			return delimiter{}, false, fmt.Errorf("%w: attributes of %s: %v", ErrMalformed, d.name, err)
		}
	}
	return d, true, nil
}

type frame struct {
	block Block
	seg   strings.Builder // HTML since the last inner block
	html  strings.Builder // all HTML of this block, inner blocks excluded
}

type parser struct {
	strict   bool
	out      []Block
	stack    []*frame
	freeform strings.Builder
}

// Parse reads serialized block markup into a sequence of top-level blocks.
// HTML outside any delimiter becomes a freeform block (empty Name) unless it
// is only whitespace. Blocks left open at the end of input are closed
// implicitly. Unbalanced closers are tolerated the way WordPress tolerates
// them: a closer with nothing open is kept as freeform HTML, and any other
// closer ends the innermost open block whatever its name.
func Parse(markup string) ([]Block, error) {
	return parse(markup, false)
}

// ParseStrict is Parse, but stray or mismatched closers fail with
// ErrUnbalanced. Use it to validate markup before storing it.
func ParseStrict(markup string) ([]Block, error) {
	return parse(markup, true)
}

func parse(markup string, strict bool) ([]Block, error) {
	p := &parser{strict: strict}
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("tokenize block markup: %w", err)
			}
			break
		}
		raw := string(z.Raw())
		if tt == html.CommentToken {
			d, ok, err := parseDelimiter(commentBody(raw))
			if err != nil {
				return nil, err
			}
			if ok {
				handled, err := p.delimiter(d)
				if err != nil {
					return nil, err
				}
				if handled {
					continue
				}
			}
		}
		p.text(raw)
	}
	for len(p.stack) > 0 {
		p.attach(p.pop())
	}
	p.flushFreeform()
	return p.out, nil
}

// commentBody strips the comment markers from a raw comment token. The
// tokenizer's own comment data is entity-decoded, which would alter
// attribute JSON.
func commentBody(raw string) string {
	body := strings.TrimPrefix(raw, "<!--")
	return strings.TrimSuffix(body, "-->")
}

// delimiter applies d to the parse state. It reports false when d should be
// kept as plain HTML instead.
func (p *parser) delimiter(d delimiter) (bool, error) {
	if d.closer {
		if len(p.stack) == 0 {
			if p.strict {
				return false, fmt.Errorf("%w: closer for %s with no open block", ErrUnbalanced, d.name)
			}
			return false, nil
		}
		if open := p.stack[len(p.stack)-1].block.Name; p.strict && open != d.name {
			return false, fmt.Errorf("%w: closer for %s inside %s", ErrUnbalanced, d.name, open)
		}
		p.attach(p.pop())
		return true, nil
	}
	if len(p.stack) == 0 {
		p.flushFreeform()
	}
	b := Block{Name: d.name, Attrs: d.attrs}
	if d.void {
		p.attach(b)
		return true, nil
	}
	p.stack = append(p.stack, &frame{block: b})
	return true, nil
}

func (p *parser) pop() Block {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	b := f.block
	b.InnerContent = append(b.InnerContent, f.seg.String())
	b.InnerHTML = f.html.String()
	return b
}

func (p *parser) attach(b Block) {
	if len(p.stack) == 0 {
		p.out = append(p.out, b)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.block.InnerContent = append(top.block.InnerContent, top.seg.String())
	top.seg.Reset()
	top.block.InnerBlocks = append(top.block.InnerBlocks, b)
}

func (p *parser) text(raw string) {
	if len(p.stack) == 0 {
		p.freeform.WriteString(raw)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.seg.WriteString(raw)
	top.html.WriteString(raw)
}

func (p *parser) flushFreeform() {
	s := p.freeform.String()
	p.freeform.Reset()
	if strings.TrimSpace(s) == "" {
		return
	}
	p.out = append(p.out, Block{
		Attrs:        map[string]any{},
		InnerHTML:    s,
		InnerContent: []string{s},
	})
}

package wpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/blockbook/internal/blocktype"
	"github.com/dgallion1/blockbook/internal/templates"
)

// Client talks to the WordPress REST API of a remote site. Requests are
// authenticated with an application password.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration

	Stats *Stats
}

func NewClient(baseURL, user, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: Backoff,
		Stats:   NewStats(time.Hour),
	}
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// wpTemplate is a template as returned by /wp/v2/templates?context=edit.
type wpTemplate struct {
	Slug  string `json:"slug"`
	Theme string `json:"theme"`
	Title struct {
		Raw      string `json:"raw"`
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Raw string `json:"raw"`
	} `json:"content"`
}

// TemplatesBySlug returns the site's templates whose slug is in slugs, in
// the order the site lists them.
func (c *Client) TemplatesBySlug(ctx context.Context, slugs ...string) ([]templates.Template, error) {
	all, err := c.templates(ctx)
	if err != nil {
		return nil, err
	}
	var out []templates.Template
	for _, t := range all {
		if !slices.Contains(slugs, t.Slug) {
			continue
		}
		title := t.Title.Raw
		if title == "" {
			title = t.Title.Rendered
		}
		out = append(out, templates.Template{
			Slug:    t.Slug,
			Theme:   t.Theme,
			Title:   title,
			Content: t.Content.Raw,
			Source:  "remote",
		})
	}
	return out, nil
}

// Slugs lists the slugs of every template on the site.
func (c *Client) Slugs(ctx context.Context) ([]string, error) {
	all, err := c.templates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, t := range all {
		out = append(out, t.Slug)
	}
	sort.Strings(out)
	return slices.Compact(out), nil
}

func (c *Client) templates(ctx context.Context) ([]wpTemplate, error) {
	var all []wpTemplate
	if err := c.get(ctx, "/wp/v2/templates", url.Values{"context": {"edit"}}, &all); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return all, nil
}

// wpBlockType is a block type as returned by /wp/v2/block-types. Objects
// that PHP may encode as an empty list are kept raw.
type wpBlockType struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Icon        json.RawMessage `json:"icon"`
	Parent      []string        `json:"parent"`
	Attributes  json.RawMessage `json:"attributes"`
	Supports    json.RawMessage `json:"supports"`
	Example     json.RawMessage `json:"example"`
	Variations  []wpVariation   `json:"variations"`
}

type wpAttribute struct {
	Type    json.RawMessage `json:"type"`
	Default any             `json:"default"`
}

type wpVariation struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Attributes  map[string]any  `json:"attributes"`
	IsDefault   bool            `json:"isDefault"`
	Scope       []string        `json:"scope"`
	IsActive    json.RawMessage `json:"isActive"`
}

// BlockTypes fetches every block type registered on the site.
func (c *Client) BlockTypes(ctx context.Context) ([]blocktype.Type, error) {
	var raw []wpBlockType
	if err := c.get(ctx, "/wp/v2/block-types", url.Values{"context": {"edit"}}, &raw); err != nil {
		return nil, fmt.Errorf("list block types: %w", err)
	}
	out := make([]blocktype.Type, 0, len(raw))
	for _, w := range raw {
		t := blocktype.Type{
			Name:        w.Name,
			Title:       w.Title,
			Category:    w.Category,
			Description: w.Description,
			Icon:        rawString(w.Icon),
			Parent:      w.Parent,
		}
		decodeObject(w.Supports, &t.Supports)
		var example blocktype.Example
		if decodeObject(w.Example, &example) {
			t.Example = &example
		}
		var attrs map[string]wpAttribute
		if decodeObject(w.Attributes, &attrs) && len(attrs) > 0 {
			t.Attributes = make(map[string]blocktype.Attribute, len(attrs))
			for k, a := range attrs {
				t.Attributes[k] = blocktype.Attribute{Type: attributeType(a.Type), Default: a.Default}
			}
		}
		for _, v := range w.Variations {
			var active []string
			_ = json.Unmarshal(v.IsActive, &active)
			t.Variations = append(t.Variations, blocktype.Variation{
				Name:             v.Name,
				Title:            v.Title,
				Description:      v.Description,
				Attributes:       v.Attributes,
				IsDefault:        v.IsDefault,
				Scope:            v.Scope,
				ActiveAttributes: active,
			})
		}
		out = append(out, t)
	}
	return out, nil
}

// RegisterBlockTypes adds the site's block types to reg. Types reg already
// knows keep their local definition. It returns the number added.
func (c *Client) RegisterBlockTypes(ctx context.Context, reg *blocktype.Registry) (int, error) {
	types, err := c.BlockTypes(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, t := range types {
		err := reg.Register(t)
		if errors.Is(err, blocktype.ErrDuplicate) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("register %s: %w", t.Name, err)
		}
		added++
	}
	return added, nil
}

// get fetches path and decodes the JSON response into v, retrying
// transient failures with backoff.
func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = c.getOnce(ctx, u, v)
		if err == nil || !IsRetryable(err) || attempt >= MaxRetries {
			return err
		}
		c.Stats.RecordRetry()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}
}

func (c *Client) getOnce(ctx context.Context, u string, v any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.user != "" {
		httpReq.SetBasicAuth(c.user, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.Stats.Record(time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if retryableStatus(resp.StatusCode) {
			return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeObject decodes raw into v when raw holds a JSON object.
func decodeObject(raw json.RawMessage, v any) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, v) == nil
}

// rawString returns raw as a string when it holds one.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// attributeType flattens a type declared as a list (["string","null"]) to
// its first entry.
func attributeType(raw json.RawMessage) string {
	if s := rawString(raw); s != "" {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

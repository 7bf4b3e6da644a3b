package stylebook

import (
	"errors"

	"github.com/dgallion1/blockbook/internal/settings"
)

const (
	// KeyEscape closes the style book.
	KeyEscape = "Escape"

	// PreviewModeKey marks settings used for non-interactive previews.
	PreviewModeKey = "__unstableIsPreviewMode"

	wideThreshold = 600
)

var ErrUnknownExample = errors.New("unknown style book example")

// Observer receives the style book's user gestures. Selection state is kept
// by the observer, not the book.
type Observer interface {
	OnSelect(name string)
	OnClose()
}

// ObserverFuncs adapts plain functions to Observer. Nil funcs are skipped.
type ObserverFuncs struct {
	Select func(name string)
	Close  func()
}

func (o ObserverFuncs) OnSelect(name string) {
	if o.Select != nil {
		o.Select(name)
	}
}

func (o ObserverFuncs) OnClose() {
	if o.Close != nil {
		o.Close()
	}
}

// Book is the style book panel: a catalog, its tabs, and the gestures that
// report upward.
type Book struct {
	Examples   []Example
	Tabs       []Tab
	IsSelected func(name string) bool
	Observer   Observer
}

// NewBook builds a book. A nil isSelected selects nothing and a nil obs
// discards gestures.
func NewBook(examples []Example, tabs []Tab, isSelected func(string) bool, obs Observer) *Book {
	if isSelected == nil {
		isSelected = func(string) bool { return false }
	}
	if obs == nil {
		obs = ObserverFuncs{}
	}
	return &Book{Examples: examples, Tabs: tabs, IsSelected: isSelected, Observer: obs}
}

// Activate reports a click on the example named name.
func (b *Book) Activate(name string) error {
	if _, ok := Find(b.Examples, name); !ok {
		return ErrUnknownExample
	}
	b.Observer.OnSelect(name)
	return nil
}

// HandleKey closes the book on an Escape nobody else handled. It reports
// whether the key was consumed.
func (b *Book) HandleKey(key string, defaultPrevented bool) bool {
	if key != KeyEscape || defaultPrevented {
		return false
	}
	b.Observer.OnClose()
	return true
}

// Close reports the close button.
func (b *Book) Close() {
	b.Observer.OnClose()
}

// PreviewSettings copies the editor settings with preview mode switched on.
func PreviewSettings(s settings.Settings) settings.Settings {
	out := s.Clone()
	out[PreviewModeKey] = true
	return out
}

// IsWide reports whether a panel of the given width lays examples out in
// rows.
func IsWide(width int) bool {
	return width > wideThreshold
}

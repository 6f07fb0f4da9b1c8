package widget

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Item is one entry of the result list. An item without Href is an
// informational message.
type Item struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// IsLink reports whether the item points at a document.
func (i Item) IsLink() bool {
	return i.Href != ""
}

func message(text string) []Item {
	return []Item{{Text: text}}
}

// View is the render target of a Controller. Replace swaps the whole list;
// nothing is diffed.
type View interface {
	Replace(items []Item)
}

// List is an in-memory View.
type List struct {
	mu    sync.RWMutex
	items []Item
}

// NewList creates an empty List.
func NewList() *List {
	return &List{}
}

// Replace implements View.
func (l *List) Replace(items []Item) {
	cp := make([]Item, len(items))
	copy(cp, items)

	l.mu.Lock()
	l.items = cp
	l.mu.Unlock()
}

// Items returns a copy of the current entries.
func (l *List) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// ListID is the id attribute of the rendered result list.
const ListID = "search-results"

// ListNode builds the <ul> element for items.
func ListNode(items []Item) *html.Node {
	ul := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Ul,
		Data:     "ul",
		Attr:     []html.Attribute{{Key: "id", Val: ListID}},
	}

	for _, item := range items {
		li := &html.Node{Type: html.ElementNode, DataAtom: atom.Li, Data: "li"}
		text := &html.Node{Type: html.TextNode, Data: item.Text}

		if item.IsLink() {
			a := &html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.A,
				Data:     "a",
				Attr:     []html.Attribute{{Key: "href", Val: item.Href}},
			}
			a.AppendChild(text)
			li.AppendChild(a)
		} else {
			li.AppendChild(text)
		}
		ul.AppendChild(li)
	}
	return ul
}

// RenderHTML writes items as an escaped <ul id="search-results"> fragment.
func RenderHTML(w io.Writer, items []Item) error {
	return html.Render(w, ListNode(items))
}

// TextView writes every replacement to a terminal-style writer.
type TextView struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextView creates a TextView writing to w.
func NewTextView(w io.Writer) *TextView {
	return &TextView{w: w}
}

// Replace implements View.
func (v *TextView) Replace(items []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(items) == 0 {
		_, _ = fmt.Fprintln(v.w, "--")
		return
	}
	for _, item := range items {
		if item.IsLink() {
			_, _ = fmt.Fprintf(v.w, "  %s  <%s>\n", item.Text, item.Href)
			continue
		}
		_, _ = fmt.Fprintf(v.w, "  %s\n", item.Text)
	}
}

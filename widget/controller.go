package widget

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jonwraymond/docsearch/index"
	"github.com/jonwraymond/docsearch/loader"
)

// Messages rendered as single informational items.
const (
	MsgLoading     = "Loading search index..."
	MsgNotLoaded   = "Search index not loaded yet."
	MsgTooShort    = "Please enter at least 2 characters."
	MsgNoResults   = "No results found."
	MsgLoadFailed  = "Error loading search index. Check the console for details."
	MsgSearchError = "Search failed. Check the console for details."
)

// DefaultMinQueryLen is the shortest query, in characters, that is searched.
const DefaultMinQueryLen = 2

// Source answers queries once its index is loaded. *loader.Loader
// implements it.
type Source interface {
	IsReady() bool
	Query(text string) ([]index.Hit, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMinQueryLen overrides the minimum query length. Values below 1 are
// ignored.
func WithMinQueryLen(n int) Option {
	return func(c *Controller) {
		if n >= 1 {
			c.minLen = n
		}
	}
}

// Controller turns input events into result lists.
//
// Input events and loader notifications arrive on different goroutines;
// they are serialized so the view always shows the outcome of the latest
// event.
type Controller struct {
	src    Source
	view   View
	log    *slog.Logger
	minLen int

	mu       sync.Mutex
	last     string
	hasInput bool
}

// New creates a Controller rendering into view. A nil view is replaced by
// a fresh List.
func New(src Source, view View, opts ...Option) *Controller {
	if view == nil {
		view = NewList()
	}
	c := &Controller{
		src:    src,
		view:   view,
		log:    slog.Default(),
		minLen: DefaultMinQueryLen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the controller's render target.
func (c *Controller) View() View {
	return c.view
}

// OnInput handles one input-change event and replaces the rendered list.
func (c *Controller) OnInput(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = raw
	c.hasInput = true
	c.view.Replace(c.Evaluate(raw))
}

// Evaluate validates raw, queries the source and returns the items that
// OnInput would render. It never fails; errors become messages.
func (c *Controller) Evaluate(raw string) []Item {
	text := strings.TrimSpace(raw)

	if c.src == nil || !c.src.IsReady() {
		return message(MsgNotLoaded)
	}
	if utf8.RuneCountInString(text) < c.minLen {
		return message(c.tooShortMessage())
	}

	hits, err := c.src.Query(text)
	if err != nil {
		if errors.Is(err, loader.ErrNotReady) {
			return message(MsgNotLoaded)
		}
		c.log.Error("search failed", "query", text, "error", err)
		return message(MsgSearchError)
	}
	if len(hits) == 0 {
		return message(MsgNoResults)
	}

	items := make([]Item, len(hits))
	for i, hit := range hits {
		items[i] = Item{Text: Label(hit.Ref), Href: hit.Ref}
	}
	return items
}

func (c *Controller) tooShortMessage() string {
	if c.minLen == DefaultMinQueryLen {
		return MsgTooShort
	}
	return "Please enter at least " + strconv.Itoa(c.minLen) + " characters."
}

// HandleState is a loader.ChangeListener that keeps the list in step with
// the index lifecycle. Loading shows a placeholder and Failed an error
// item. On Ready the latest input is evaluated again against the loaded
// index, or the list is cleared when nothing has been typed yet.
func (c *Controller) HandleState(state loader.State, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch state {
	case loader.StateLoading:
		c.view.Replace(message(MsgLoading))
	case loader.StateReady:
		if c.hasInput {
			c.view.Replace(c.Evaluate(c.last))
			return
		}
		c.view.Replace(nil)
	case loader.StateFailed:
		c.view.Replace(message(MsgLoadFailed))
	}
}

package widget

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/docsearch/index"
	"github.com/jonwraymond/docsearch/loader"
)

type mockSource struct {
	mu      sync.Mutex
	ready   bool
	results map[string][]index.Hit
	err     error
	queries []string
}

func (m *mockSource) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockSource) Query(text string) ([]index.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.results[text], nil
}

func (m *mockSource) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(src Source) (*Controller, *List) {
	list := NewList()
	return New(src, list, WithLogger(quietLogger())), list
}

func assertMessage(t *testing.T, items []Item, want string) {
	t.Helper()
	if len(items) != 1 {
		t.Fatalf("expected exactly one item, got %d: %v", len(items), items)
	}
	if items[0].IsLink() {
		t.Errorf("expected informational item, got link %v", items[0])
	}
	if items[0].Text != want {
		t.Errorf("item text = %q, want %q", items[0].Text, want)
	}
}

func TestOnInput_NotReady(t *testing.T) {
	src := &mockSource{ready: false}
	ctrl, list := newController(src)

	for _, q := range []string{"", "a", "install", "  long query text  "} {
		ctrl.OnInput(q)
		assertMessage(t, list.Items(), MsgNotLoaded)
	}
	if calls := src.calls(); len(calls) != 0 {
		t.Errorf("index queried before ready: %v", calls)
	}
}

func TestOnInput_TooShort(t *testing.T) {
	src := &mockSource{ready: true}
	ctrl, list := newController(src)

	for _, q := range []string{"", " ", "a", "  a  ", "\tb\n", "é"} {
		t.Run(q, func(t *testing.T) {
			ctrl.OnInput(q)
			assertMessage(t, list.Items(), MsgTooShort)
		})
	}
	if calls := src.calls(); len(calls) != 0 {
		t.Errorf("short queries reached the index: %v", calls)
	}
}

func TestOnInput_NotReadyCheckedBeforeLength(t *testing.T) {
	ctrl, list := newController(&mockSource{ready: false})

	ctrl.OnInput("a")
	assertMessage(t, list.Items(), MsgNotLoaded)
}

func TestOnInput_TrimsBeforeSearch(t *testing.T) {
	src := &mockSource{ready: true}
	ctrl, _ := newController(src)

	ctrl.OnInput("   foo  ")

	calls := src.calls()
	if len(calls) != 1 || calls[0] != "foo" {
		t.Errorf("queries = %q, want [foo]", calls)
	}
}

func TestOnInput_TwoCharactersSearches(t *testing.T) {
	src := &mockSource{ready: true}
	ctrl, _ := newController(src)

	ctrl.OnInput("ab")
	ctrl.OnInput("日本")

	if calls := src.calls(); len(calls) != 2 {
		t.Errorf("queries = %q, want two searches", calls)
	}
}

func TestOnInput_NoResults(t *testing.T) {
	src := &mockSource{ready: true, results: map[string][]index.Hit{"zz": {}}}
	ctrl, list := newController(src)

	ctrl.OnInput("zz")

	assertMessage(t, list.Items(), MsgNoResults)
}

func TestOnInput_SingleHit(t *testing.T) {
	src := &mockSource{
		ready:   true,
		results: map[string][]index.Hit{"foo": {{Ref: "x/y/z.html", Score: 1.2}}},
	}
	ctrl, list := newController(src)

	ctrl.OnInput("foo")

	items := list.Items()
	if len(items) != 1 {
		t.Fatalf("expected one item, got %v", items)
	}
	if items[0].Href != "x/y/z.html" {
		t.Errorf("Href = %q, want x/y/z.html", items[0].Href)
	}
	if items[0].Text != "x > y > z" {
		t.Errorf("Text = %q, want %q", items[0].Text, "x > y > z")
	}
}

func TestOnInput_PreservesIndexOrder(t *testing.T) {
	src := &mockSource{
		ready: true,
		results: map[string][]index.Hit{"guide": {
			{Ref: "z/last.html", Score: 3},
			{Ref: "a/first.html", Score: 2},
			{Ref: "index.html", Score: 1},
		}},
	}
	ctrl, list := newController(src)

	ctrl.OnInput("guide")

	want := []Item{
		{Text: "z > last", Href: "z/last.html"},
		{Text: "a > first", Href: "a/first.html"},
		{Text: "index", Href: "index.html"},
	}
	got := list.Items()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOnInput_ReplacesPreviousResults(t *testing.T) {
	src := &mockSource{
		ready: true,
		results: map[string][]index.Hit{
			"first":  {{Ref: "a.html"}, {Ref: "b.html"}, {Ref: "c.html"}},
			"second": {{Ref: "d/e.html"}},
		},
	}
	ctrl, list := newController(src)

	ctrl.OnInput("first")
	ctrl.OnInput("second")

	items := list.Items()
	if len(items) != 1 || items[0].Href != "d/e.html" {
		t.Errorf("list = %v, want only the second result", items)
	}

	ctrl.OnInput("x")
	assertMessage(t, list.Items(), MsgTooShort)
}

func TestOnInput_SearchError(t *testing.T) {
	var buf bytes.Buffer
	src := &mockSource{ready: true, err: errors.New("index corrupted")}
	list := NewList()
	ctrl := New(src, list, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	ctrl.OnInput("install")

	assertMessage(t, list.Items(), MsgSearchError)
	if !strings.Contains(buf.String(), "index corrupted") {
		t.Errorf("search error not logged: %q", buf.String())
	}
}

func TestOnInput_NotReadyErrorFromSource(t *testing.T) {
	src := &mockSource{ready: true, err: loader.ErrNotReady}
	ctrl, list := newController(src)

	ctrl.OnInput("install")

	assertMessage(t, list.Items(), MsgNotLoaded)
}

func TestOnInput_NilSource(t *testing.T) {
	ctrl, list := newController(nil)

	ctrl.OnInput("install")

	assertMessage(t, list.Items(), MsgNotLoaded)
}

func TestWithMinQueryLen(t *testing.T) {
	src := &mockSource{ready: true}
	list := NewList()
	ctrl := New(src, list, WithMinQueryLen(3), WithLogger(quietLogger()))

	ctrl.OnInput("ab")
	assertMessage(t, list.Items(), "Please enter at least 3 characters.")

	ctrl.OnInput("abc")
	if len(src.calls()) != 1 {
		t.Errorf("expected one search, got %v", src.calls())
	}

	ignored := New(src, nil, WithMinQueryLen(0))
	if ignored.minLen != DefaultMinQueryLen {
		t.Errorf("minLen = %d, want default", ignored.minLen)
	}
}

func TestNew_NilViewUsesList(t *testing.T) {
	ctrl := New(&mockSource{}, nil)

	if _, ok := ctrl.View().(*List); !ok {
		t.Errorf("View() = %T, want *List", ctrl.View())
	}
}

func TestHandleState(t *testing.T) {
	ctrl, list := newController(&mockSource{})

	ctrl.HandleState(loader.StateLoading, nil)
	assertMessage(t, list.Items(), MsgLoading)

	ctrl.HandleState(loader.StateReady, nil)
	if items := list.Items(); len(items) != 0 {
		t.Errorf("ready should clear the placeholder, got %v", items)
	}

	ctrl.HandleState(loader.StateFailed, errors.New("boom"))
	assertMessage(t, list.Items(), MsgLoadFailed)
}

func TestHandleState_ReadyReevaluatesLatestInput(t *testing.T) {
	src := &mockSource{results: map[string][]index.Hit{"install": {{Ref: "guide/install.html"}}}}
	ctrl, list := newController(src)

	ctrl.HandleState(loader.StateLoading, nil)
	ctrl.OnInput("  install ")
	assertMessage(t, list.Items(), MsgNotLoaded)

	src.mu.Lock()
	src.ready = true
	src.mu.Unlock()
	ctrl.HandleState(loader.StateReady, nil)

	items := list.Items()
	if len(items) != 1 || items[0].Href != "guide/install.html" {
		t.Errorf("list = %v, want the pending query answered", items)
	}
	if calls := src.calls(); len(calls) != 1 || calls[0] != "install" {
		t.Errorf("queries = %q, want [install]", calls)
	}
}

func TestController_ConcurrentInputAndState(t *testing.T) {
	src := &mockSource{ready: true, results: map[string][]index.Hit{"final": {{Ref: "final.html"}}}}
	ctrl, list := newController(src)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctrl.OnInput("other")
		}()
		go func() {
			defer wg.Done()
			ctrl.HandleState(loader.StateReady, nil)
		}()
	}
	wg.Wait()

	ctrl.OnInput("final")
	ctrl.HandleState(loader.StateReady, nil)

	items := list.Items()
	if len(items) != 1 || items[0].Href != "final.html" {
		t.Errorf("list = %v, want the final query's results", items)
	}
}

func TestController_WithLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"documents": [
			{"ref": "guide/install.html", "title": "Install", "body": "Run the installer"},
			{"ref": "reference/config/options.html", "title": "Options", "body": "Every listen port option"}
		]}`)
	}))
	defer srv.Close()

	ldr := loader.New(loader.Config{BaseURL: srv.URL + "/"}, loader.WithLogger(quietLogger()))
	defer func() { _ = ldr.Close() }()

	ctrl, list := newController(ldr)
	ldr.OnChange(ctrl.HandleState)

	ctrl.OnInput("port")
	assertMessage(t, list.Items(), MsgNotLoaded)

	if err := ldr.InitiateLoad(context.Background()); err != nil {
		t.Fatalf("InitiateLoad() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ldr.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := Item{Text: "reference > config > options", Href: "reference/config/options.html"}

	// the query typed while loading is answered once the index is ready
	items := list.Items()
	if len(items) != 1 || items[0] != want {
		t.Fatalf("after ready got %v, want [%v]", items, want)
	}

	ctrl.OnInput("port")
	items = list.Items()
	if len(items) != 1 {
		t.Fatalf("expected one hit, got %v", items)
	}
	if items[0] != want {
		t.Errorf("item = %v, want %v", items[0], want)
	}

	ctrl.OnInput("/[a/")
	for _, it := range list.Items() {
		if it.Text == MsgSearchError {
			t.Errorf("query syntax rejected by the index surfaced as %q", it.Text)
		}
	}
}

func TestController_InputDuringReadyNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"documents": [{"ref": "guide/port.html", "title": "Port", "body": "Change the listen port"}]}`)
	}))
	defer srv.Close()

	ldr := loader.New(loader.Config{BaseURL: srv.URL + "/"}, loader.WithLogger(quietLogger()))
	defer func() { _ = ldr.Close() }()

	ctrl, list := newController(ldr)
	// A keystroke landing after the index is ready but before the
	// controller hears about it.
	ldr.OnChange(func(s loader.State, _ error) {
		if s == loader.StateReady {
			ctrl.OnInput("port")
		}
	})
	ldr.OnChange(ctrl.HandleState)

	if err := ldr.InitiateLoad(context.Background()); err != nil {
		t.Fatalf("InitiateLoad() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ldr.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := Item{Text: "guide > port", Href: "guide/port.html"}
	items := list.Items()
	if len(items) != 1 || items[0] != want {
		t.Errorf("list = %v, want the latest keystroke's results [%v]", items, want)
	}
}

func TestController_WithFailedLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	ldr := loader.New(loader.Config{BaseURL: srv.URL + "/"}, loader.WithLogger(quietLogger()))
	ctrl, list := newController(ldr)
	ldr.OnChange(ctrl.HandleState)

	_ = ldr.InitiateLoad(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = ldr.Wait(ctx)

	assertMessage(t, list.Items(), MsgLoadFailed)
	if ldr.IsReady() {
		t.Error("IsReady() should be false after failure")
	}

	// still interactive
	ctrl.OnInput("install")
	assertMessage(t, list.Items(), MsgNotLoaded)
}

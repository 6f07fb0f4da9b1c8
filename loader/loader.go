package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/jonwraymond/docsearch/index"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultIndexURL = "search_index.json"
	DefaultTimeout  = 30 * time.Second
)

// Config configures where and how the index document is fetched.
type Config struct {
	// IndexURL locates the index document. A relative URL is resolved
	// against BaseURL. Default: "search_index.json".
	IndexURL string

	// BaseURL is the site root for a relative IndexURL. When empty, a
	// relative IndexURL is read from the working directory.
	BaseURL string

	// Timeout bounds the whole fetch. Default: 30s.
	Timeout time.Duration
}

// ResolveURL returns the absolute URL the index document is fetched from.
func (c Config) ResolveURL() (string, error) {
	raw := c.IndexURL
	if raw == "" {
		raw = DefaultIndexURL
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid index url %q: %w", raw, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	if c.BaseURL == "" {
		abs, err := filepath.Abs(filepath.FromSlash(ref.Path))
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", raw, err)
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if !base.IsAbs() {
		return "", fmt.Errorf("base url %q must be absolute", c.BaseURL)
	}
	return base.ResolveReference(ref).String(), nil
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithHTTPClient replaces the client used for the fetch. The default client
// also serves file:// URLs from the local filesystem.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// Loader fetches the index document once and owns the loaded index.
//
// The state moves NotStarted -> Loading -> Ready or Failed. Both outcomes
// are final; there is no retry. Close moves a loader that is not loading
// to Closed.
type Loader struct {
	cfg     Config
	client  *http.Client
	headers map[string]string
	log     *slog.Logger

	mu        sync.RWMutex
	state     State
	url       string
	idx       *index.Index
	err       error
	closed    bool
	listeners map[int]ChangeListener
	nextID    int
	done      chan struct{}
}

// New creates a Loader. Nothing is fetched until InitiateLoad.
func New(cfg Config, opts ...Option) *Loader {
	if cfg.IndexURL == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	l := &Loader{
		cfg:       cfg,
		client:    defaultClient(),
		log:       slog.Default(),
		listeners: make(map[int]ChangeListener),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.client = clientWithHeaders(l.client, l.headers)
	return l
}

func defaultClient() *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return &http.Client{Transport: t}
}

// InitiateLoad moves to Loading, notifies listeners and starts the fetch in
// the background. It returns ErrAlreadyStarted on any later call.
func (l *Loader) InitiateLoad(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateNotStarted {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.state = StateLoading
	l.mu.Unlock()

	l.notify(StateLoading, nil)

	go l.run(ctx)
	return nil
}

func (l *Loader) run(ctx context.Context) {
	start := time.Now()

	target, err := l.cfg.ResolveURL()
	if err != nil {
		l.fail(&FetchError{URL: l.cfg.IndexURL, Err: err}, start)
		return
	}

	l.mu.Lock()
	l.url = target
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	data, err := l.fetch(ctx, target)
	if err != nil {
		l.fail(err, start)
		return
	}

	idx, err := index.Load(data)
	if err != nil {
		l.fail(&ParseError{URL: target, Err: err}, start)
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = idx.Close()
		l.fail(&FetchError{URL: target, Err: errors.New("loader closed")}, start)
		return
	}
	l.state = StateReady
	l.idx = idx
	l.mu.Unlock()

	l.log.Info("search index loaded",
		"url", target,
		"documents", idx.Len(),
		"fingerprint", idx.Fingerprint(),
		"duration", time.Since(start),
	)

	l.notify(StateReady, nil)
	close(l.done)
}

func (l *Loader) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

func (l *Loader) fail(err error, start time.Time) {
	l.mu.Lock()
	l.state = StateFailed
	l.err = err
	l.mu.Unlock()

	attrs := []any{
		"error", err,
		"duration", time.Since(start),
	}
	var fe *FetchError
	var pe *ParseError
	switch {
	case errors.As(err, &fe):
		attrs = append(attrs, "kind", "fetch", "url", fe.URL)
		if fe.StatusCode != 0 {
			attrs = append(attrs, "status", fe.StatusCode)
		}
	case errors.As(err, &pe):
		attrs = append(attrs, "kind", "parse", "url", pe.URL)
	}
	l.log.Error("search index load failed", attrs...)

	l.notify(StateFailed, err)
	close(l.done)
}

// OnChange registers a listener for state transitions and returns a
// function that removes it. Listeners run on the goroutine that made the
// transition, outside the loader's lock.
func (l *Loader) OnChange(listener ChangeListener) func() {
	if listener == nil {
		return func() {}
	}

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = listener
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

func (l *Loader) notify(state State, err error) {
	l.mu.RLock()
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	listeners := make([]ChangeListener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, l.listeners[id])
	}
	l.mu.RUnlock()

	for _, fn := range listeners {
		fn(state, err)
	}
}

// IsReady reports whether Query can be served.
func (l *Loader) IsReady() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateReady && l.idx != nil
}

// State returns the current lifecycle stage.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the load failure, or nil.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Query searches the loaded index. It fails fast with ErrNotReady until the
// load has succeeded.
func (l *Loader) Query(text string) ([]index.Hit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.state != StateReady || l.idx == nil {
		return nil, ErrNotReady
	}
	return l.idx.Search(text)
}

// Done is closed once the load reaches Ready or Failed.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the load finishes or ctx is done. It returns the load
// error, if any.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats summarizes the loader for health reporting.
type Stats struct {
	State       State
	URL         string
	Documents   int
	Fingerprint string
	Error       string
}

// Stats returns a snapshot of the loader.
func (l *Loader) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{State: l.state, URL: l.url}
	if l.idx != nil {
		s.Documents = l.idx.Len()
		s.Fingerprint = l.idx.Fingerprint()
	}
	if l.err != nil {
		s.Error = l.err.Error()
	}
	return s
}

// Close releases the loaded index. Queries fail with ErrNotReady afterwards
// and State reports StateClosed, except after a failed load, which keeps
// its error. A load still in flight ends as Failed.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	switch l.state {
	case StateNotStarted:
		l.state = StateClosed
		close(l.done)
	case StateReady:
		l.state = StateClosed
	}

	if l.idx == nil {
		return nil
	}
	err := l.idx.Close()
	l.idx = nil
	return err
}

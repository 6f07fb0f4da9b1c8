// Command docsearch loads a documentation search index and answers queries
// typed on stdin, over HTTP (-serve) or as an MCP tool on stdio (-mcp).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonwraymond/docsearch/config"
	"github.com/jonwraymond/docsearch/loader"
	"github.com/jonwraymond/docsearch/rpc"
	"github.com/jonwraymond/docsearch/web"
	"github.com/jonwraymond/docsearch/widget"
)

func main() {
	indexURL := flag.String("index-url", "", "Index document URL or path (overrides DOCSEARCH_INDEX_URL)")
	baseURL := flag.String("base-url", "", "Site root for a relative index URL (overrides DOCSEARCH_BASE_URL)")
	timeout := flag.Duration("timeout", 0, "Index fetch timeout (overrides DOCSEARCH_FETCH_TIMEOUT)")
	serve := flag.Bool("serve", false, "Serve the search box over HTTP")
	mcpMode := flag.Bool("mcp", false, "Serve the search tool over MCP on stdio")
	flag.Parse()

	cfg := config.Load()
	if *indexURL != "" {
		cfg.IndexURL = *indexURL
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.FetchTimeout = *timeout
	}

	// stdout belongs to the results list or the MCP stream; logs go to stderr.
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var log *slog.Logger
	if *serve {
		log = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		log = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var view widget.View = widget.NewList()
	if !*serve && !*mcpMode {
		view = widget.NewTextView(os.Stdout)
	}

	ldr := loader.New(cfg.Loader(),
		loader.WithLogger(log),
		loader.WithHeaders(cfg.Headers()),
	)
	defer func() { _ = ldr.Close() }()

	ctrl := widget.New(ldr, view,
		widget.WithLogger(log),
		widget.WithMinQueryLen(cfg.MinQueryLen),
	)
	ldr.OnChange(ctrl.HandleState)

	if err := ldr.InitiateLoad(ctx); err != nil {
		log.Error("start index load", "error", err)
		os.Exit(1)
	}

	tools := rpc.New(ctrl, rpc.Config{})

	var err error
	switch {
	case *mcpMode:
		err = rpc.ServeStdio(ctx, tools)
	case *serve:
		err = runHTTP(ctx, cfg.Addr, web.NewServer(ldr, ctrl, tools, log), log)
	default:
		err = runInteractive(ctx, ctrl)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("docsearch exited", "error", err)
		os.Exit(1)
	}
}

func runHTTP(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docsearch", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runInteractive treats every stdin line as one input-change event.
func runInteractive(ctx context.Context, ctrl *widget.Controller) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		scanErr <- sc.Err()
	}()

	fmt.Fprintln(os.Stderr, "Type a query and press enter. Ctrl-D quits.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			ctrl.OnInput(line)
		case err := <-scanErr:
			return err
		}
	}
}

// Package widget implements the search box controller: it validates input,
// queries a loaded index and renders the hits as breadcrumb links.
//
// # Flow
//
//	ldr := loader.New(loader.Config{BaseURL: "https://example.com/docs/"})
//	list := widget.NewList()
//	ctrl := widget.New(ldr, list)
//	ldr.OnChange(ctrl.HandleState)
//	_ = ldr.InitiateLoad(ctx)
//
//	ctrl.OnInput("  install ") // once per input-change event
//
// Every OnInput call replaces the whole list. Input is trimmed, then:
//
//   - index not ready: one "Search index not loaded yet." item
//   - fewer than 2 characters: one "Please enter at least 2 characters." item
//   - no hits: one "No results found." item
//   - otherwise one link per hit, in index order, labelled by [Label]
//
// Failures never escape OnInput; they are rendered as messages.
//
// # Views
//
// [List] keeps items in memory, [TextView] prints them for terminals and
// [RenderHTML] writes the <ul id="search-results"> fragment.
package widget

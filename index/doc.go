// Package index loads a precomputed search index document and answers
// full-text queries against it.
//
// The index document is JSON produced by a separate build step:
//
//	{
//	  "documents": [
//	    {"ref": "guide/install.html", "title": "Install", "body": "..."},
//	    {"ref": "index.html", "title": "Home", "body": "..."}
//	  ]
//	}
//
// Every document needs a unique, non-empty ref. Title and body are optional.
//
// # Usage
//
//	idx, err := index.Load(data)
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	hits, err := idx.Search("install")
//
// # Search
//
// Documents are held in an in-memory Bleve index analysed with the English
// analyzer, so "installing" matches "install". Queries accept Bleve's query
// string syntax:
//
//	hits, _ := idx.Search("+install -windows")
//	hits, _ = idx.Search("title:guide")
//
// Text that is not valid query string syntax (for example an unbalanced "(endpoint") is
// searched as plain words instead of failing.
//
// Results are ordered by score descending, then ref ascending. Every match
// is returned; the index does not paginate.
//
// # Thread Safety
//
// A loaded Index is read-only and safe for concurrent Search calls.
package index

package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Error values for index loading.
var (
	ErrInvalidDocument = errors.New("invalid index document")
	ErrDuplicateRef    = errors.New("duplicate document ref")
	ErrClosed          = errors.New("index closed")
)

// Document is one entry of a serialized index document.
type Document struct {
	// Ref is the document reference, usually a relative page path
	// such as "guide/install.html". Required and unique.
	Ref string `json:"ref"`

	// Title is an optional human readable title.
	Title string `json:"title,omitempty"`

	// Body is the searchable page text.
	Body string `json:"body,omitempty"`
}

// File is the serialized form of an index document.
type File struct {
	Documents []Document `json:"documents"`
}

// Hit is a single search match.
type Hit struct {
	Ref   string
	Title string
	Score float64
}

// Index is a loaded, read-only full-text index.
//
// Index is safe for concurrent use.
type Index struct {
	bleve       bleve.Index
	titles      map[string]string
	fingerprint string
}

// Load deserializes an index document and builds the in-memory index.
func Load(data []byte) (*Index, error) {
	var f File
	if err := json.Unmarshal(bytes.TrimSpace(data), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if f.Documents == nil {
		return nil, fmt.Errorf("%w: missing documents", ErrInvalidDocument)
	}
	return Build(f.Documents)
}

// Build indexes already decoded documents.
func Build(docs []Document) (*Index, error) {
	titles := make(map[string]string, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.Ref) == "" {
			return nil, fmt.Errorf("%w: document %d has no ref", ErrInvalidDocument, i)
		}
		if _, ok := titles[doc.Ref]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRef, doc.Ref)
		}
		titles[doc.Ref] = doc.Title
	}

	mapping := bleve.NewIndexMapping()
	mapping.DefaultAnalyzer = en.AnalyzerName

	bi, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	batch := bi.NewBatch()
	for _, doc := range docs {
		fields := map[string]any{
			"title": doc.Title,
			"body":  doc.Body,
		}
		if err := batch.Index(doc.Ref, fields); err != nil {
			_ = bi.Close()
			return nil, fmt.Errorf("index %s: %w", doc.Ref, err)
		}
	}
	if err := bi.Batch(batch); err != nil {
		_ = bi.Close()
		return nil, fmt.Errorf("index batch: %w", err)
	}

	return &Index{
		bleve:       bi,
		titles:      titles,
		fingerprint: computeFingerprint(docs),
	}, nil
}

// Search runs text against the index and returns every match, best first.
// Ties are broken by ref so results are deterministic.
//
// Text is interpreted with bleve's query string syntax ("+install -beta",
// "title:guide"). Text that bleve rejects is matched as plain words.
func (idx *Index) Search(text string) ([]Hit, error) {
	if idx == nil || idx.bleve == nil {
		return nil, ErrClosed
	}
	text = strings.TrimSpace(text)
	if text == "" || len(idx.titles) == 0 {
		return []Hit{}, nil
	}

	q := buildQuery(text)
	res, err := idx.run(q)
	if _, isQueryString := q.(*query.QueryStringQuery); err != nil && isQueryString {
		// Syntax that parses can still be rejected when the query is
		// built, e.g. a bad regexp or fuzziness above 2.
		res, err = idx.run(bleve.NewMatchQuery(text))
	}
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, m := range res.Hits {
		hits = append(hits, Hit{
			Ref:   m.ID,
			Title: idx.titles[m.ID],
			Score: m.Score,
		})
	}
	return hits, nil
}

func (idx *Index) run(q query.Query) (*bleve.SearchResult, error) {
	req := bleve.NewSearchRequestOptions(q, len(idx.titles), 0, false)
	req.SortBy([]string{"-_score", "_id"})
	return idx.bleve.Search(req)
}

func buildQuery(text string) query.Query {
	qs := bleve.NewQueryStringQuery(text)
	if _, err := qs.Parse(); err == nil {
		return qs
	}
	return bleve.NewMatchQuery(text)
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.titles)
}

// Fingerprint identifies the document set the index was built from.
func (idx *Index) Fingerprint() string {
	return idx.fingerprint
}

// Close releases the underlying bleve index. It must not race with Search.
func (idx *Index) Close() error {
	if idx == nil || idx.bleve == nil {
		return nil
	}
	err := idx.bleve.Close()
	idx.bleve = nil
	return err
}

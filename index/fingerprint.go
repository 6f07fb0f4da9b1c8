package index

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// computeFingerprint generates a stable hash of the document set.
// Document order does not matter; any change to a ref, title or body does.
func computeFingerprint(docs []Document) string {
	sorted := slices.Clone(docs)
	slices.SortFunc(sorted, func(a, b Document) int {
		return strings.Compare(a.Ref, b.Ref)
	})

	h := sha256.New()
	for _, doc := range sorted {
		h.Write([]byte(doc.Ref))
		h.Write([]byte{0}) // separator

		h.Write([]byte(doc.Title))
		h.Write([]byte{0})

		h.Write([]byte(doc.Body))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

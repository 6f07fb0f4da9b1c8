package widget

import "strings"

// Label turns a document ref into a breadcrumb:
// "a/b/page.html" becomes "a > b > page".
func Label(ref string) string {
	segments := strings.Split(ref, "/")
	file := strings.TrimSuffix(segments[len(segments)-1], ".html")

	prefix := strings.Join(segments[:len(segments)-1], " > ")
	if prefix == "" {
		return file
	}
	return prefix + " > " + file
}

// Package rewrite holds the import rewriting rules. Every fixer is a pure
// function of a root-relative path and the file content.
package rewrite

import (
	"regexp"
	"strings"
)

// fromSpecifier matches the `from "` or `from '` that opens a module specifier.
const fromSpecifier = `(\bfrom\s+["'])`

// closingQuote captures the quote that ends a module specifier.
const closingQuote = `(["'])`

// inMarker reports whether the slash separated relPath has marker as a full
// segment sequence, e.g. "components/ui" in "components/ui/button/button.tsx".
func inMarker(relPath, marker string) bool {
	return strings.Contains("/"+relPath, "/"+marker+"/")
}

// segmentsAfter returns the non-empty path segments that follow the first
// occurrence of marker, file name included. ok is false when relPath does not
// contain marker.
func segmentsAfter(relPath, marker string) (segs []string, ok bool) {
	p := "/" + relPath
	needle := "/" + marker + "/"
	idx := strings.Index(p, needle)
	if idx < 0 {
		return nil, false
	}
	rest := p[idx+len(needle):]
	return strings.FieldsFunc(rest, func(r rune) bool { return r == '/' }), true
}

func markerSegments(marker string) int {
	return len(strings.FieldsFunc(marker, func(r rune) bool { return r == '/' }))
}

// exactImport matches an import of exactly specifier, keeping the surrounding
// `from` and quotes in groups 1 and 2.
func exactImport(specifier string) *regexp.Regexp {
	return regexp.MustCompile(fromSpecifier + regexp.QuoteMeta(specifier) + closingQuote)
}

// literal escapes s for use as regexp replacement text.
func literal(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

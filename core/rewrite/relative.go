package rewrite

import (
	"regexp"
	"strings"

	"github.com/tristendillon/tsfix/core/config"
	"github.com/tristendillon/tsfix/core/logger"
)

type siblingRule struct {
	name string
	re   *regexp.Regexp
}

// RelativeFixer repairs relative imports inside the UI component tree that an
// alias rewrite left at the wrong depth.
type RelativeFixer struct {
	marker      string
	markerSegs  int
	utilsImport string
	utilsRe     *regexp.Regexp
	siblings    []siblingRule
}

func NewRelativeFixer(cfg config.Relative) *RelativeFixer {
	marker := config.CleanMarker(cfg.Marker)
	utils := strings.Trim(cfg.UtilsImport, "/")
	rf := &RelativeFixer{
		marker:      marker,
		markerSegs:  markerSegments(marker),
		utilsImport: utils,
		utilsRe:     exactImport("../../" + utils),
	}
	for _, name := range cfg.SiblingModules {
		rf.siblings = append(rf.siblings, siblingRule{name: name, re: exactImport("./" + name)})
	}
	return rf
}

func (rf *RelativeFixer) Name() string {
	return "relative"
}

// Fix runs the three fix-ups in order and reports whether any of them fired.
// A fix-up fires when its import is present, even if the rewrite leaves the
// text as it was.
func (rf *RelativeFixer) Fix(relPath, content string) (string, bool) {
	out, fired := rf.apply(relPath, content)
	if len(fired) > 0 {
		logger.Debug("%s: relative fixes %v", relPath, fired)
	}
	return out, len(fired) > 0
}

// apply returns the rewritten content and the names of the fix-ups that fired.
func (rf *RelativeFixer) apply(relPath, content string) (string, []string) {
	segs, ok := segmentsAfter(relPath, rf.marker)
	if !ok {
		return content, nil
	}
	depth := len(segs)

	var fired []string
	out := content

	if rf.utilsRe.MatchString(out) {
		out = rf.utilsRe.ReplaceAllString(out, "${1}"+literal(rf.utilsSpecifier(depth))+"${2}")
		fired = append(fired, "utils-depth")
	}

	// Only files in a subdirectory below the marker have a parent to point at.
	if depth < 2 {
		return out, fired
	}

	for _, sib := range rf.siblings {
		if sib.re.MatchString(out) {
			out = sib.re.ReplaceAllString(out, "${1}../"+literal(sib.name)+"${2}")
			fired = append(fired, "sibling:"+sib.name)
		}
	}

	component := segs[0]
	namesake := exactImport("./" + component)
	if namesake.MatchString(out) {
		out = namesake.ReplaceAllString(out, "${1}../"+literal(component)+"${2}")
		fired = append(fired, "namesake:"+component)
	}

	return out, fired
}

// utilsSpecifier is the corrected utils import for a file at depth below the
// marker: enough "../" to leave the marker entirely.
func (rf *RelativeFixer) utilsSpecifier(depth int) string {
	ups := depth + rf.markerSegs - 1
	return strings.Repeat("../", ups) + rf.utilsImport
}

package rewrite

import (
	"regexp"

	"github.com/tristendillon/tsfix/core/config"
	"github.com/tristendillon/tsfix/core/logger"
)

// malformedFrom matches `from ["x"]` and `from ['x'`: a bracket between the
// keyword and the quoted specifier, with an optional bracket after it.
var malformedFrom = regexp.MustCompile(`\bfrom(\s+)\[\s*(["'])([^"'\n]*)(["'])\s*\]?`)

type aliasRule struct {
	from string
	re   *regexp.Regexp
	repl string
}

type aliasCategory struct {
	name   string
	marker string
	rules  []aliasRule
}

// AliasFixer rewrites alias import prefixes such as "@/types/" into relative
// prefixes chosen by the directory a file lives in.
type AliasFixer struct {
	fixMalformed bool
	categories   []aliasCategory
}

func NewAliasFixer(cfg config.Aliases) *AliasFixer {
	af := &AliasFixer{fixMalformed: cfg.FixMalformedFrom}
	for _, cat := range cfg.Categories {
		c := aliasCategory{name: cat.Name, marker: config.CleanMarker(cat.Marker)}
		for _, rw := range cat.Rewrites {
			c.rules = append(c.rules, aliasRule{
				from: rw.From,
				re:   regexp.MustCompile(fromSpecifier + regexp.QuoteMeta(rw.From)),
				repl: "${1}" + literal(rw.To),
			})
		}
		af.categories = append(af.categories, c)
	}
	return af
}

func (af *AliasFixer) Name() string {
	return "aliases"
}

func (af *AliasFixer) category(relPath string) *aliasCategory {
	for i := range af.categories {
		if inMarker(relPath, af.categories[i].marker) {
			return &af.categories[i]
		}
	}
	return nil
}

// Fix applies the malformed-from normalization and then the rewrites of the
// matching category, in table order.
func (af *AliasFixer) Fix(relPath, content string) (string, bool) {
	out := content
	if af.fixMalformed {
		out = malformedFrom.ReplaceAllString(out, "from${1}${2}${3}${4}")
	}

	if c := af.category(relPath); c != nil {
		for _, rule := range c.rules {
			next := rule.re.ReplaceAllString(out, rule.repl)
			if next != out {
				logger.Debug("%s: %s rewrote %q", relPath, c.name, rule.from)
			}
			out = next
		}
	}

	return out, out != content
}

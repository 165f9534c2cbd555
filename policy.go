package markupguard

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// PolicyVersion identifies the ruleset returned by DefaultPolicy.
const PolicyVersion = "2025-01"

// Policy declares which elements and attributes are removed from
// sanitized markup. A Policy is immutable once built and safe to share
// between goroutines.
type Policy struct {
	version       string
	forbiddenTags map[string]bool
	attrPrefixes  []string
	schemes       []string
}

// PolicyRules is the raw input to NewPolicy.
type PolicyRules struct {
	// Version labels the ruleset, e.g. for logs.
	Version string

	// ForbiddenTags are removed together with their entire subtree.
	ForbiddenTags []string

	// ForbiddenAttrPrefixes removes any attribute whose name starts
	// with one of these prefixes ("on" catches inline event handlers).
	ForbiddenAttrPrefixes []string

	// DangerousSchemes removes any attribute whose value contains one
	// of these tokens once whitespace and control characters are gone.
	DangerousSchemes []string
}

var defaultPolicy = NewPolicy(PolicyRules{
	Version: PolicyVersion,
	ForbiddenTags: []string{
		"script", "object", "embed", "form", "input", "textarea", "button",
		"iframe", "frame", "frameset", "applet", "noscript",
		"base", "meta", "link",
	},
	ForbiddenAttrPrefixes: []string{"on"},
	DangerousSchemes: []string{
		"javascript:", "vbscript:", "livescript:", "data:text/html",
	},
})

// DefaultPolicy returns the process-wide ruleset. The same value is
// returned on every call.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

// NewPolicy compiles rules into a Policy. Every rule string is
// normalized the same way as the markup it is matched against.
func NewPolicy(rules PolicyRules) *Policy {
	p := &Policy{
		version:       rules.Version,
		forbiddenTags: make(map[string]bool, len(rules.ForbiddenTags)),
	}
	for _, t := range rules.ForbiddenTags {
		if t = normalizeName(t); t != "" {
			p.forbiddenTags[t] = true
		}
	}
	for _, a := range rules.ForbiddenAttrPrefixes {
		if a = normalizeName(a); a != "" {
			p.attrPrefixes = append(p.attrPrefixes, a)
		}
	}
	for _, s := range rules.DangerousSchemes {
		if s = normalizeValue(s); s != "" {
			p.schemes = append(p.schemes, s)
		}
	}
	return p
}

// Version returns the ruleset label.
func (p *Policy) Version() string { return p.version }

// IsForbiddenTag reports whether elements named name must be removed.
func (p *Policy) IsForbiddenTag(name string) bool {
	return p.forbiddenTags[normalizeName(name)]
}

// IsForbiddenAttribute reports whether an attribute must be removed,
// either because its name marks an event handler or because its value
// carries a dangerous scheme anywhere in it.
func (p *Policy) IsForbiddenAttribute(name, value string) bool {
	name = normalizeName(name)
	for _, prefix := range p.attrPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	if value == "" || len(p.schemes) == 0 {
		return false
	}
	value = normalizeValue(value)
	for _, s := range p.schemes {
		if strings.Contains(value, s) {
			return true
		}
	}
	return false
}

func normalizeName(s string) string {
	// Casers carry state; never share one across goroutines.
	return cases.Fold().String(strings.TrimSpace(s))
}

// normalizeValue folds compatibility forms and case, then drops every
// rune a browser would skip or that could split a scheme token, so that
// "java\tscript:" and "\x01JavaScript:" both read "javascript:".
func normalizeValue(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
	return cases.Fold().String(s)
}

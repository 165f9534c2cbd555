package markupguard

import (
	"fmt"

	"golang.org/x/net/html"
)

const (
	// DefaultMaxInputBytes caps the raw markup accepted in strict mode.
	DefaultMaxInputBytes = 1 << 20
	// DefaultMaxDepth caps element nesting.
	DefaultMaxDepth = 256
	// DefaultMaxNodes caps the number of nodes visited per item.
	DefaultMaxNodes = 50000
)

// Limits bound the work done for a single item. Zero fields take the
// package defaults.
type Limits struct {
	MaxInputBytes int
	MaxDepth      int
	MaxNodes      int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxInputBytes: DefaultMaxInputBytes,
		MaxDepth:      DefaultMaxDepth,
		MaxNodes:      DefaultMaxNodes,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxInputBytes <= 0 {
		l.MaxInputBytes = d.MaxInputBytes
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxNodes <= 0 {
		l.MaxNodes = d.MaxNodes
	}
	return l
}

// Report counts what the walker removed from one document.
type Report struct {
	RemovedTags  int
	RemovedAttrs int
	DroppedNodes int
	Visited      int
}

// SanitizeDocument removes every forbidden element (with its subtree)
// and every forbidden attribute from doc, in place. Text and comment
// nodes are kept as they are; any other node kind is dropped.
//
// On a limit breach doc is left partially sanitized and must not be
// serialized.
func SanitizeDocument(doc *Document, p *Policy, lim Limits) (Report, error) {
	if p == nil {
		p = DefaultPolicy()
	}
	w := &walker{policy: p, limits: lim.withDefaults()}

	kept := doc.Nodes[:0]
	for _, n := range doc.Nodes {
		keep, err := w.visit(n, 1)
		if err != nil {
			return w.report, err
		}
		if keep {
			kept = append(kept, n)
		}
	}
	doc.Nodes = kept
	return w.report, nil
}

type walker struct {
	policy *Policy
	limits Limits
	report Report
}

// visit sanitizes n and reports whether it stays in its parent.
func (w *walker) visit(n *html.Node, depth int) (bool, error) {
	w.report.Visited++
	if w.report.Visited > w.limits.MaxNodes {
		return false, wrapError(CodeLimitExceeded,
			fmt.Sprintf("markup exceeds %d nodes", w.limits.MaxNodes), nil)
	}

	switch n.Type {
	case html.TextNode, html.CommentNode:
		return true, nil

	case html.ElementNode:
		if depth > w.limits.MaxDepth {
			return false, wrapError(CodeLimitExceeded,
				fmt.Sprintf("markup nests deeper than %d", w.limits.MaxDepth), nil)
		}
		if w.policy.IsForbiddenTag(n.Data) {
			w.report.RemovedTags++
			return false, nil
		}
		n.Attr = w.filterAttrs(n.Attr)
		return true, w.visitChildren(n, depth+1)

	default:
		w.report.DroppedNodes++
		return false, nil
	}
}

// visitChildren walks a snapshot of n's children so that removing one
// child never disturbs iteration over its siblings.
func (w *walker) visitChildren(n *html.Node, depth int) error {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	for _, c := range children {
		keep, err := w.visit(c, depth)
		if err != nil {
			return err
		}
		if !keep {
			n.RemoveChild(c)
		}
	}
	return nil
}

func (w *walker) filterAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if w.policy.IsForbiddenAttribute(a.Key, a.Val) {
			w.report.RemovedAttrs++
			continue
		}
		out = append(out, a)
	}
	return out
}

package markupguard

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed markup fragment: the ordered top-level nodes of
// the fragment, each detached from any parent.
type Document struct {
	Nodes []*html.Node
}

// Parse turns raw into a Document using the HTML5 tree construction
// rules, the same way a browser would for content placed inside <body>.
// Malformed input is repaired, never rejected.
func Parse(raw string) (*Document, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil, wrapError(CodeParse, "parse markup", err)
	}
	return &Document{Nodes: nodes}, nil
}

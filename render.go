package markupguard

import (
	"bytes"

	"golang.org/x/net/html"
)

// Serialize renders doc back to markup. Text and attribute values are
// escaped, so parsing the result again yields an equivalent tree.
func Serialize(doc *Document) (string, error) {
	var buf bytes.Buffer
	for _, n := range doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", wrapError(CodeSerialize, "serialize markup", err)
		}
	}
	return buf.String(), nil
}

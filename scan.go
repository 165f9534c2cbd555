package markupguard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never hold children, so their start tags open nothing.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// implicitClose lists start tags that close an open element of the
// listed names. The search stops at any boundary element.
var implicitClose = map[string]struct {
	closes   []string
	boundary []string
}{
	"li":       {closes: []string{"li"}, boundary: []string{"ul", "ol", "menu", "table", "td", "th", "button"}},
	"dd":       {closes: []string{"dd", "dt"}, boundary: []string{"dl", "table", "td", "th", "button"}},
	"dt":       {closes: []string{"dd", "dt"}, boundary: []string{"dl", "table", "td", "th", "button"}},
	"option":   {closes: []string{"option"}, boundary: []string{"select", "optgroup", "datalist"}},
	"optgroup": {closes: []string{"optgroup", "option"}, boundary: []string{"select"}},
	"td":       {closes: []string{"td", "th"}, boundary: []string{"tr", "table"}},
	"th":       {closes: []string{"td", "th"}, boundary: []string{"tr", "table"}},
	"tr":       {closes: []string{"tr"}, boundary: []string{"tbody", "thead", "tfoot", "table"}},
	"tbody":    {closes: []string{"tbody", "thead", "tfoot"}, boundary: []string{"table"}},
	"thead":    {closes: []string{"tbody", "thead", "tfoot"}, boundary: []string{"table"}},
	"tfoot":    {closes: []string{"tbody", "thead", "tfoot"}, boundary: []string{"table"}},
	"rb":       {closes: []string{"rb", "rt", "rp", "rtc"}, boundary: []string{"ruby"}},
	"rt":       {closes: []string{"rb", "rt", "rp"}, boundary: []string{"ruby", "rtc"}},
	"rp":       {closes: []string{"rb", "rt", "rp"}, boundary: []string{"ruby", "rtc"}},
}

// closesParagraph lists start tags that end an open <p>.
var closesParagraph = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"center": true, "details": true, "dialog": true, "dir": true, "div": true,
	"dl": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hgroup": true,
	"hr": true, "listing": true, "main": true, "menu": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "ul": true, "xmp": true,
}

var buttonScope = []string{
	"applet", "button", "caption", "html", "marquee", "object", "table",
	"td", "template", "th",
}

// checkLimits tokenizes raw once and fails as soon as the start tags it
// holds would exceed lim. It runs before the tree builder so that
// adversarial nesting is rejected in time linear in the input.
//
// The open-element stack follows the tree builder's implied end tags
// for the common cases and never grows past lim.MaxDepth, so each step
// costs at most O(MaxDepth). The walker checks the real tree again.
func checkLimits(raw string, lim Limits) error {
	z := html.NewTokenizer(strings.NewReader(raw))
	var (
		stack   []string
		foreign int
		tags    int
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return wrapError(CodeParse, "tokenize markup", err)
			}
			return nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			tags++
			if tags > lim.MaxNodes {
				return wrapError(CodeLimitExceeded,
					fmt.Sprintf("markup exceeds %d nodes", lim.MaxNodes), nil)
			}
			if voidElements[tag] && foreign == 0 {
				continue
			}
			// Self-closing syntax only takes effect inside svg and math.
			if tt == html.SelfClosingTagToken && (foreign > 0 || tag == "svg" || tag == "math") {
				continue
			}
			if foreign == 0 {
				stack = closeImplied(stack, tag)
			}
			if tag == "svg" || tag == "math" {
				foreign++
			}
			stack = append(stack, tag)
			if len(stack) > lim.MaxDepth {
				return wrapError(CodeLimitExceeded,
					fmt.Sprintf("markup nests deeper than %d", lim.MaxDepth), nil)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if i := lastIndex(stack, string(name), nil); i >= 0 {
				for _, open := range stack[i:] {
					if open == "svg" || open == "math" {
						foreign--
					}
				}
				stack = stack[:i]
			}
		}
	}
}

// closeImplied pops the elements that a start tag for tag ends implicitly.
func closeImplied(stack []string, tag string) []string {
	if closesParagraph[tag] {
		if i := lastIndex(stack, "p", buttonScope); i >= 0 {
			stack = stack[:i]
		}
	}
	if rule, ok := implicitClose[tag]; ok {
		for _, name := range rule.closes {
			if i := lastIndex(stack, name, rule.boundary); i >= 0 {
				stack = stack[:i]
				break
			}
		}
	}
	return stack
}

// lastIndex finds the innermost open name, giving up at a boundary.
func lastIndex(stack []string, name string, boundary []string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
		for _, b := range boundary {
			if stack[i] == b {
				return -1
			}
		}
	}
	return -1
}

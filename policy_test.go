package markupguard_test

import (
	"testing"

	"github.com/njchilds90/markupguard"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_IsForbiddenTag(t *testing.T) {
	p := markupguard.DefaultPolicy()

	for _, tag := range []string{"script", "SCRIPT", " Object ", "embed", "form", "input", "textarea", "button", "iframe", "frame", "frameset", "applet", "noscript", "base", "meta", "link"} {
		assert.True(t, p.IsForbiddenTag(tag), tag)
	}
	for _, tag := range []string{"p", "div", "a", "img", "scripts", ""} {
		assert.False(t, p.IsForbiddenTag(tag), tag)
	}
}

func TestPolicy_IsForbiddenAttribute(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  bool
	}{
		{name: "event handler", key: "onclick", want: true},
		{name: "event handler mixed case", key: "OnLoad", value: "x()", want: true},
		{name: "event handler padded", key: "  onerror ", want: true},
		{name: "plain scheme", key: "href", value: "javascript:alert(1)", want: true},
		{name: "upper case scheme", key: "href", value: "JAVASCRIPT:alert(1)", want: true},
		{name: "scheme mid value", key: "style", value: "x:url(javascript:y)", want: true},
		{name: "leading control char", key: "href", value: "\x01javascript:alert(1)", want: true},
		{name: "embedded tab", key: "href", value: "java\tscript:alert(1)", want: true},
		{name: "embedded newline", key: "href", value: "java\nscript:alert(1)", want: true},
		{name: "embedded zero width space", key: "href", value: "java\u200bscript:alert(1)", want: true},
		{name: "full width", key: "href", value: "ｊａｖａｓｃｒｉｐｔ：alert(1)", want: true},
		{name: "vbscript", key: "href", value: "vbscript:msgbox", want: true},
		{name: "html data uri", key: "src", value: "data:text/html,<b>", want: true},
		{name: "image data uri", key: "src", value: "data:image/png;base64,AAAA", want: false},
		{name: "https", key: "href", value: "https://example.com/javascript", want: false},
		{name: "word without colon", key: "title", value: "learn javascript today", want: false},
		{name: "attribute containing on", key: "alt", value: "on", want: false},
		{name: "empty", key: "class", value: "", want: false},
	}

	p := markupguard.DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsForbiddenAttribute(tt.key, tt.value))
		})
	}
}

func TestDefaultPolicy_Shared(t *testing.T) {
	assert.Same(t, markupguard.DefaultPolicy(), markupguard.DefaultPolicy())
	assert.Equal(t, markupguard.PolicyVersion, markupguard.DefaultPolicy().Version())
}

func TestNewPolicy_IgnoresBlankRules(t *testing.T) {
	p := markupguard.NewPolicy(markupguard.PolicyRules{
		ForbiddenTags:         []string{"", "  "},
		ForbiddenAttrPrefixes: []string{""},
		DangerousSchemes:      []string{" "},
	})

	assert.False(t, p.IsForbiddenTag(""))
	assert.False(t, p.IsForbiddenAttribute("href", "anything"))
	assert.False(t, p.IsForbiddenAttribute("onclick", "x"))
}

// Package panel binds a data-source column of raw markup to sanitized
// items ready for display.
package panel

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/njchilds90/markupguard"
)

// DefaultColumnName is shown when the host supplies no column name.
const DefaultColumnName = "HTML Content"

// MarkupType names the markup language of a column.
type MarkupType string

// MarkupHTML is the only supported markup type.
const MarkupHTML MarkupType = "HTML"

// ParseMarkupType validates a markup type chosen in the host.
func ParseMarkupType(s string) (MarkupType, error) {
	switch t := MarkupType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MarkupHTML:
		return t, nil
	case "":
		return MarkupHTML, nil
	default:
		return "", fmt.Errorf("unsupported markup type %q", s)
	}
}

// Mode selects strict sanitization or the permissive opt-out.
type Mode int

const (
	ModeStrict Mode = iota
	ModePermissive
)

// ModeFromAllowUnsafe maps the host's "allow unsafe HTML" setting to a
// Mode.
func ModeFromAllowUnsafe(allowUnsafe bool) Mode {
	if allowUnsafe {
		return ModePermissive
	}
	return ModeStrict
}

// Strict reports whether m sanitizes.
func (m Mode) Strict() bool { return m != ModePermissive }

func (m Mode) String() string {
	if m.Strict() {
		return "strict"
	}
	return "permissive"
}

// Item is one row of the bound column.
type Item struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	IsEmpty bool   `json:"is_empty"`
}

// Bind turns column values into items. Row identity is kept in ID; nil
// values become empty content.
func Bind(values []*string) []Item {
	items := make([]Item, len(values))
	for i, v := range values {
		var content string
		if v != nil {
			content = *v
		}
		items[i] = Item{
			ID:      i,
			Content: content,
			IsEmpty: strings.TrimSpace(content) == "",
		}
	}
	return items
}

// Config is the per-render configuration supplied by the host.
type Config struct {
	Column     string
	MarkupType MarkupType
	Mode       Mode
}

// ProcessedItem is an Item with its display markup.
type ProcessedItem struct {
	Item
	HTML    string `json:"html"`
	Preview string `json:"preview"`
	Error   string `json:"error,omitempty"`
}

// View is what the host displays for one render.
type View struct {
	Column   string          `json:"column"`
	Mode     string          `json:"mode"`
	Summary  string          `json:"summary"`
	Security string          `json:"security"`
	Notice   string          `json:"notice,omitempty"`
	Items    []ProcessedItem `json:"items"`
}

// Renderer sanitizes bound items for display.
type Renderer struct {
	sanitizer *markupguard.Sanitizer
	preview   *bluemonday.Policy
	logger    *slog.Logger
}

// NewRenderer creates a Renderer. A nil sanitizer uses
// markupguard.Default and a nil logger discards output.
func NewRenderer(s *markupguard.Sanitizer, logger *slog.Logger) *Renderer {
	if s == nil {
		s = markupguard.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		sanitizer: s,
		preview:   bluemonday.StripTagsPolicy(),
		logger:    logger,
	}
}

// Render processes the non-empty items in order.
func (r *Renderer) Render(cfg Config, items []Item) View {
	column := strings.TrimSpace(cfg.Column)
	if column == "" {
		column = DefaultColumnName
	}
	markupType := cfg.MarkupType
	if markupType == "" {
		markupType = MarkupHTML
	}

	var visible []Item
	for _, it := range items {
		if !it.IsEmpty {
			visible = append(visible, it)
		}
	}

	strict := cfg.Mode.Strict()
	if strict {
		r.logger.Info("markup sanitization enabled", slog.Int("items", len(visible)))
	} else {
		r.logger.Warn("markup sanitization disabled, unsafe content may be rendered", slog.Int("items", len(visible)))
	}

	raw := make([]*string, len(visible))
	for i := range visible {
		raw[i] = &visible[i].Content
	}
	results := r.sanitizer.SanitizeAllResults(raw, strict)

	processed := make([]ProcessedItem, len(visible))
	for i, res := range results {
		p := ProcessedItem{
			Item:    visible[i],
			HTML:    res.HTML,
			Preview: r.plainText(res.HTML),
		}
		if res.Err != nil {
			p.Error = string(markupguard.CodeOf(res.Err))
			r.logger.Warn("markup item replaced by fallback",
				slog.Int("row", visible[i].ID),
				slog.String("code", p.Error),
				slog.String("error", res.Err.Error()))
		}
		processed[i] = p
	}

	v := View{
		Column:   column,
		Mode:     cfg.Mode.String(),
		Summary:  summary(len(processed), strict),
		Security: "Raw HTML",
		Items:    processed,
	}
	if strict {
		v.Security = "Sanitized"
	}
	if len(processed) == 0 {
		v.Notice = fmt.Sprintf("No %s content found in the selected column %q.", markupType, column)
	}
	return v
}

// plainText strips every tag and decodes entities, yielding a
// single-line preview.
func (r *Renderer) plainText(markup string) string {
	text := html.UnescapeString(r.preview.Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}

func summary(n int, strict bool) string {
	noun := "items"
	if n == 1 {
		noun = "item"
	}
	state := "Disabled"
	if strict {
		state = "Enabled"
	}
	return fmt.Sprintf("%d %s • Sanitization: %s", n, noun, state)
}

package versioning

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"

	models "inkwell/internal/domain/models/versioning"
)

// projectionFields is the canonical field order of the plain-text projection.
// Snapshots are JSON objects of typed fields produced by the editor; the
// projection concatenates these fields in this fixed order so diffing and
// word counting are deterministic. Unknown fields are ignored.
var projectionFields = []string{
	"headline",
	"subheadline",
	"body",
	"quotes",
	"boilerplate",
	"notes",
}

// Projector reduces structured content snapshots to their canonical
// plain-text projection. Thread-safe for concurrent use.
type Projector struct {
	stripper *bluemonday.Policy
}

// NewProjector creates a projector. Field values may carry editor HTML;
// markup is stripped so the projection is plain text.
func NewProjector() *Projector {
	return &Projector{stripper: bluemonday.StrictPolicy()}
}

// PlainText renders the canonical plain-text projection of a snapshot.
// Non-empty fields are joined by blank lines; array fields (e.g. quotes) are
// rendered element-wise, one per line.
func (p *Projector) PlainText(snapshot models.Snapshot) string {
	var parts []string
	for _, field := range projectionFields {
		value := gjson.GetBytes(snapshot, field)
		if !value.Exists() {
			continue
		}

		var part string
		if value.IsArray() {
			var lines []string
			value.ForEach(func(_, item gjson.Result) bool {
				if text := p.stripHTML(item.String()); text != "" {
					lines = append(lines, text)
				}
				return true
			})
			part = strings.Join(lines, "\n")
		} else {
			part = p.stripHTML(value.String())
		}

		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, "\n\n")
}

// WordCount counts the words of a snapshot's plain-text projection
func (p *Projector) WordCount(snapshot models.Snapshot) int {
	return len(strings.Fields(p.PlainText(snapshot)))
}

// stripHTML removes markup and normalizes the remaining text. The strict
// policy escapes entities on output, so they are unescaped afterwards.
func (p *Projector) stripHTML(s string) string {
	stripped := p.stripper.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

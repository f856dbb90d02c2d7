package export

import (
	"regexp"
	"strings"
)

// ansiPattern matches ANSI escape sequences (colors, cursor movement, links).
var ansiPattern = regexp.MustCompile(
	`[\x1b\x9b][\[\]()#;?]*(?:(?:(?:(?:;[-a-zA-Z\d/#&.:=?%@~_]+)*|[a-zA-Z\d]+(?:;[-a-zA-Z\d/#&.:=?%@~_]*)*)?\x07)|(?:(?:\d{1,4}(?:;\d{0,4})*)?[\dA-PR-TZcf-ntqry=><~]))`,
)

// StripANSI removes terminal styling from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// AppendScripts inserts one deferred script tag per src before the first
// closing body tag. Documents without </body> are returned unchanged.
func AppendScripts(html string, scripts []string) string {
	if len(scripts) == 0 {
		return html
	}

	var tags strings.Builder
	for _, src := range scripts {
		tags.WriteString(`<script src="`)
		tags.WriteString(escapeAttr(src))
		tags.WriteString(`" defer></script>`)
	}
	tags.WriteString("</body>")

	return strings.Replace(html, "</body>", tags.String(), 1)
}

// escapeAttr escapes text for a double-quoted HTML attribute value.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

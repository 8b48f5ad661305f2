package motd

import "strings"

// SectionSign introduces inline formatting codes on the host (e.g. SectionSign+"c" for red).
const SectionSign = "\u00a7"

// Order matters: escaped section signs first, then the newline forms.
var (
	sectionReplacer = strings.NewReplacer(
		`\u00a7`, SectionSign,
		`\u00A7`, SectionSign,
	)
	newlineReplacer = strings.NewReplacer(
		`\n`, "\n",
		`/n`, "\n",
	)
)

// Normalize expands escaped section signs and, when newlines is set, the
// backslash-n and slash-n line-break forms. A literal section sign is left as is.
func Normalize(s string, newlines bool) string {
	s = sectionReplacer.Replace(s)
	if newlines {
		s = newlineReplacer.Replace(s)
	}
	return s
}

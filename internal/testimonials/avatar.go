package testimonials

import (
	"fmt"
	"hash/fnv"
	"html"
	"net/url"
	"strings"
	"unicode"
)

var avatarPalette = []string{
	"#1e88e5", "#43a047", "#e53935", "#8e24aa",
	"#fb8c00", "#00897b", "#3949ab", "#6d4c41",
}

// Avatar returns an SVG data URI showing the initials of name on a colour
// picked from the name, so the same name always renders the same avatar.
func Avatar(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	color := avatarPalette[h.Sum32()%uint32(len(avatarPalette))]

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">`+
			`<rect width="100" height="100" fill="%s"/>`+
			`<text x="50" y="50" dy="0.35em" text-anchor="middle" font-family="Arial, sans-serif" font-size="42" fill="#ffffff">%s</text>`+
			`</svg>`,
		color, html.EscapeString(Initials(name)))
	return "data:image/svg+xml;utf8," + url.PathEscape(svg)
}

// Initials takes the first letter of the first and last words, upper-cased.
func Initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	switch len(words) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(string([]rune(words[0])[:1]))
	default:
		first := []rune(words[0])[:1]
		last := []rune(words[len(words)-1])[:1]
		return strings.ToUpper(string(first) + string(last))
	}
}

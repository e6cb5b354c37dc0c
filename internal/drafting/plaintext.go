package drafting

import (
	"regexp"
	"strings"
)

var headingMarker = regexp.MustCompile(`(?m)^[ \t]*#+[ \t]*`)

// PlainText strips markdown emphasis and heading markers. The result never
// contains "*" or "#".
func PlainText(s string) string {
	s = headingMarker.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "#", "")
	return strings.TrimSpace(s)
}

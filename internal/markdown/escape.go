package markdown

import (
	"github.com/yuin/goldmark/util"
)

// escapeHTML escapes &, <, > and " for use in text and attribute values.
func escapeHTML(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

// escapeHref percent-encodes a link destination and then escapes it for an
// HTML attribute. Existing %xx sequences are kept.
func escapeHref(s string) string {
	return string(util.EscapeHTML(util.URLEscape([]byte(s), false)))
}

// resolve turns source text into literal text: backslash escapes are removed
// and entity and numeric character references are decoded.
func resolve(v []byte) string {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

package blog

import (
	"strconv"
	"strings"
)

// Compose builds the text of an article file. With versioned set the
// CurrentVersion line is written first.
func Compose(title string, date Date, body string, versioned bool) []byte {
	var sb strings.Builder
	if versioned {
		sb.WriteString(strconv.Itoa(CurrentVersion))
		sb.WriteByte('\n')
	}
	sb.WriteString(title)
	sb.WriteByte('\n')
	sb.WriteString(date.Token())
	sb.WriteByte('\n')
	sb.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// Versioned reports whether the parser expects a version line.
func (p *Parser) Versioned() bool {
	return p.versionHeader
}

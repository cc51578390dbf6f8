// Package cqcode implements the inline "CQ code" markup used to embed rich
// content (images, voice, mentions, replies, shares) inside plain chat text.
//
// A code has the form [CQ:<type>(,<key>=<value>)*] and is embedded inline in
// otherwise plain text. Free text around codes and field values inside codes
// use two different escaping modes.
package cqcode

import (
	"strings"
)

var (
	plainEscaper = strings.NewReplacer(
		"&", "&amp;",
		"[", "&#91;",
		"]", "&#93;",
	)
	fieldEscaper = strings.NewReplacer(
		"&", "&amp;",
		"[", "&#91;",
		"]", "&#93;",
		",", "&#44;",
	)
	unescaper = strings.NewReplacer(
		"&#44;", ",",
		"&#91;", "[",
		"&#93;", "]",
		"&amp;", "&",
	)
)

// Escape escapes s for embedding in a message. With insideCode set, s is
// escaped for use as a field key or value: commas are escaped too and
// pictographic symbols are replaced with a space.
func Escape(s string, insideCode bool) string {
	if !insideCode {
		return plainEscaper.Replace(s)
	}
	return stripPictographs(fieldEscaper.Replace(s))
}

// Unescape reverses Escape. Pictographs removed by field escaping are not restored.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return unescaper.Replace(s)
}

// isPictograph reports whether r falls into one of the symbol ranges that
// renderers reject inside field values.
func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F3FF:
		return true
	case r >= 0x1F400 && r <= 0x1F64F:
		return true
	case r >= 0x1F680 && r <= 0x1F6FF:
		return true
	case r >= 0x2600 && r <= 0x2B55:
		return true
	}
	return false
}

func stripPictographs(s string) string {
	if strings.IndexFunc(s, isPictograph) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isPictograph(r) {
			return ' '
		}
		return r
	}, s)
}

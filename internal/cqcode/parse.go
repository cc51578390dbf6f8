package cqcode

import "strings"

// SegmentKind tells text segments from code segments.
type SegmentKind string

const (
	SegmentText SegmentKind = "text"
	SegmentCode SegmentKind = "code"
)

// Segment is one piece of a message: either unescaped free text or a code.
type Segment struct {
	Kind SegmentKind
	Text string
	Code *Code
}

type scanState int

const (
	stateType scanState = iota
	stateKey
	stateValue
)

// Parse returns every well-formed code in text, left to right. Codes are
// never nested and malformed spans are skipped; Parse never fails.
func Parse(text string) []*Code {
	var codes []*Code
	scan(text, func(start, end int, code *Code) {
		codes = append(codes, code)
	})
	return codes
}

// Segments splits text into alternating text and code segments in order of
// appearance. Text segments are unescaped; empty text segments are dropped.
func Segments(text string) []Segment {
	var segments []Segment
	last := 0
	scan(text, func(start, end int, code *Code) {
		if start > last {
			segments = append(segments, Segment{Kind: SegmentText, Text: Unescape(text[last:start])})
		}
		segments = append(segments, Segment{Kind: SegmentCode, Code: code})
		last = end
	})
	if last < len(text) {
		segments = append(segments, Segment{Kind: SegmentText, Text: Unescape(text[last:])})
	}
	return segments
}

// PlainText drops every code from text and returns the unescaped remainder.
func PlainText(text string) string {
	var b strings.Builder
	for _, seg := range Segments(text) {
		if seg.Kind == SegmentText {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// scan calls emit for each code found in text with the byte span it covers.
func scan(text string, emit func(start, end int, code *Code)) {
	offset := 0
	for offset < len(text) {
		i := strings.Index(text[offset:], codePrefix)
		if i < 0 {
			return
		}
		start := offset + i
		code, end, ok := matchAt(text, start)
		if !ok {
			offset = start + 1
			continue
		}
		emit(start, end, code)
		offset = end
	}
}

// matchAt tries to read one code beginning at text[start:], which must start
// with codePrefix. It returns the code and the offset just past its closing
// bracket.
func matchAt(text string, start int) (*Code, int, bool) {
	pos := start + len(codePrefix)
	state := stateType
	tokenStart := pos
	var (
		code *Code
		key  string
	)
	for ; pos < len(text); pos++ {
		ch := text[pos]
		switch state {
		case stateType:
			switch ch {
			case '[':
				return nil, 0, false
			case ',', ']':
				if pos == tokenStart {
					return nil, 0, false
				}
				code = New(text[tokenStart:pos])
				if ch == ']' {
					return code, pos + 1, true
				}
				state = stateKey
				tokenStart = pos + 1
			}
		case stateKey:
			switch ch {
			case ',', '[', ']':
				return nil, 0, false
			case '=':
				if pos == tokenStart {
					return nil, 0, false
				}
				key = Unescape(text[tokenStart:pos])
				state = stateValue
				tokenStart = pos + 1
			}
		case stateValue:
			switch ch {
			case '[':
				return nil, 0, false
			case ',', ']':
				code.Set(key, Unescape(text[tokenStart:pos]))
				if ch == ']' {
					return code, pos + 1, true
				}
				state = stateKey
				tokenStart = pos + 1
			}
		}
	}
	return nil, 0, false
}

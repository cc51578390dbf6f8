package cqcode

import "testing"

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		insideCode bool
		want       string
	}{
		{name: "plain brackets", in: "[hi]", want: "&#91;hi&#93;"},
		{name: "plain ampersand first", in: "&#91;", want: "&amp;#91;"},
		{name: "plain keeps comma", in: "a,b", want: "a,b"},
		{name: "field comma", in: "a,b", insideCode: true, want: "a&#44;b"},
		{name: "field mixed", in: "a,b[c]d&e", insideCode: true, want: "a&#44;b&#91;c&#93;d&amp;e"},
		{name: "field emoji", in: "hi😀!", insideCode: true, want: "hi !"},
		{name: "field sun symbol", in: "☀x", insideCode: true, want: " x"},
		{name: "field rocket", in: "🚀", insideCode: true, want: " "},
		{name: "field keeps cjk", in: "你好", insideCode: true, want: "你好"},
		{name: "plain keeps emoji", in: "😀", want: "😀"},
		{name: "empty", in: "", insideCode: true, want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Escape(tt.in, tt.insideCode); got != tt.want {
				t.Fatalf("Escape(%q, %v) = %q, want %q", tt.in, tt.insideCode, got, tt.want)
			}
		})
	}
}

func TestUnescapeRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"a,b[c]d&e",
		"plain",
		"&&,,[[]]",
		"x=y",
		"",
	}
	for _, in := range inputs {
		for _, inside := range []bool{false, true} {
			if got := Unescape(Escape(in, inside)); got != in {
				t.Errorf("Unescape(Escape(%q, %v)) = %q", in, inside, got)
			}
		}
	}
}

func TestUnescapeOrder(t *testing.T) {
	t.Parallel()

	// An escaped literal entity must come back as the literal, not as the character.
	if got := Unescape("&amp;#44;"); got != "&#44;" {
		t.Fatalf("unexpected value: %q", got)
	}
	if got := Unescape("&#44;&#91;&#93;&amp;"); got != ",[]&" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestIsPictographBoundaries(t *testing.T) {
	t.Parallel()

	in := []rune{0x1F300, 0x1F3FF, 0x1F400, 0x1F64F, 0x1F680, 0x1F6FF, 0x2600, 0x2B55}
	out := []rune{0x1F2FF, 0x1F650, 0x1F67F, 0x1F700, 0x25FF, 0x2B56}
	for _, r := range in {
		if !isPictograph(r) {
			t.Errorf("expected %U to be stripped", r)
		}
	}
	for _, r := range out {
		if isPictograph(r) {
			t.Errorf("expected %U to be kept", r)
		}
	}
}

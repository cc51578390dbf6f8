package cqcode

import (
	"reflect"
	"testing"
)

func TestParseMultiple(t *testing.T) {
	t.Parallel()

	codes := Parse("hello [CQ:at,qq=123] world [CQ:reply,id=9]")
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}
	if codes[0].Type != "at" || !reflect.DeepEqual(codes[0].Pick("qq"), map[string]any{"qq": "123"}) {
		t.Fatalf("unexpected first code: %s", codes[0])
	}
	if codes[1].Type != "reply" || !reflect.DeepEqual(codes[1].Pick("id"), map[string]any{"id": "9"}) {
		t.Fatalf("unexpected second code: %s", codes[1])
	}
}

func TestParseCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "no fields", in: "[CQ:reply]", want: []string{"[CQ:reply]"}},
		{name: "empty value", in: "[CQ:image,file=]", want: []string{"[CQ:image,file=]"}},
		{name: "value with equals", in: "[CQ:share,url=a=b=c]", want: []string{"[CQ:share,url=a=b=c]"}},
		{name: "unclosed", in: "[CQ:at,qq=1", want: nil},
		{name: "empty type", in: "[CQ:]", want: nil},
		{name: "key without equals", in: "[CQ:at,qq]", want: nil},
		{name: "empty key", in: "[CQ:at,=1]", want: nil},
		{name: "nested bracket", in: "[CQ:at,qq=[CQ:reply,id=1]]", want: []string{"[CQ:reply,id=1]"}},
		{name: "stray prefix before code", in: "[CQ:[CQ:at,qq=2]", want: []string{"[CQ:at,qq=2]"}},
		{name: "adjacent", in: "[CQ:at,qq=1][CQ:at,qq=2]", want: []string{"[CQ:at,qq=1]", "[CQ:at,qq=2]"}},
		{name: "type with equals", in: "[CQ:a=b,k=v]", want: []string{"[CQ:a=b,k=v]"}},
		{name: "plain text", in: "nothing here [not a code]", want: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			codes := Parse(tt.in)
			var got []string
			for _, c := range codes {
				got = append(got, c.String())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseUnescapesFields(t *testing.T) {
	t.Parallel()

	codes := Parse("[CQ:share,url=http://x/?a=1&amp;b=2,title=a&#44;b&#91;c&#93;]")
	if len(codes) != 1 {
		t.Fatalf("expected 1 code, got %d", len(codes))
	}
	if got := codes[0].GetString("url"); got != "http://x/?a=1&b=2" {
		t.Fatalf("unexpected url: %q", got)
	}
	if got := codes[0].GetString("title"); got != "a,b[c]" {
		t.Fatalf("unexpected title: %q", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	original := New("share").
		Set("url", "https://example.com/p?q=1").
		Set("title", "Title with spaces").
		Set("content", "你好")
	codes := Parse("prefix " + original.String() + " suffix")
	if len(codes) != 1 {
		t.Fatalf("expected 1 code, got %d", len(codes))
	}
	if !codes[0].Equal(original) {
		t.Fatalf("round trip mismatch: %s vs %s", codes[0], original)
	}
	if !reflect.DeepEqual(codes[0].Keys(), original.Keys()) {
		t.Fatalf("key order mismatch: %v vs %v", codes[0].Keys(), original.Keys())
	}
}

func TestParseDuplicateKeyLastWins(t *testing.T) {
	t.Parallel()

	codes := Parse("[CQ:at,qq=1,qq=2]")
	if len(codes) != 1 {
		t.Fatalf("expected 1 code, got %d", len(codes))
	}
	if got := codes[0].String(); got != "[CQ:at,qq=2]" {
		t.Fatalf("unexpected markup: %s", got)
	}
}

func TestSegments(t *testing.T) {
	t.Parallel()

	segs := Segments("hi &#91;x&#93; [CQ:at,qq=1]bye")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[0].Kind != SegmentText || segs[0].Text != "hi [x] " {
		t.Fatalf("unexpected first segment: %+v", segs[0])
	}
	if segs[1].Kind != SegmentCode || segs[1].Code.GetString("qq") != "1" {
		t.Fatalf("unexpected code segment: %+v", segs[1])
	}
	if segs[2].Kind != SegmentText || segs[2].Text != "bye" {
		t.Fatalf("unexpected last segment: %+v", segs[2])
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	if got := PlainText("a[CQ:at,qq=1] &amp; b[CQ:reply]"); got != "a & b" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := PlainText(""); got != "" {
		t.Fatalf("unexpected text: %q", got)
	}
}

package srt_test

import (
	"strings"
	"testing"

	"livecap/internal/srt"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61, "00:01:01,000"},
		{3661.042, "01:01:01,042"},
		{-2, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := srt.FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestParseTimestampNormalizesPeriodSeparator(t *testing.T) {
	got, err := srt.ParseTimestamp("00:01:30.250")
	if err != nil {
		t.Fatalf("ParseTimestamp returned error: %v", err)
	}
	if got != 90.25 {
		t.Fatalf("ParseTimestamp = %v, want 90.25", got)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "abc", "1:2", "aa:bb:cc,ddd"} {
		if _, err := srt.ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) succeeded, want error", bad)
		}
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	cues := []srt.Cue{
		{Index: 1, Start: 10, End: 20, Text: "hello"},
		{Index: 2, Start: 30, End: 40, Text: "two\nlines"},
		{Index: 3, Start: 40, End: 50, Text: "café — test"},
	}
	doc := srt.Render(cues)

	parsed, err := srt.Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed) != len(cues) {
		t.Fatalf("round trip produced %d cues, want %d", len(parsed), len(cues))
	}
	for i, cue := range cues {
		if parsed[i] != cue {
			t.Errorf("cue %d mismatch: got %+v want %+v", i, parsed[i], cue)
		}
	}
}

func TestRenderFormat(t *testing.T) {
	doc := srt.Render([]srt.Cue{{Index: 1, Start: 10, End: 20, Text: "hello"}})
	want := "1\n00:00:10,000 --> 00:00:20,000\nhello\n\n"
	if doc != want {
		t.Fatalf("Render = %q, want %q", doc, want)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cues, err := srt.Parse("   \n\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 0 {
		t.Fatalf("expected no cues, got %d", len(cues))
	}
}

func TestParseTruncatedBlockFails(t *testing.T) {
	if _, err := srt.Parse("1\n00:00:10,000 --> 00:00:2"); err == nil {
		t.Fatal("expected error for truncated document")
	}
	if _, err := srt.Parse("1\n00:00:10,000 --> 00:00:20,000"); err == nil {
		t.Fatal("expected error for block missing text line")
	}
}

func TestParseCRLFDocument(t *testing.T) {
	doc := strings.ReplaceAll("1\n00:00:00,000 --> 00:00:05,000\nhi\n\n", "\n", "\r\n")
	cues, err := srt.Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "hi" {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

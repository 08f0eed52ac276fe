package lyrics

import (
	"strings"
	"testing"
	"time"
)

func TestParseLRC(t *testing.T) {
	text := strings.Join([]string{
		"[ar: Someone]",
		"[00:12.50] Second line",
		"[00:01.00]First line",
		"no timestamp here",
		"[01:02.25] Third line ",
		"[00:20] Whole seconds",
		"[00:30.00][01:10.00] Chorus",
	}, "\n")

	lines := ParseLRC(text)
	expected := []Line{
		{Time: time.Second, Text: "First line"},
		{Time: 12*time.Second + 500*time.Millisecond, Text: "Second line"},
		{Time: 20 * time.Second, Text: "Whole seconds"},
		{Time: 30 * time.Second, Text: "Chorus"},
		{Time: time.Minute + 2*time.Second + 250*time.Millisecond, Text: "Third line"},
		{Time: time.Minute + 10*time.Second, Text: "Chorus"},
	}

	if len(lines) != len(expected) {
		t.Fatalf("ParseLRC() returned %d lines, expected %d: %+v", len(lines), len(expected), lines)
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("ParseLRC()[%d] = %+v, expected %+v", i, lines[i], want)
		}
	}
}

func TestLyrics_LineAt(t *testing.T) {
	l := &Lyrics{
		Synced: true,
		Lines: []Line{
			{Time: 2 * time.Second, Text: "a"},
			{Time: 5 * time.Second, Text: "b"},
			{Time: 9 * time.Second, Text: "c"},
		},
	}

	tests := []struct {
		progress time.Duration
		expected int
	}{
		{0, -1},
		{1999 * time.Millisecond, -1},
		{2 * time.Second, 0},
		{4 * time.Second, 0},
		{5 * time.Second, 1},
		{time.Minute, 2},
	}
	for _, tt := range tests {
		if got := l.LineAt(tt.progress); got != tt.expected {
			t.Errorf("LineAt(%v) = %d, expected %d", tt.progress, got, tt.expected)
		}
	}

	unsynced := &Lyrics{Lines: ParsePlain("one\ntwo")}
	if got := unsynced.LineAt(time.Hour); got != -1 {
		t.Errorf("Unsynced LineAt() = %d, expected -1", got)
	}
	var none *Lyrics
	if got := none.LineAt(0); got != -1 {
		t.Errorf("Nil LineAt() = %d, expected -1", got)
	}
}

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()
	if theme.LineColor != "#fff" || theme.TextColor != "#fff" {
		t.Errorf("DefaultTheme() = %+v, expected white line and text", theme)
	}
	if len(theme.Background) != 7 || theme.Background[0] != '#' {
		t.Errorf("Background = %q, expected #rrggbb", theme.Background)
	}
}

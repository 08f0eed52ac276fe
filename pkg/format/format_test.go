package format

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{input: 0, expected: "0:00"},
		{input: 5 * time.Second, expected: "0:05"},
		{input: 30*time.Second + 900*time.Millisecond, expected: "0:30"},
		{input: 3*time.Minute + 7*time.Second, expected: "3:07"},
		{input: time.Hour + 2*time.Minute + 3*time.Second, expected: "1:02:03"},
		{input: -time.Second, expected: "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.input); got != tt.expected {
			t.Errorf("FormatTime(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatLong(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{input: 42 * time.Second, expected: "42 sec"},
		{input: 12 * time.Minute, expected: "12 min"},
		{input: 2*time.Hour + 5*time.Minute, expected: "2 hr 5 min"},
	}

	for _, tt := range tests {
		if got := FormatLong(tt.input); got != tt.expected {
			t.Errorf("FormatLong(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		at       time.Time
		expected string
	}{
		{name: "Seconds", at: now.Add(-10 * time.Second), expected: "just now"},
		{name: "One minute", at: now.Add(-time.Minute), expected: "1 minute ago"},
		{name: "Hours", at: now.Add(-3 * time.Hour), expected: "3 hours ago"},
		{name: "Days", at: now.Add(-48 * time.Hour), expected: "2 days ago"},
		{name: "Weeks", at: now.Add(-15 * 24 * time.Hour), expected: "2 weeks ago"},
		{name: "Years", at: now.AddDate(-2, 0, 0), expected: "2 years ago"},
		{name: "Future", at: now.Add(time.Hour), expected: "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeAgo(tt.at, now); got != tt.expected {
				t.Errorf("TimeAgo() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestChooseImage(t *testing.T) {
	images := []Image{
		{URL: "large", Width: 640},
		{URL: "medium", Width: 300},
		{URL: "small", Width: 64},
	}

	tests := []struct {
		name     string
		images   []Image
		minWidth int
		expected string
	}{
		{name: "Smallest fitting", images: images, minWidth: 200, expected: "medium"},
		{name: "Exact width", images: images, minWidth: 64, expected: "small"},
		{name: "Nothing big enough", images: images, minWidth: 1000, expected: "large"},
		{name: "Unknown width counts as large", images: []Image{{URL: "a", Width: 64}, {URL: "b"}}, minWidth: 300, expected: "b"},
		{name: "Empty", images: nil, minWidth: 64, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseImage(tt.images, tt.minWidth); got != tt.expected {
				t.Errorf("ChooseImage() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestConjunction(t *testing.T) {
	tests := []struct {
		items    []string
		and      string
		expected string
	}{
		{items: nil, expected: ""},
		{items: []string{"a"}, expected: "a"},
		{items: []string{"a", "b"}, expected: "a and b"},
		{items: []string{"a", "b", "c"}, expected: "a, b and c"},
		{items: []string{"a", "b"}, and: "y", expected: "a y b"},
	}

	for _, tt := range tests {
		if got := Conjunction(tt.items, tt.and); got != tt.expected {
			t.Errorf("Conjunction(%v, %q) = %q, expected %q", tt.items, tt.and, got, tt.expected)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{input: 0, expected: "0"},
		{input: 999, expected: "999"},
		{input: 1000, expected: "1,000"},
		{input: 1234567, expected: "1,234,567"},
		{input: -45000, expected: "-45,000"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.input); got != tt.expected {
			t.Errorf("FormatNumber(%d) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestChunk(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	chunks := Chunk(ids, 2)
	if len(chunks) != 3 {
		t.Fatalf("len(Chunk()) = %d, expected 3", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0] != "e" {
		t.Errorf("last chunk = %v, expected [e]", chunks[2])
	}
	if got := Chunk(ids, 0); got != nil {
		t.Errorf("Chunk(size 0) = %v, expected nil", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		n        int
		expected string
	}{
		{input: "short", n: 10, expected: "short"},
		{input: "exactly", n: 7, expected: "exactly"},
		{input: "a longer title", n: 6, expected: "a lon…"},
		{input: "ñandú", n: 3, expected: "ña…"},
		{input: "x", n: 0, expected: ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.input, tt.n); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, expected %q", tt.input, tt.n, got, tt.expected)
		}
	}
}

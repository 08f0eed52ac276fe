package fuzzy

import (
	"testing"
	"time"
)

type stringCase struct {
	name     string
	input    string
	expected string
}

func runStringTransformationTest(t *testing.T, testName string, transformFunc func(string) string, testCases []stringCase) {
	t.Helper()
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if result := transformFunc(tt.input); result != tt.expected {
				t.Errorf("%s(%q) = %q, expected %q", testName, tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_NormalizeArtist(t *testing.T) {
	normalizer := NewNormalizer()

	runStringTransformationTest(t, "NormalizeArtist", normalizer.NormalizeArtist, []stringCase{
		{name: "Duo joined by and", input: "Simon and Garfunkel", expected: "simon & garfunkel"},
		{name: "Accented name", input: "Sigur Rós", expected: "sigur ros"},
		{name: "Slash in name", input: "AC/DC", expected: "ac dc"},
		{name: "Versus", input: "Armin vs Tiesto", expected: "armin vs. tiesto"},
		{name: "Mixed case", input: "beyoncé", expected: "beyonce"},
	})
}

func TestNormalizer_NormalizeTitle(t *testing.T) {
	normalizer := NewNormalizer()

	runStringTransformationTest(t, "NormalizeTitle", normalizer.NormalizeTitle, []stringCase{
		{name: "Remaster note", input: "Yesterday (Remastered 2009)", expected: "yesterday"},
		{name: "Featured artist", input: "Stay (feat. Justin Bieber)", expected: "stay"},
		{name: "Cedilla", input: "Ça Plane Pour Moi", expected: "ca plane pour moi"},
		{name: "Repeated spaces", input: "Yellow   Submarine", expected: "yellow submarine"},
	})
}

func TestNormalizer_CalculateSimilarity(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		s1, s2   string
		expected float64
	}{
		{name: "Identical", s1: "lyrics", s2: "lyrics", expected: 1},
		{name: "Both empty", s1: "", s2: "", expected: 1},
		{name: "One empty", s1: "night", s2: "", expected: 0},
		{name: "One extra letter", s1: "night", s2: "knight", expected: 5.0 / 6.0},
		{name: "Nothing shared", s1: "abc", s2: "xyz", expected: 0},
		{name: "Prefix of a longer title", s1: "stay", s2: "stay with me", expected: 4.0 / 12.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := normalizer.CalculateSimilarity(tt.s1, tt.s2); abs64(result-tt.expected) > 0.001 {
				t.Errorf("CalculateSimilarity(%q, %q) = %f, expected %f", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_DurationTolerance(t *testing.T) {
	normalizer := NewNormalizer()
	song := 4 * time.Minute

	tests := []struct {
		name     string
		other    time.Duration
		expected float64
	}{
		{name: "Same length", other: song, expected: 1},
		{name: "Inside the window", other: song + 25*time.Second, expected: 1},
		{name: "One minute longer", other: song + time.Minute, expected: 2.0 / 3.0},
		{name: "One minute shorter", other: song - time.Minute, expected: 2.0 / 3.0},
		{name: "Halfway to the limit", other: song + 75*time.Second, expected: 0.5},
		{name: "Past the limit", other: song + 3*time.Minute, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := normalizer.DurationTolerance(song, tt.other); abs64(result-tt.expected) > 0.001 {
				t.Errorf("DurationTolerance(%v, %v) = %f, expected %f", song, tt.other, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_SearchTitle(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []stringCase{
		{
			name:     "Plain title is kept",
			input:    "Don't Stop Me Now",
			expected: "Don't Stop Me Now",
		},
		{
			name:     "Remaster suffix",
			input:    "Hey Jude - Remastered 2009",
			expected: "Hey Jude",
		},
		{
			name:     "Mix suffix",
			input:    "Bohemian Rhapsody - 2011 Mix",
			expected: "Bohemian Rhapsody",
		},
		{
			name:     "Featuring in brackets",
			input:    "Crazy in Love (feat. Jay-Z)",
			expected: "Crazy in Love",
		},
		{
			name:     "Live version in brackets",
			input:    "Creep [Live Version]",
			expected: "Creep",
		},
		{
			name:     "Dash without release note",
			input:    "Part 1 - The Beginning",
			expected: "Part 1 - The Beginning",
		},
		{
			name:     "Only a note falls back to the raw title",
			input:    "(Live)",
			expected: "(Live)",
		},
	}

	runStringTransformationTest(t, "SearchTitle", normalizer.SearchTitle, tests)
}

func TestNormalizer_Score(t *testing.T) {
	normalizer := NewNormalizer()
	want := Candidate{Title: "Hey Jude - Remastered 2009", Artist: "The Beatles", Duration: 7*time.Minute + 11*time.Second}

	exact := normalizer.Score(want, Candidate{Title: "Hey Jude", Artist: "The Beatles", Duration: 7*time.Minute + 10*time.Second})
	if abs64(exact-1.0) > 0.001 {
		t.Errorf("Score(exact) = %f, expected 1.0", exact)
	}

	wrongDuration := normalizer.Score(want, Candidate{Title: "Hey Jude", Artist: "The Beatles", Duration: 3 * time.Minute})
	if wrongDuration >= exact {
		t.Errorf("Score(wrong duration) = %f, expected less than %f", wrongDuration, exact)
	}

	unknownDuration := normalizer.Score(want, Candidate{Title: "Hey Jude", Artist: "The Beatles"})
	if abs64(unknownDuration-1.0) > 0.001 {
		t.Errorf("Score(unknown duration) = %f, expected 1.0", unknownDuration)
	}

	other := normalizer.Score(want, Candidate{Title: "Yesterday", Artist: "Someone Else", Duration: 2 * time.Minute})
	if other > 0.5 {
		t.Errorf("Score(other song) = %f, expected at most 0.5", other)
	}
}

func TestNormalizer_Best(t *testing.T) {
	normalizer := NewNormalizer()
	want := Candidate{Title: "Creep", Artist: "Radiohead", Duration: 3*time.Minute + 56*time.Second}
	candidates := []Candidate{
		{Title: "Creep (Acoustic)", Artist: "Cover Band", Duration: 4 * time.Minute},
		{Title: "Creep", Artist: "Radiohead", Duration: 3*time.Minute + 58*time.Second},
		{Title: "Karma Police", Artist: "Radiohead", Duration: 4*time.Minute + 21*time.Second},
	}

	idx, score := normalizer.Best(want, candidates, 0.7)
	if idx != 1 {
		t.Errorf("Best() index = %d (score %f), expected 1", idx, score)
	}

	idx, _ = normalizer.Best(want, candidates[2:], 0.9)
	if idx != -1 {
		t.Errorf("Best() index = %d, expected -1 when nothing reaches the threshold", idx)
	}

	idx, _ = normalizer.Best(want, nil, 0)
	if idx != -1 {
		t.Errorf("Best(nil) index = %d, expected -1", idx)
	}
}

func BenchmarkNormalizer_Score(b *testing.B) {
	normalizer := NewNormalizer()
	want := Candidate{Title: "Hey Jude - Remastered 2009", Artist: "The Beatles", Duration: 7 * time.Minute}
	got := Candidate{Title: "Hey Jude", Artist: "Beatles", Duration: 7*time.Minute + 4*time.Second}

	b.ResetTimer()
	for range b.N {
		normalizer.Score(want, got)
	}
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

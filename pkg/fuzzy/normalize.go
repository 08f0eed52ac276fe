// Package fuzzy normalizes track metadata and scores lyrics search candidates
// against the track that is playing.
package fuzzy

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]?\s*`)
	remixRegex      = regexp.MustCompile(`(?i)\s*[\(\[]?\s*.*remix.*[\)\]]?\s*`)
	versionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(remaster|remastered|deluxe|extended|radio edit|clean|explicit).*[\)\]]?\s*`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// Suffixes Spotify appends to titles that lyric databases do not carry.
	dashSuffixRegex  = regexp.MustCompile(`(?i)\s+-\s+(?:.*\b(?:remaster(?:ed)?|version|edit|live|mono|stereo|mix)\b.*)$`)
	bracketNoteRegex = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(?:feat\.?|ft\.?|featuring|remaster(?:ed)?|version|edit|live|mono|stereo)\b[^\)\]]*[\)\]]`)
)

const (
	titleWeight    = 0.6
	artistWeight   = 0.25
	durationWeight = 0.15

	durationTolerance = 30 * time.Second
	maxDurationDiff   = 2 * time.Minute
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) NormalizeArtist(artist string) string {
	artist = n.basicNormalize(artist)

	artist = strings.ReplaceAll(artist, " and ", " & ")
	artist = strings.ReplaceAll(artist, " vs ", " vs. ")
	artist = strings.ReplaceAll(artist, " feat ", " feat. ")
	artist = strings.ReplaceAll(artist, " ft ", " ft. ")

	return artist
}

func (n *Normalizer) NormalizeTitle(title string) string {
	title = n.basicNormalize(title)

	title = featRegex.ReplaceAllString(title, "")
	title = remixRegex.ReplaceAllString(title, "")
	title = versionRegex.ReplaceAllString(title, "")

	return strings.TrimSpace(title)
}

// SearchTitle strips release notes ("- Remastered 2011", "(feat. X)") from a
// title while keeping its casing and punctuation, which is what lyric
// databases index.
func (n *Normalizer) SearchTitle(title string) string {
	cleaned := bracketNoteRegex.ReplaceAllString(title, "")
	cleaned = dashSuffixRegex.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return strings.TrimSpace(title)
	}
	return cleaned
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(strings.ToLower(text))
}

// CalculateSimilarity is the longest common subsequence ratio of s1 and s2.
func (n *Normalizer) CalculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if s1 == "" || s2 == "" {
		return 0.0
	}

	return float64(longestCommonSubsequence(s1, s2)) / float64(max(len(s1), len(s2)))
}

func longestCommonSubsequence(s1, s2 string) int {
	m, n := len(s1), len(s2)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if s1[i-1] == s2[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	return dp[m][n]
}

// DurationTolerance is 1 within 30s, falling linearly to 0 at two minutes apart.
func (n *Normalizer) DurationTolerance(d1, d2 time.Duration) float64 {
	diff := d1 - d2
	if diff < 0 {
		diff = -diff
	}

	if diff <= durationTolerance {
		return 1.0
	}
	if diff >= maxDurationDiff {
		return 0.0
	}

	return 1.0 - float64(diff-durationTolerance)/float64(maxDurationDiff-durationTolerance)
}

// Candidate is the metadata compared when picking a lyrics match.
type Candidate struct {
	Title    string
	Artist   string
	Duration time.Duration
}

// Score rates how well got matches want, from 0 to 1. An unknown duration on
// either side is treated as a match.
func (n *Normalizer) Score(want, got Candidate) float64 {
	title := n.CalculateSimilarity(n.NormalizeTitle(want.Title), n.NormalizeTitle(got.Title))
	artist := n.CalculateSimilarity(n.NormalizeArtist(want.Artist), n.NormalizeArtist(got.Artist))
	duration := 1.0
	if want.Duration > 0 && got.Duration > 0 {
		duration = n.DurationTolerance(want.Duration, got.Duration)
	}
	return titleWeight*title + artistWeight*artist + durationWeight*duration
}

// Best returns the index and score of the best candidate, or -1 when none
// reaches minScore.
func (n *Normalizer) Best(want Candidate, candidates []Candidate, minScore float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		score := n.Score(want, c)
		if score >= minScore && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

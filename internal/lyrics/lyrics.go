// Package lyrics fetches and times lyrics for the item that is playing.
package lyrics

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var lrcTimeRegex = regexp.MustCompile(`^\[(\d+):(\d+(?:\.\d+)?)\]`)

type Line struct {
	Time time.Duration
	Text string
}

// Lyrics holds the lines of one track. Unsynced lyrics carry no timing.
type Lyrics struct {
	Lines  []Line
	Synced bool
	Source string
}

// LineAt returns the index of the line active at progress, or -1 before the
// first line and for unsynced lyrics.
func (l *Lyrics) LineAt(progress time.Duration) int {
	if l == nil || !l.Synced {
		return -1
	}
	// First line starting after progress, minus one.
	return sort.Search(len(l.Lines), func(i int) bool {
		return l.Lines[i].Time > progress
	}) - 1
}

// ParseLRC reads "[mm:ss.xx] text" lines, sorted by time. A line with several
// leading timestamps is repeated at each of them. Lines without a timestamp
// are skipped.
func ParseLRC(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		rest := strings.TrimSpace(raw)
		var times []time.Duration
		for {
			matches := lrcTimeRegex.FindStringSubmatch(rest)
			if matches == nil {
				break
			}
			minutes, _ := strconv.Atoi(matches[1])
			seconds, _ := strconv.ParseFloat(matches[2], 64)
			times = append(times, time.Duration(minutes)*time.Minute+time.Duration(seconds*float64(time.Second)))
			rest = rest[len(matches[0]):]
		}

		lyric := strings.TrimSpace(rest)
		for _, at := range times {
			lines = append(lines, Line{Time: at, Text: lyric})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return lines
}

// ParsePlain splits unsynced lyrics into lines.
func ParsePlain(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		lines = append(lines, Line{Text: strings.TrimSpace(raw)})
	}
	return lines
}

// Theme colors the lyrics overlay.
type Theme struct {
	LineColor  string
	TextColor  string
	Background string
}

func DefaultTheme() Theme {
	return Theme{
		LineColor:  "#fff",
		TextColor:  "#fff",
		Background: RandomColor(),
	}
}

// RandomColor returns a dark "#rrggbb" color that white text reads on.
func RandomColor() string {
	return fmt.Sprintf("#%02x%02x%02x", rand.IntN(128), rand.IntN(128), rand.IntN(128))
}

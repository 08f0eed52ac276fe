// Package format renders durations, dates, counts and lists for display.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Image is the minimal shape ChooseImage works on.
type Image struct {
	URL   string
	Width int
}

// FormatTime renders d as m:ss, or h:mm:ss from one hour on.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatLong renders d as "1 hr 5 min" for page headers.
func FormatLong(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d sec", int(d/time.Second))
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d hr %d min", hours, minutes)
}

// TimeAgo renders the distance between t and now in the largest whole unit.
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	units := []struct {
		name string
		size time.Duration
	}{
		{"year", 365 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
	}
	for _, u := range units {
		if n := int(diff / u.size); n >= 1 {
			if n == 1 {
				return "1 " + u.name + " ago"
			}
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
	}
	return "just now"
}

// ChooseImage returns the smallest image at least minWidth wide, falling
// back to the largest one. Images with unknown width count as large.
func ChooseImage(images []Image, minWidth int) string {
	if len(images) == 0 {
		return ""
	}
	best, largest := -1, 0
	for i, img := range images {
		w := widthOf(img)
		if w > widthOf(images[largest]) {
			largest = i
		}
		if w >= minWidth && (best == -1 || w < widthOf(images[best])) {
			best = i
		}
	}
	if best == -1 {
		return images[largest].URL
	}
	return images[best].URL
}

func widthOf(img Image) int {
	if img.Width == 0 {
		return int(^uint(0) >> 1)
	}
	return img.Width
}

// Conjunction joins items as "a", "a and b" or "a, b and c".
func Conjunction(items []string, and string) string {
	if and == "" {
		and = "and"
	}
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " " + and + " " + items[len(items)-1]
}

// FormatNumber groups thousands with commas.
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Chunk splits s into consecutive slices of at most size elements.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 || len(s) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		chunks = append(chunks, s[start:end])
	}
	return chunks
}

// Truncate shortens s to at most n runes, ending with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

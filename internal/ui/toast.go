package ui

import (
	"strings"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
)

// maxToasts is how many toasts stay visible at once.
const maxToasts = 3

type toastEntry struct {
	id    int
	toast core.Toast
}

// toastQueue keeps the visible toasts, oldest first.
type toastQueue struct {
	nextID  int
	entries []toastEntry
}

func (q *toastQueue) push(t core.Toast) int {
	q.nextID++
	q.entries = append(q.entries, toastEntry{id: q.nextID, toast: t})
	if len(q.entries) > maxToasts {
		q.entries = q.entries[len(q.entries)-maxToasts:]
	}
	return q.nextID
}

func (q *toastQueue) remove(id int) {
	for i, e := range q.entries {
		if e.id == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

func (q *toastQueue) len() int { return len(q.entries) }

func (q *toastQueue) render(loc *i18n.Localizer) string {
	parts := make([]string, 0, len(q.entries))
	for _, e := range q.entries {
		style, ok := styles.toasts[e.toast.Variant]
		if !ok {
			style = styles.toasts[core.ToastInfo]
		}
		parts = append(parts, style.Render(loc.T(e.toast.Key, e.toast.Args...)))
	}
	return strings.Join(parts, " ")
}

package core

import "time"

// ProgressView is what a progress bar needs to render one frame.
type ProgressView struct {
	Percent       float64
	Label         time.Duration
	Total         time.Duration
	StepPerSecond float64
}

// Progress computes the bar for a position within a duration. The label never
// runs past the duration even when the backend reports an overshoot.
func Progress(position, duration time.Duration) ProgressView {
	view := ProgressView{Label: position, Total: duration}
	if position < 0 {
		view.Label = 0
	}
	if duration <= 0 {
		return view
	}
	if view.Label > duration {
		view.Label = duration
	}
	view.Percent = 100 * float64(view.Label) / float64(duration)
	view.StepPerSecond = 100 / duration.Seconds()
	return view
}

// SeekTarget converts a bar percentage into a position within duration.
func SeekTarget(percent float64, duration time.Duration) time.Duration {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return time.Duration(percent * float64(duration) / 100)
}

package metrics

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uilive"
)

const progressBarWidth = 30

// ProgressSource is the read-only view of a search the reporter polls.
type ProgressSource interface {
	Attempts() uint64
	Running() bool
	Found() bool
}

// ProgressReporter redraws a single progress line on a fixed cadence. It
// only reads its source, so a failed write never affects the search.
type ProgressReporter struct {
	out      io.Writer
	label    string
	total    uint64
	interval time.Duration
	now      func() time.Time
}

func NewProgressReporter(out io.Writer, label string, total uint64, interval time.Duration) *ProgressReporter {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &ProgressReporter{
		out:      out,
		label:    label,
		total:    total,
		interval: interval,
		now:      time.Now,
	}
}

// Run samples src until it stops running, finds a match, or ctx ends.
func (r *ProgressReporter) Run(ctx context.Context, src ProgressSource) error {
	w := uilive.New()
	w.Out = r.out

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	start := r.now()
	last := src.Attempts()
	lastTick := start

	for {
		select {
		case <-ctx.Done():
			return r.render(w, src.Attempts(), 0, r.now().Sub(start))
		case <-ticker.C:
		}

		now := r.now()
		attempts := src.Attempts()
		var rate float64
		if dt := now.Sub(lastTick).Seconds(); dt > 0 && attempts >= last {
			rate = float64(attempts-last) / dt
		}
		last, lastTick = attempts, now

		if err := r.render(w, attempts, rate, now.Sub(start)); err != nil {
			return err
		}
		if !src.Running() || src.Found() {
			return nil
		}
	}
}

func (r *ProgressReporter) render(w *uilive.Writer, attempts uint64, rate float64, elapsed time.Duration) error {
	if _, err := fmt.Fprintln(w, FormatProgress(r.label, attempts, r.total, rate, elapsed)); err != nil {
		return err
	}
	return w.Flush()
}

// FormatProgress renders one progress line. Attempts may exceed total
// because the exhaustive total only counts the longest length.
func FormatProgress(label string, attempts, total uint64, rate float64, elapsed time.Duration) string {
	var pct float64
	if total > 0 {
		pct = float64(attempts) / float64(total) * 100
		if pct > 100 {
			pct = 100
		}
	}

	filled := int(pct / 100 * progressBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	return fmt.Sprintf("%s %3.0f%% |%s| %d/%d combos [%s, %.0f combos/s]",
		label, pct, bar, attempts, total, FormatDuration(elapsed), rate)
}

// FormatDuration renders d as MM:SS, or HH:MM:SS from one hour up.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	hours, minutes, seconds := secs/3600, (secs%3600)/60, secs%60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

package chart

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// sparkRunes are the glyphs used for console sparklines, lowest to highest.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// ConsoleRenderer draws charts as one-line sparklines on a writer. It is the
// chart backend of the runnable CLI.
type ConsoleRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleRenderer creates a console chart renderer.
func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

// New implements Renderer.
func (r *ConsoleRenderer) New(slotID string, opts Options) Handle {
	return &consoleHandle{renderer: r, slotID: slotID, opts: opts}
}

type consoleHandle struct {
	renderer *ConsoleRenderer
	slotID   string
	opts     Options
}

// Update implements Handle by redrawing the slot's sparklines.
func (h *consoleHandle) Update(labels []string, datasets []Dataset) {
	h.renderer.mu.Lock()
	defer h.renderer.mu.Unlock()

	out := h.renderer.out
	fmt.Fprintf(out, "%s\n", h.opts.Title)
	for _, ds := range datasets {
		line := sparkline(ds.Values, h.opts.YMax)
		latest := ""
		if len(ds.Values) > 0 {
			latest = fmt.Sprintf(" %.2f", ds.Values[len(ds.Values)-1])
		}
		fmt.Fprintf(out, "  %-12s %s%s\n", ds.Label, line, latest)
	}
	if len(labels) > 0 {
		fmt.Fprintf(out, "  %s\n", strings.Join(tickLabels(labels, h.opts.MaxTicks), " "))
	}
}

// tickLabels samples at most maxTicks labels, evenly spaced, always keeping
// the first and last so the axis range stays visible.
func tickLabels(labels []string, maxTicks int) []string {
	if maxTicks <= 0 {
		maxTicks = MaxTicks
	}
	if len(labels) <= maxTicks {
		return labels
	}
	if maxTicks == 1 {
		return labels[len(labels)-1:]
	}

	ticks := make([]string, 0, maxTicks)
	step := float64(len(labels)-1) / float64(maxTicks-1)
	for i := 0; i < maxTicks; i++ {
		ticks = append(ticks, labels[int(float64(i)*step+0.5)])
	}
	return ticks
}

// sparkline maps values onto the spark glyph ramp. A fixed yMax pins the
// scale; yMax 0 scales to the series maximum.
func sparkline(values []float64, yMax float64) string {
	if len(values) == 0 {
		return ""
	}

	max := yMax
	if max == 0 {
		for _, v := range values {
			if v > max {
				max = v
			}
		}
	}
	if max == 0 {
		return strings.Repeat(string(sparkRunes[0]), len(values))
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(sparkRunes)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkRunes) {
			idx = len(sparkRunes) - 1
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

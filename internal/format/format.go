// Package format provides pure display formatters for dashboard values.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// byteUnits are ordered so that index i corresponds to 1024^i.
var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB"}

// Clock formats an instant as a wall-clock time for chart axis labels.
func Clock(t time.Time) string {
	return t.Format("15:04:05")
}

// DateTime formats an instant as a full date-time for tables and headers.
func DateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// Duration renders a duration in the dashboard's human form:
// "N seconds" under a minute, "N minutes" under an hour, otherwise
// "H hours, M minutes".
func Duration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds", secs)
	case secs < 3600:
		return fmt.Sprintf("%d minutes", secs/60)
	default:
		return fmt.Sprintf("%d hours, %d minutes", secs/3600, (secs%3600)/60)
	}
}

// Bytes renders a byte count using the largest unit that keeps the scaled
// value below 1024, rounded to two decimals with trailing zeros trimmed.
// Bytes(0) == "0 Bytes".
func Bytes(n float64) string {
	if n == 0 {
		return "0 Bytes"
	}
	idx := 0
	v := n
	for v >= 1024 && idx < len(byteUnits)-1 {
		v /= 1024
		idx++
	}
	return trimFloat(v) + " " + byteUnits[idx]
}

// Percent renders a percentage with two decimals and a trailing %.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Number renders a plain numeric value with up to two decimals.
func Number(v float64) string {
	return trimFloat(v)
}

// MetricValue picks a formatter from the metric name, following the display
// rules of the raw metric table: percent metrics get a % suffix, byte metrics
// are unit-scaled (with /s for rates), seconds metrics are humanized.
func MetricValue(name string, v float64) string {
	switch {
	case strings.Contains(name, "percent"):
		return Percent(v)
	case strings.Contains(name, "bytes"):
		s := Bytes(v)
		if strings.Contains(name, "per_sec") {
			s += "/s"
		}
		return s
	case strings.Contains(name, "seconds"):
		return Duration(time.Duration(v * float64(time.Second)))
	default:
		return trimFloat(v)
	}
}

// trimFloat rounds to two decimals and drops trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// ABOUTME: Shared parsing and formatting helpers for CLI commands.
// ABOUTME: Timestamps, column padding, id prefixes and optional numbers.
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harperreed/wellness/internal/models"
)

var faint = color.New(color.Faint)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// recordedAt parses an --at flag; empty means "now" and returns the zero time.
func recordedAt(flag string) (time.Time, error) {
	if flag == "" {
		return time.Time{}, nil
	}
	t, err := parseTime(flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %s", flag)
	}
	return t, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// when renders a timestamp as an absolute time plus a relative hint.
func when(t time.Time) string {
	return faint.Sprintf("%s %s", t.Local().Format("2006-01-02 15:04"), padRight("("+humanize.Time(t)+")", 16))
}

func printAdded(w io.Writer, what string, meta *models.LogMeta, detail string) {
	fmt.Fprintln(w, color.GreenString("✓ Added %s", what))
	fmt.Fprintf(w, "  %s %s\n", faint.Sprint(meta.ShortID()), detail)
}

func printDeleted(w io.Writer, what, ref string) {
	fmt.Fprintln(w, color.YellowString("✗ Deleted %s %s", what, ref))
}

func printIgnored(w io.Writer, what string) {
	fmt.Fprintln(w, color.YellowString("Nothing recorded: %s", what))
}

// parseCount accepts a positive whole number.
func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// limit keeps the first n items; n <= 0 keeps everything.
func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func kg(v *float64) string {
	if v == nil {
		return "–"
	}
	return fmt.Sprintf("%.1f kg", *v)
}

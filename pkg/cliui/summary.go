package cliui

import (
	"fmt"
	"strings"
	"time"
)

// StreamSummary is what the stream command reports once a stream ends.
type StreamSummary struct {
	Endpoint  string
	Records   int
	Chunks    int
	Bytes     int
	Discarded int
	Elapsed   time.Duration
	Err       error
}

// Render formats the summary as a single dimmed status line.
func (s StreamSummary) Render() string {
	parts := []string{
		plural(s.Records, "record"),
		plural(s.Chunks, "chunk"),
		fmt.Sprintf("%d bytes", s.Bytes),
	}
	if s.Discarded > 0 {
		parts = append(parts, fmt.Sprintf("%d bytes discarded", s.Discarded))
	}
	parts = append(parts, FormatDuration(s.Elapsed))

	return fmt.Sprintf("  %s %s %s",
		Mark(s.Err),
		KeyStyle.Render(s.Endpoint),
		DimStyle.Render(strings.Join(parts, " · ")),
	)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Package srt models subtitle cues and reads/writes the SRT document
// format: decimal index line, "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing line,
// one or more text lines, blank separator.
package srt

import (
	"fmt"
	"strconv"
	"strings"
)

// Cue is one timed subtitle entry. Cues are immutable once created.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp converts seconds to the SRT timestamp form HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := int((seconds - float64(whole)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp converts an SRT timestamp to seconds. Period millisecond
// separators (emitted by some recognizer backends) are normalized to the
// comma the format specifies.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// Render serializes cues into a complete SRT document.
func Render(cues []Cue) string {
	var sb strings.Builder
	for _, cue := range cues {
		sb.WriteString(strconv.Itoa(cue.Index))
		sb.WriteByte('\n')
		sb.WriteString(FormatTimestamp(cue.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(cue.End))
		sb.WriteByte('\n')
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Parse reads a complete SRT document back into cues. Readers racing a
// rewrite may observe a torn file; callers treat errors as transient and
// retry.
func Parse(data string) ([]Cue, error) {
	content := strings.ReplaceAll(data, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	blocks := strings.Split(content, "\n\n")
	cues := make([]Cue, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			return nil, fmt.Errorf("truncated cue block %q", block)
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid cue index %q", lines[0])
		}
		timing := strings.SplitN(lines[1], "-->", 2)
		if len(timing) != 2 {
			return nil, fmt.Errorf("invalid timing line %q", lines[1])
		}
		start, err := ParseTimestamp(timing[0])
		if err != nil {
			return nil, err
		}
		end, err := ParseTimestamp(timing[1])
		if err != nil {
			return nil, err
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegVersion reports the first line of ffmpeg -version output.
func FFmpegVersion(binary string) (string, error) {
	out, err := exec.Command(binary, "-version").Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("run %s -version: %w", binary, err)
	}
	lines := strings.SplitN(string(out), "\n", 2)
	return strings.TrimSpace(lines[0]), nil
}

// CheckSubtitleFilter verifies the ffmpeg build carries the subtitles
// burn-in filter. Builds without libass list no such filter and cannot
// render cues onto video.
func CheckSubtitleFilter(binary string) Status {
	result := Status{
		Name:        "FFmpeg subtitles filter",
		Command:     binary,
		Description: "Burns the SRT file into the video stream (requires libass)",
	}

	out, err := exec.Command(binary, "-hide_banner", "-filters").Output() //nolint:gosec
	if err != nil {
		result.Detail = fmt.Sprintf("list filters: %v", err)
		return result
	}
	if !hasFilter(string(out), "subtitles") {
		result.Detail = "ffmpeg was built without the subtitles filter"
		return result
	}
	result.Available = true
	return result
}

func hasFilter(filtersOutput, name string) bool {
	for _, line := range strings.Split(filtersOutput, "\n") {
		fields := strings.Fields(line)
		// Filter listing lines look like: " T.. subtitles  V->V  ...".
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

package media

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ChunkFileName returns the segmenter output name for a chunk index.
func ChunkFileName(index int) string {
	return fmt.Sprintf("chunk_%04d.wav", index)
}

// ChunkPattern returns the printf-style segment pattern for a chunk dir.
func ChunkPattern(dir string) string {
	return filepath.Join(dir, "chunk_%04d.wav")
}

// SegmenterArgs builds the ffmpeg arguments that split the source's audio
// into fixed-duration mono PCM WAV chunks for recognition.
func SegmenterArgs(source string, audioTrack, sampleRate, chunkSeconds int, pattern string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-map", fmt.Sprintf("0:a:%d", audioTrack),
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkSeconds),
		"-segment_format", "wav",
		"-reset_timestamps", "1",
		"-strftime", "0",
		"-y",
		pattern,
	}
}

// SubtitleFilter returns the burn-in video filter referencing the subtitle
// file. Single quotes and colons in the path are escaped for the filter
// graph parser.
func SubtitleFilter(srtPath, style string) string {
	escaped := strings.ReplaceAll(srtPath, "'", `\'`)
	escaped = strings.ReplaceAll(escaped, ":", `\:`)
	filter := fmt.Sprintf("subtitles='%s'", escaped)
	if strings.TrimSpace(style) != "" {
		filter += fmt.Sprintf(":force_style='%s'", style)
	}
	return filter
}

// EncoderArgs builds the ffmpeg arguments for the burn-in encoder reading
// the current subtitle file and writing to the sink.
func EncoderArgs(source, srtPath, style string, sink Sink) []string {
	args := []string{
		"-hide_banner",
		"-i", source,
		"-vf", SubtitleFilter(srtPath, style),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-tune", "zerolatency",
		"-profile:v", "baseline",
		"-level", "3.0",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "44100",
	}
	args = append(args, sink.outputArgs()...)
	return args
}

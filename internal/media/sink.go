package media

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"livecap/internal/config"
)

// Sink describes where the encoder writes its output.
type Sink struct {
	// Kind is one of the config.Sink* constants.
	Kind string
	// Path is the pipe/file/playlist location for filesystem sinks.
	Path string
	// HTTPPort is the listen port for the http_push sink.
	HTTPPort int
}

// Continuous reports whether the sink's output, once started, must not be
// interrupted by encoder restarts. A segmented playlist keeps already
// emitted segments valid only while the producing process lives on; a
// supervisor over a continuous sink commits to never restarting.
func (s Sink) Continuous() bool {
	return s.Kind == config.SinkHLS
}

// OnFilesystem reports whether cleanup should delete the sink path.
func (s Sink) OnFilesystem() bool {
	return s.Kind != config.SinkHTTPPush
}

// NewSink builds the sink for a session from configuration, rooted in the
// session's scratch area.
func NewSink(kind, sessionDir, sessionID string, httpPort int) Sink {
	switch kind {
	case config.SinkHLS:
		return Sink{Kind: kind, Path: filepath.Join(sessionDir, "stream", "index.m3u8")}
	case config.SinkFragMP4:
		return Sink{Kind: kind, Path: filepath.Join(sessionDir, fmt.Sprintf("video_%s.mp4", sessionID))}
	case config.SinkHTTPPush:
		return Sink{Kind: kind, HTTPPort: httpPort}
	default:
		return Sink{Kind: kind, Path: filepath.Join(sessionDir, fmt.Sprintf("video_%s.ts", sessionID))}
	}
}

// Prepare creates whatever filesystem structure the sink needs before the
// encoder starts: the named pipe for ts_pipe, the segment directory for
// hls. A stale pipe from a crashed run is replaced.
func (s Sink) Prepare() error {
	switch s.Kind {
	case config.SinkTSPipe:
		if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale pipe: %w", err)
		}
		if err := unix.Mkfifo(s.Path, 0o600); err != nil {
			return fmt.Errorf("mkfifo %s: %w", s.Path, err)
		}
		return nil
	case config.SinkHLS:
		return os.MkdirAll(filepath.Dir(s.Path), 0o755)
	default:
		return nil
	}
}

// Remove deletes the sink's filesystem footprint. Best effort.
func (s Sink) Remove() error {
	if !s.OnFilesystem() || s.Path == "" {
		return nil
	}
	if s.Kind == config.SinkHLS {
		return os.RemoveAll(filepath.Dir(s.Path))
	}
	err := os.Remove(s.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s Sink) outputArgs() []string {
	switch s.Kind {
	case config.SinkFragMP4:
		return []string{
			"-f", "mp4",
			"-movflags", "frag_keyframe+empty_moov+default_base_moof",
			"-frag_duration", "1000000",
			"-y", s.Path,
		}
	case config.SinkHLS:
		return []string{
			"-f", "hls",
			"-hls_time", "4",
			"-hls_playlist_type", "event",
			"-y", s.Path,
		}
	case config.SinkHTTPPush:
		return []string{
			"-f", "mpegts",
			"-listen", "1",
			fmt.Sprintf("http://0.0.0.0:%d", s.HTTPPort),
		}
	default:
		// ts_file and ts_pipe both write an MPEG-TS stream to a path.
		return []string{"-f", "mpegts", "-y", s.Path}
	}
}

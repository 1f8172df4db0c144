package media_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"livecap/internal/config"
	"livecap/internal/media"
)

func TestChunkNaming(t *testing.T) {
	if got := media.ChunkFileName(0); got != "chunk_0000.wav" {
		t.Fatalf("ChunkFileName(0) = %q", got)
	}
	if got := media.ChunkFileName(42); got != "chunk_0042.wav" {
		t.Fatalf("ChunkFileName(42) = %q", got)
	}
	pattern := media.ChunkPattern("/tmp/scratch")
	if pattern != "/tmp/scratch/chunk_%04d.wav" {
		t.Fatalf("ChunkPattern = %q", pattern)
	}
}

func TestSegmenterArgs(t *testing.T) {
	args := media.SegmenterArgs("http://example/stream.m3u8", 0, 16000, 10, "/scratch/chunk_%04d.wav")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-i http://example/stream.m3u8",
		"-acodec pcm_s16le",
		"-ar 16000",
		"-ac 1",
		"-f segment",
		"-segment_time 10",
		"-segment_format wav",
		"-reset_timestamps 1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("segmenter args missing %q in %q", want, joined)
		}
	}
	if args[len(args)-1] != "/scratch/chunk_%04d.wav" {
		t.Errorf("pattern must be the final argument, got %q", args[len(args)-1])
	}
}

func TestSubtitleFilterEscapesPath(t *testing.T) {
	filter := media.SubtitleFilter("/tmp/it's:here.srt", "FontSize=24")
	if !strings.Contains(filter, `subtitles='/tmp/it\'s\:here.srt'`) {
		t.Fatalf("unexpected filter escaping: %q", filter)
	}
	if !strings.Contains(filter, ":force_style='FontSize=24'") {
		t.Fatalf("missing force_style: %q", filter)
	}
}

func TestSubtitleFilterOmitsEmptyStyle(t *testing.T) {
	filter := media.SubtitleFilter("/tmp/subs.srt", "  ")
	if strings.Contains(filter, "force_style") {
		t.Fatalf("expected no force_style for blank style: %q", filter)
	}
}

func TestEncoderArgsSinkVariants(t *testing.T) {
	srt := "/scratch/subs.srt"

	ts := media.EncoderArgs("in.mkv", srt, "", media.Sink{Kind: config.SinkTSPipe, Path: "/scratch/out.ts"})
	if !slices.Contains(ts, "mpegts") || ts[len(ts)-1] != "/scratch/out.ts" {
		t.Fatalf("unexpected ts args: %v", ts)
	}

	mp4 := media.EncoderArgs("in.mkv", srt, "", media.Sink{Kind: config.SinkFragMP4, Path: "/scratch/out.mp4"})
	joined := strings.Join(mp4, " ")
	if !strings.Contains(joined, "frag_keyframe+empty_moov+default_base_moof") {
		t.Fatalf("frag_mp4 args missing movflags: %q", joined)
	}

	hls := media.EncoderArgs("in.mkv", srt, "", media.Sink{Kind: config.SinkHLS, Path: "/scratch/stream/index.m3u8"})
	if !slices.Contains(hls, "hls") {
		t.Fatalf("unexpected hls args: %v", hls)
	}

	push := media.EncoderArgs("in.mkv", srt, "", media.Sink{Kind: config.SinkHTTPPush, HTTPPort: 8090})
	if push[len(push)-1] != "http://0.0.0.0:8090" {
		t.Fatalf("unexpected http_push args: %v", push)
	}
}

func TestEncoderArgsAlwaysBurnIn(t *testing.T) {
	args := media.EncoderArgs("in.mkv", "/scratch/subs.srt", "Bold=1", media.Sink{Kind: config.SinkTSFile, Path: "/o.ts"})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-vf subtitles=") {
		t.Fatalf("missing subtitles filter: %q", joined)
	}
	if !strings.Contains(joined, "libx264") || !strings.Contains(joined, "zerolatency") {
		t.Fatalf("missing encoder settings: %q", joined)
	}
}

func TestSinkContinuity(t *testing.T) {
	if (media.Sink{Kind: config.SinkHLS}).Continuous() != true {
		t.Fatal("hls sink must be continuous")
	}
	for _, kind := range []string{config.SinkTSFile, config.SinkTSPipe, config.SinkFragMP4, config.SinkHTTPPush} {
		if (media.Sink{Kind: kind}).Continuous() {
			t.Fatalf("sink %s must not be continuous", kind)
		}
	}
}

func TestSinkPrepareAndRemoveHLS(t *testing.T) {
	dir := t.TempDir()
	sink := media.NewSink(config.SinkHLS, dir, "s1", 0)
	if err := sink.Prepare(); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(sink.Path)); err != nil {
		t.Fatalf("expected stream dir: %v", err)
	}
	if err := sink.Remove(); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(sink.Path)); !os.IsNotExist(err) {
		t.Fatal("expected stream dir to be removed")
	}
}

func TestSinkPreparePipe(t *testing.T) {
	dir := t.TempDir()
	sink := media.NewSink(config.SinkTSPipe, dir, "s1", 0)
	if err := sink.Prepare(); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	info, err := os.Stat(sink.Path)
	if err != nil {
		t.Fatalf("stat pipe: %v", err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Fatalf("expected a named pipe, mode %v", info.Mode())
	}
	// Prepare twice must replace, not fail.
	if err := sink.Prepare(); err != nil {
		t.Fatalf("second Prepare returned error: %v", err)
	}
	if err := sink.Remove(); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
}

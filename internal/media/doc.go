// Package media builds the ffmpeg invocations the session runs: the audio
// segmenter that feeds the recognizer and the burn-in encoder that writes
// the configured output sink. It also owns sink setup (named pipes, HLS
// directories) and the chunk file naming convention shared with the
// watcher.
package media

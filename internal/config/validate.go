package config

import (
	"fmt"
)

var knownSinks = map[string]struct{}{
	SinkTSFile:   {},
	SinkTSPipe:   {},
	SinkFragMP4:  {},
	SinkHLS:      {},
	SinkHTTPPush: {},
}

// KnownSink reports whether kind names a supported sink.
func KnownSink(kind string) bool {
	_, ok := knownSinks[kind]
	return ok
}

var knownEngines = map[string]struct{}{
	"whispercpp": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if _, ok := knownEngines[c.Transcriber.Engine]; !ok {
		return fmt.Errorf("transcriber.engine: unsupported engine %q", c.Transcriber.Engine)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if _, ok := knownSinks[c.Media.Sink]; !ok {
		return fmt.Errorf("media.sink: unsupported sink %q (known: ts_file, ts_pipe, frag_mp4, hls, http_push)", c.Media.Sink)
	}
	if c.Media.ChunkSeconds > 300 {
		return fmt.Errorf("media.chunk_seconds: %d exceeds the 300 second maximum", c.Media.ChunkSeconds)
	}
	if c.Media.HTTPPushPort > 65535 {
		return fmt.Errorf("media.http_push_port: %d is not a valid port", c.Media.HTTPPushPort)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}

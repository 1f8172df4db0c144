package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscriber(); err != nil {
		return err
	}
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTranscriber() error {
	c.Transcriber.Engine = strings.ToLower(strings.TrimSpace(c.Transcriber.Engine))
	if c.Transcriber.Engine == "" {
		c.Transcriber.Engine = defaultTranscriberEngine
	}
	if strings.TrimSpace(c.Transcriber.Binary) == "" {
		c.Transcriber.Binary = defaultTranscriberBinary
	}
	c.Transcriber.Model = strings.TrimSpace(c.Transcriber.Model)
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = defaultTranscriberModel
	}
	c.Transcriber.Language = strings.ToLower(strings.TrimSpace(c.Transcriber.Language))
	if c.Transcriber.Language == "" {
		c.Transcriber.Language = defaultLanguage
	}
	if strings.TrimSpace(c.Transcriber.ModelDir) != "" {
		expanded, err := expandPath(c.Transcriber.ModelDir)
		if err != nil {
			return fmt.Errorf("transcriber.model_dir: %w", err)
		}
		c.Transcriber.ModelDir = expanded
	}
	return nil
}

func (c *Config) normalizeMedia() {
	if strings.TrimSpace(c.Media.FFmpegBinary) == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Media.ChunkSeconds <= 0 {
		c.Media.ChunkSeconds = defaultChunkSeconds
	}
	if c.Media.SampleRate <= 0 {
		c.Media.SampleRate = defaultSampleRate
	}
	c.Media.Sink = strings.ToLower(strings.TrimSpace(c.Media.Sink))
	if c.Media.Sink == "" {
		c.Media.Sink = defaultSink
	}
	if strings.TrimSpace(c.Media.SubtitleStyle) == "" {
		c.Media.SubtitleStyle = defaultSubtitleStyle
	}
	if c.Media.HTTPPushPort <= 0 {
		c.Media.HTTPPushPort = defaultHTTPPushPort
	}
	if c.Media.RestartEveryCues < 0 {
		c.Media.RestartEveryCues = 0
	}
	if c.Media.TerminateGraceSeconds <= 0 {
		c.Media.TerminateGraceSeconds = defaultTerminateGraceSeconds
	}
	if c.Media.VerifyStartupSeconds <= 0 {
		c.Media.VerifyStartupSeconds = defaultVerifyStartupSeconds
	}
	if c.Media.SettleDelayMillis <= 0 {
		c.Media.SettleDelayMillis = defaultSettleDelayMillis
	}
	if c.Media.PollIntervalMillis <= 0 {
		c.Media.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Media.LookaheadChunks <= 0 {
		c.Media.LookaheadChunks = defaultLookaheadChunks
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

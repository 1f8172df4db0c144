package config

// Sink kinds accepted by media.sink.
const (
	SinkTSFile   = "ts_file"
	SinkTSPipe   = "ts_pipe"
	SinkFragMP4  = "frag_mp4"
	SinkHLS      = "hls"
	SinkHTTPPush = "http_push"
)

// EngineWhisperCPP is the whisper.cpp CLI recognizer.
const EngineWhisperCPP = "whispercpp"

const (
	defaultScratchDir = "~/.local/share/livecap/scratch"
	defaultLogDir     = "~/.local/share/livecap/logs"
	defaultAPIBind    = "127.0.0.1:7823"

	defaultTranscriberEngine = EngineWhisperCPP
	defaultTranscriberBinary = "whisper-cli"
	defaultTranscriberModel  = "base"
	defaultLanguage          = "auto"

	defaultFFmpegBinary = "ffmpeg"
	defaultChunkSeconds = 10
	defaultSampleRate   = 16000
	defaultSink         = SinkTSPipe
	defaultHTTPPushPort = 8090

	// Burn-in style applied through the subtitles filter force_style option.
	defaultSubtitleStyle = "FontSize=24,PrimaryColour=&Hffffff,OutlineColour=&H000000,Outline=2,Bold=1"

	defaultRestartEveryCues      = 3
	defaultTerminateGraceSeconds = 2
	defaultVerifyStartupSeconds  = 3
	defaultSettleDelayMillis     = 500
	defaultPollIntervalMillis    = 500
	defaultLookaheadChunks       = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Transcriber: Transcriber{
			Engine:   defaultTranscriberEngine,
			Binary:   defaultTranscriberBinary,
			Model:    defaultTranscriberModel,
			Language: defaultLanguage,
		},
		Media: Media{
			FFmpegBinary:          defaultFFmpegBinary,
			ChunkSeconds:          defaultChunkSeconds,
			SampleRate:            defaultSampleRate,
			Sink:                  defaultSink,
			SubtitleStyle:         defaultSubtitleStyle,
			HTTPPushPort:          defaultHTTPPushPort,
			RestartEveryCues:      defaultRestartEveryCues,
			TerminateGraceSeconds: defaultTerminateGraceSeconds,
			VerifyStartupSeconds:  defaultVerifyStartupSeconds,
			SettleDelayMillis:     defaultSettleDelayMillis,
			PollIntervalMillis:    defaultPollIntervalMillis,
			LookaheadChunks:       defaultLookaheadChunks,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

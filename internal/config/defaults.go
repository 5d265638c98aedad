package config

const (
	defaultOutputDir          = "~/gifsmith"
	defaultTempDir            = "~/.cache/gifsmith/work"
	defaultLogDir             = "~/.local/share/gifsmith/logs"
	defaultHistoryDB          = "~/.local/share/gifsmith/history.db"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultPreset             = "balanced"
	defaultDitherMode         = "bayer"
	defaultBayerScale         = 3
	defaultChromaColor        = "#00FF00"
	defaultChromaSimilarity   = 0.28
	defaultChromaBlend        = 0.08
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNtfyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			TempDir:   defaultTempDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Preset:        defaultPreset,
			DitherMode:    defaultDitherMode,
			BayerScale:    defaultBayerScale,
		},
		ChromaKey: ChromaKey{
			Enabled:    false,
			Color:      defaultChromaColor,
			Similarity: defaultChromaSimilarity,
			Blend:      defaultChromaBlend,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

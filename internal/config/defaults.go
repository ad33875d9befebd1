package config

const (
	defaultOutputDir           = "~/mcmovie"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultProbeTimeoutSeconds = 30
	defaultScaleFlags          = "bicubic"
	defaultFrameWidth          = 854
	defaultFrameHeight         = 480
	defaultFrameRate           = 10
	defaultCaptureCapSeconds   = 1
	defaultHoldSeconds         = 3600
	defaultPNGCompression      = "default"
	defaultPackDescription     = "Plays a video on a custom server form"
	defaultDependencyUUID      = "440ac16a-a636-41da-89a4-64edbb06f4f1"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir(),
		},
		Video: Video{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			ScaleFlags:          defaultScaleFlags,
		},
		Animation: Animation{
			FrameWidth:        defaultFrameWidth,
			FrameHeight:       defaultFrameHeight,
			FrameRate:         defaultFrameRate,
			CaptureCapSeconds: defaultCaptureCapSeconds,
			HoldSeconds:       defaultHoldSeconds,
			PNGCompression:    defaultPNGCompression,
		},
		Pack: Pack{
			Description:       defaultPackDescription,
			MinEngineVersion:  []int{1, 19, 60},
			DependencyUUID:    defaultDependencyUUID,
			DependencyVersion: []int{0, 0, 1},
			ReuseIdentity:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

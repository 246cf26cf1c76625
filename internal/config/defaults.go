package config

const (
	defaultOutputDir      = "./corpus"
	defaultLogDir         = "~/.local/share/posecorpus/logs"
	defaultOutputPrefix   = "corpus"
	defaultPoseType       = "openpose"
	defaultNormalizeScope = "sequence"
	defaultIDPosition     = 1
	defaultUnicodeForm    = "none"
	defaultFFprobeBinary  = "ffprobe"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Pose: Pose{
			Type:           defaultPoseType,
			NormalizeScope: defaultNormalizeScope,
		},
		FrameRate: FrameRate{
			FFprobeBinary: defaultFFprobeBinary,
		},
		Output: Output{
			Prefix: defaultOutputPrefix,
		},
		Layout: Layout{
			IDPosition: defaultIDPosition,
		},
		Text: Text{
			UnicodeForm: defaultUnicodeForm,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

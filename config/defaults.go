package config

const (
	defaultAutoContinue = true
	defaultAdvance      = 1
	defaultGoKey        = "space"
	defaultListenHost   = "127.0.0.1"
	defaultListenPort   = 53100
	defaultFeedbackPort = 53101
	defaultLogLevel     = "info"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Layout: Layout{
			AutoContinue:     defaultAutoContinue,
			Advance:          defaultAdvance,
			GoKey:            defaultGoKey,
			ShowPlayingCues:  true,
			ShowDBMeters:     false,
			ShowSeekSliders:  false,
			ShowAccurateTime: false,
			SelectionMode:    false,
		},
		OSC: OSC{
			Enabled:      false,
			ListenHost:   defaultListenHost,
			ListenPort:   defaultListenPort,
			FeedbackPort: defaultFeedbackPort,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}

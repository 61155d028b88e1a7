package config

const (
	defaultDataDir          = "~/.local/share/hopper"
	defaultLogDir           = "~/.local/share/hopper/logs"
	defaultLogRetentionDays = 60
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultNtfyBaseURL      = "https://ntfy.sh"
	defaultNotifyTimeout    = 10
)

func defaultFileTypes() []string {
	return []string{
		".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpeg", ".mpg", ".3gp", ".ts",
	}
}

func defaultIgnoreFolders() []string {
	return []string{"node_modules", ".git", "__pycache__", ".idea", "vendor", "target"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Watch: Watch{
			FileTypes:       defaultFileTypes(),
			WatchSubdirs:    true,
			IgnoreFolders:   defaultIgnoreFolders(),
			IgnoreTempFiles: true,
		},
		Notifications: Notifications{
			NtfyBaseURL:      defaultNtfyBaseURL,
			RequestTimeout:   defaultNotifyTimeout,
			NotifyOnStart:    true,
			NotifyOnComplete: true,
			Sound:            true,
		},
		History: History{
			Enabled: true,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

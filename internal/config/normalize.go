package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeWatch() error {
	c.Watch.Folder = strings.TrimSpace(c.Watch.Folder)
	if c.Watch.Folder == "" {
		if value, ok := os.LookupEnv("HOPPER_WATCH_FOLDER"); ok {
			c.Watch.Folder = strings.TrimSpace(value)
		}
	}
	if c.Watch.Folder != "" {
		expanded, err := expandPath(c.Watch.Folder)
		if err != nil {
			return fmt.Errorf("watch.folder: %w", err)
		}
		c.Watch.Folder = expanded
	}

	// Extensions are stored lowercased with a leading dot so event matching
	// stays a straight set lookup.
	types := make([]string, 0, len(c.Watch.FileTypes))
	seen := make(map[string]struct{}, len(c.Watch.FileTypes))
	for _, ext := range c.Watch.FileTypes {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		types = append(types, normalized)
	}
	c.Watch.FileTypes = types

	folders := make([]string, 0, len(c.Watch.IgnoreFolders))
	seenFolders := make(map[string]struct{}, len(c.Watch.IgnoreFolders))
	for _, folder := range c.Watch.IgnoreFolders {
		trimmed := strings.TrimSpace(folder)
		if trimmed == "" {
			continue
		}
		if _, exists := seenFolders[trimmed]; exists {
			continue
		}
		seenFolders[trimmed] = struct{}{}
		folders = append(folders, trimmed)
	}
	c.Watch.IgnoreFolders = folders
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.DataDir, "history.db")
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.Socket) == "" {
		c.Paths.Socket = filepath.Join(c.Paths.DataDir, "hopperd.sock")
	}
	if c.Paths.Socket, err = expandPath(c.Paths.Socket); err != nil {
		return fmt.Errorf("paths.socket: %w", err)
	}
	if strings.TrimSpace(c.Paths.PIDFile) == "" {
		c.Paths.PIDFile = filepath.Join(c.Paths.DataDir, "hopperd.pid")
	}
	if c.Paths.PIDFile, err = expandPath(c.Paths.PIDFile); err != nil {
		return fmt.Errorf("paths.pid_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("HOPPER_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	c.Notifications.NtfyBaseURL = strings.TrimRight(strings.TrimSpace(c.Notifications.NtfyBaseURL), "/")
	if c.Notifications.NtfyBaseURL == "" {
		c.Notifications.NtfyBaseURL = defaultNtfyBaseURL
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

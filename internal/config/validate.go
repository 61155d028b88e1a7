package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. An unset watch folder is
// accepted here; session start is where a missing folder becomes an error.
func (c *Config) Validate() error {
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWatch() error {
	for _, folder := range c.Watch.IgnoreFolders {
		if strings.ContainsAny(folder, `/\`) {
			return fmt.Errorf("watch.ignore_folders entry %q must be a bare folder name, not a path", folder)
		}
	}
	for _, ext := range c.Watch.FileTypes {
		if strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("watch.file_types entry %q must be an extension, not a path", ext)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.NtfyTopic != "" && strings.TrimSpace(c.Notifications.NtfyBaseURL) == "" {
		return errors.New("notifications.ntfy_base_url must be set when notifications.ntfy_topic is set")
	}
	return nil
}

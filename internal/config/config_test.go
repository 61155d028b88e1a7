package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"hopper/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("HOPPER_WATCH_FOLDER", "")
	t.Setenv("HOPPER_NTFY_TOPIC", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "hopper")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.HistoryDB != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.Paths.Socket != filepath.Join(wantData, "hopperd.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Paths.Socket)
	}
	if cfg.Paths.PIDFile != filepath.Join(wantData, "hopperd.pid") {
		t.Fatalf("unexpected pid file: %q", cfg.Paths.PIDFile)
	}
	if cfg.Watch.Folder != "" {
		t.Fatalf("expected empty watch folder by default, got %q", cfg.Watch.Folder)
	}
	if !cfg.Watch.WatchSubdirs || !cfg.Watch.IgnoreTempFiles {
		t.Fatal("expected subdir watching and temp-file filtering on by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Notifications.NtfyBaseURL != "https://ntfy.sh" {
		t.Fatalf("unexpected ntfy base url: %q", cfg.Notifications.NtfyBaseURL)
	}
}

func TestLoadCustomPathNormalizesWatchRules(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hopper.toml")
	watchDir := filepath.Join(tempDir, "uploads")

	type payload struct {
		Watch struct {
			Folder        string   `toml:"folder"`
			FileTypes     []string `toml:"file_types"`
			IgnoreFolders []string `toml:"ignore_folders"`
		} `toml:"watch"`
		Notifications struct {
			NtfyTopic   string `toml:"ntfy_topic"`
			NtfyBaseURL string `toml:"ntfy_base_url"`
		} `toml:"notifications"`
		History struct {
			Enabled bool `toml:"enabled"`
		} `toml:"history"`
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Watch.Folder = watchDir
	custom.Watch.FileTypes = []string{"MP4", " mov", ".mkv", "mov", ""}
	custom.Watch.IgnoreFolders = []string{" node_modules ", "node_modules", "tmp"}
	custom.Notifications.NtfyTopic = "hopper-uploads"
	custom.Notifications.NtfyBaseURL = "https://push.example.com/"
	custom.History.Enabled = false
	custom.Paths.DataDir = filepath.Join(tempDir, "data")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Watch.Folder != watchDir {
		t.Fatalf("unexpected watch folder: %q", cfg.Watch.Folder)
	}

	wantTypes := []string{".mp4", ".mov", ".mkv"}
	if len(cfg.Watch.FileTypes) != len(wantTypes) {
		t.Fatalf("unexpected file types: %v", cfg.Watch.FileTypes)
	}
	for i, want := range wantTypes {
		if cfg.Watch.FileTypes[i] != want {
			t.Fatalf("file type %d = %q, want %q", i, cfg.Watch.FileTypes[i], want)
		}
	}

	wantFolders := []string{"node_modules", "tmp"}
	if len(cfg.Watch.IgnoreFolders) != len(wantFolders) {
		t.Fatalf("unexpected ignore folders: %v", cfg.Watch.IgnoreFolders)
	}

	if cfg.Notifications.NtfyTopic != "hopper-uploads" {
		t.Fatalf("unexpected topic: %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Notifications.NtfyBaseURL != "https://push.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Notifications.NtfyBaseURL)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled")
	}
	if cfg.Paths.HistoryDB != filepath.Join(tempDir, "data", "history.db") {
		t.Fatalf("expected history db under custom data dir, got %q", cfg.Paths.HistoryDB)
	}
}

func TestEnvFallbackFillsUnsetValues(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hopper.toml")
	if err := os.WriteFile(configPath, []byte("[watch]\nfolder = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	watchDir := filepath.Join(tempDir, "drops")
	t.Setenv("HOPPER_WATCH_FOLDER", watchDir)
	t.Setenv("HOPPER_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Watch.Folder != watchDir {
		t.Fatalf("expected watch folder from env, got %q", cfg.Watch.Folder)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestConfigFileWinsOverEnvFallback(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hopper.toml")
	fileDir := filepath.Join(tempDir, "from-file")
	contents := "[watch]\nfolder = \"" + fileDir + "\"\n\n[notifications]\nntfy_topic = \"file-topic\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("HOPPER_WATCH_FOLDER", filepath.Join(tempDir, "from-env"))
	t.Setenv("HOPPER_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Watch.Folder != fileDir {
		t.Fatalf("expected watch folder from file, got %q", cfg.Watch.Folder)
	}
	if cfg.Notifications.NtfyTopic != "file-topic" {
		t.Fatalf("expected topic from file, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[watch]") {
		t.Fatalf("sample config missing watch section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "hopper") {
		t.Fatalf("expected data dir to contain hopper, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.IgnoreFolders = []string{"sub/dir"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for path-like ignore folder")
	}

	cfg = config.Default()
	cfg.Watch.FileTypes = []string{".mp4", "video/.mov"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for path-like file type")
	}

	cfg = config.Default()
	cfg.Notifications.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive request timeout")
	}

	cfg = config.Default()
	cfg.Notifications.NtfyTopic = "uploads"
	cfg.Notifications.NtfyBaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for topic without base url")
	}

	cfg = config.Default()
	cfg.Paths.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Profile", cfg.Profile, "cryptonote"},
		{"ChildProfile", cfg.ChildProfile, ""},
		{"AddressPrefix", cfg.AddressPrefix, uint64(18)},
		{"IntegratedPrefix", cfg.IntegratedPrefix, uint64(19)},
		{"TemplateTTL", cfg.TemplateTTL, 10 * time.Minute},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	original := Config{
		DataDir:          "/tmp/test-cnutil",
		Profile:          "loki",
		ChildProfile:     "forknote2",
		AddressPrefix:    114,
		IntegratedPrefix: 115,
		TemplateTTL:      90 * time.Second,
		LogLevel:         "debug",
		LogFile:          "/tmp/cnutil.log",
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != original {
		t.Errorf("LoadConfig = %+v, want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

func TestSaveConfig_OutputContainsHeaderAndKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# cnutil configuration\n") {
		t.Error("saved config should start with the header comment")
	}
	keys := []string{"datadir", "profile", "childprofile", "addressprefix", "integratedprefix", "templatettl", "loglevel", "logfile"}
	for _, key := range keys {
		if !strings.Contains(content, "\n"+key+"=") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// LoadConfig tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "this-is-not-key-value\n"))
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad line: got %v, want ErrInvalidConfigLine", err)
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	content := `# This is a comment
profile = xhv

# Another comment
loglevel = debug
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Profile != "xhv" {
		t.Errorf("Profile = %q, want %q", cfg.Profile, "xhv")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields keep their defaults.
	if cfg.AddressPrefix != 18 {
		t.Errorf("AddressPrefix = %d, want default 18", cfg.AddressPrefix)
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "futurekey = futurevalue\nprofile = aeon\n"))
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Profile != "aeon" {
		t.Errorf("Profile = %q, want %q", cfg.Profile, "aeon")
	}
}

func TestLoadConfigKeysCaseInsensitive(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "PROFILE=tube\nTemplateTTL=30s\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Profile != "tube" {
		t.Errorf("Profile = %q, want %q", cfg.Profile, "tube")
	}
	if cfg.TemplateTTL != 30*time.Second {
		t.Errorf("TemplateTTL = %v, want 30s", cfg.TemplateTTL)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	for _, content := range []string{
		"addressprefix = eighteen\n",
		"integratedprefix = -1\n",
		"templatettl = 10 minutes\n",
	} {
		t.Run(strings.TrimSpace(content), func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			if !errors.Is(err, ErrInvalidConfigValue) {
				t.Errorf("got %v, want ErrInvalidConfigValue", err)
			}
		})
	}
}

func TestLoadConfig_EmptyValue(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "childprofile=\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ChildProfile != "" {
		t.Errorf("ChildProfile = %q, want empty string", cfg.ChildProfile)
	}
}

func TestLoadConfig_MultipleEquals(t *testing.T) {
	// The value contains an extra '='; only the first one separates.
	cfg, err := LoadConfig(writeConfig(t, "logfile=/tmp/a=b.log\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "/tmp/a=b.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/a=b.log")
	}
}

func TestLoadConfig_WhitespaceAroundEquals(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "  profile = ryo  \n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Profile != "ryo" {
		t.Errorf("Profile = %q, want %q", cfg.Profile, "ryo")
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	path := writeConfig(t, "profile=loki\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "unknown_profile",
			modify:  func(c *Config) { c.Profile = "bitcoin" },
			wantErr: fork.ErrUnknownProfile,
		},
		{
			name:    "empty_profile",
			modify:  func(c *Config) { c.Profile = "" },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "unknown_child_profile",
			modify:  func(c *Config) { c.ChildProfile = "forknote9" },
			wantErr: ErrInvalidChildProfile,
		},
		{
			name:    "unmerged_child_profile",
			modify:  func(c *Config) { c.ChildProfile = "cryptonote" },
			wantErr: ErrInvalidChildProfile,
		},
		{
			name:    "same_prefixes",
			modify:  func(c *Config) { c.IntegratedPrefix = c.AddressPrefix },
			wantErr: ErrInvalidPrefix,
		},
		{
			name:    "negative_ttl",
			modify:  func(c *Config) { c.TemplateTTL = -time.Second },
			wantErr: ErrInvalidTemplateTTL,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigProfiles(t *testing.T) {
	for _, p := range fork.All() {
		cfg := DefaultConfig()
		cfg.Profile = strings.ToUpper(p.Name)
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with profile %q: %v", p.Name, err)
		}
	}

	cfg := DefaultConfig()
	cfg.ChildProfile = "forknote2"
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig with merged child: %v", err)
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	levels := []string{"INFO", "Debug", "WARN", "Error", "dEbUg"}
	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Path tests
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.cnutil")
	want := filepath.Join("/home/user/.cnutil", "config")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestConfigPath_WithTrailingSlash(t *testing.T) {
	got := ConfigPath("/foo/")
	want := filepath.Join("/foo", "config")
	if got != want {
		t.Errorf("ConfigPath(%q) = %q, want %q", "/foo/", got, want)
	}
}

func TestTemplateDBPath(t *testing.T) {
	got := TemplateDBPath("/data")
	if got != filepath.Join("/data", "templates.db") {
		t.Errorf("TemplateDBPath = %q", got)
	}
}

func TestDefaultDataDir_EndsWith_DotCnutil(t *testing.T) {
	if dir := DefaultDataDir(); !strings.HasSuffix(dir, ".cnutil") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".cnutil")
	}
}

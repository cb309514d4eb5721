// Package config loads the environment-variable settings used by the
// example upload consumers in cmd/uploader: console logging cadence plus
// GMC.MAP, Radmon, and uRadMonitor account credentials and push intervals.
// Core client behavior (pkg/radalert, internal/session) never depends on
// this package.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// UploaderConfig holds every setting the example uploaders read.
type UploaderConfig struct {
	ConsoleInterval time.Duration

	GmcmapAcctID   string
	GmcmapGCID     string
	GmcmapInterval time.Duration

	RadmonUserID   string
	RadmonDataPW   string
	RadmonInterval time.Duration

	URadMonUserID   string
	URadMonUserHash string
	URadMonDeviceID string
	URadMonInterval time.Duration
}

var (
	uploaderConfig *UploaderConfig
	configLoaded   bool
)

// LoadUploaderConfig reads .env (if present) from the project root, then
// lets real environment variables override it, and memoizes the result.
func LoadUploaderConfig() (*UploaderConfig, error) {
	if uploaderConfig != nil && configLoaded {
		return uploaderConfig, nil
	}

	cfg := &UploaderConfig{}

	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")

	raw := map[string]string{}
	if data, err := os.ReadFile(envPath); err == nil {
		parseEnvFile(string(data), raw)
	}
	for _, key := range []string{
		"CONSOLE_INTERVAL",
		"GMCMAP_ACCT_ID", "GMCMAP_GC_ID", "GMCMAP_INTERVAL",
		"RADMON_USER_ID", "RADMON_DATA_PW", "RADMON_INTERVAL",
		"URADMON_USER_ID", "URADMON_USER_HASH", "URADMON_DEVICE_ID", "URADMON_INTERVAL",
	} {
		if v := os.Getenv(key); v != "" {
			raw[key] = v
		}
	}

	cfg.ConsoleInterval = parseDurationSeconds(raw["CONSOLE_INTERVAL"], 10*time.Second)
	cfg.GmcmapAcctID = raw["GMCMAP_ACCT_ID"]
	cfg.GmcmapGCID = raw["GMCMAP_GC_ID"]
	cfg.GmcmapInterval = parseDurationSeconds(raw["GMCMAP_INTERVAL"], 5*time.Minute)
	cfg.RadmonUserID = raw["RADMON_USER_ID"]
	cfg.RadmonDataPW = raw["RADMON_DATA_PW"]
	cfg.RadmonInterval = parseDurationSeconds(raw["RADMON_INTERVAL"], 5*time.Minute)
	cfg.URadMonUserID = raw["URADMON_USER_ID"]
	cfg.URadMonUserHash = raw["URADMON_USER_HASH"]
	cfg.URadMonDeviceID = raw["URADMON_DEVICE_ID"]
	cfg.URadMonInterval = parseDurationSeconds(raw["URADMON_INTERVAL"], 5*time.Minute)

	uploaderConfig = cfg
	configLoaded = true
	return cfg, nil
}

func parseDurationSeconds(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func parseEnvFile(content string, into map[string]string) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		into[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}

// GmcmapEnabled reports whether enough GMC.MAP credentials are present to
// attempt pushes.
func (c *UploaderConfig) GmcmapEnabled() bool {
	return c.GmcmapAcctID != "" && c.GmcmapGCID != ""
}

// RadmonEnabled reports whether enough Radmon credentials are present to
// attempt pushes.
func (c *UploaderConfig) RadmonEnabled() bool {
	return c.RadmonUserID != "" && c.RadmonDataPW != ""
}

// URadMonitorEnabled reports whether enough uRadMonitor credentials are
// present to attempt pushes.
func (c *UploaderConfig) URadMonitorEnabled() bool {
	return c.URadMonUserID != "" && c.URadMonUserHash != "" && c.URadMonDeviceID != ""
}

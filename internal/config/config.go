/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the per-user YAML configuration, merges PD_* environment
// overrides and keeps the preview signing secret in the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type RenderConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	FPS         int    `yaml:"fps"`
	Frames      int    `yaml:"frames"`
	Format      string `yaml:"format"` // comma separated: png,svg,pdf,zip
	OutDir      string `yaml:"out_dir"`
	TextDir     string `yaml:"text_dir"` // directory of pre-rendered TeX images
	HiddenLines bool   `yaml:"hidden_lines"`
}

// Formats splits Format into its non-empty, lower-cased parts.
func (r RenderConfig) Formats() []string {
	var out []string
	for _, f := range strings.Split(r.Format, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

type PreviewConfig struct {
	Addr string `yaml:"addr"`
	Auth bool   `yaml:"auth"` // require a bearer token signed with the keyring secret
	// Secret is not stored on disk; it lives in the OS keychain.
}

type TracesConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "postgres" | "" (disabled)
	DSN    string `yaml:"dsn"`
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Render        RenderConfig  `yaml:"render"`
	Preview       PreviewConfig `yaml:"preview"`
	Traces        TracesConfig  `yaml:"traces"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Render: RenderConfig{
			Width: 600, Height: 400, FPS: 30, Frames: 1,
			Format: "png", OutDir: "out", TextDir: "text",
		},
		Preview: PreviewConfig{Addr: "127.0.0.1:8787"},
		Traces:  TracesConfig{},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvRenderWidth    = "PD_RENDER_WIDTH"
	EnvRenderHeight   = "PD_RENDER_HEIGHT"
	EnvRenderFPS      = "PD_RENDER_FPS"
	EnvRenderFormat   = "PD_RENDER_FORMAT"
	EnvRenderOutDir   = "PD_RENDER_OUT_DIR"
	EnvTextDir        = "PD_TEXT_DIR"
	EnvHiddenLines    = "PD_HIDDEN_LINES"
	EnvPreviewAddr    = "PD_PREVIEW_ADDR"
	EnvPreviewAuth    = "PD_PREVIEW_AUTH"
	EnvTracesDriver   = "PD_TRACES_DRIVER"
	EnvTracesDSN      = "PD_TRACES_DSN"
	EnvTelemetryOptIn = "PD_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PD_LOG_LEVEL"
	EnvLogFormat = "PD_LOG_FORMAT"
	EnvLogSource = "PD_LOG_SOURCE"
	EnvLogFile   = "PD_LOG_FILE"
	// EnvLogMaxSizeMB and EnvLogMaxBackups tune log file rotation.
	EnvLogMaxSizeMB  = "PD_LOG_MAX_SIZE_MB"
	EnvLogMaxBackups = "PD_LOG_MAX_BACKUPS"
)

// Service/keys for OS keyring.
const (
	keyringService = "PrairieDraw"
	keyringSecret  = "preview_secret"
)

// secretStore abstracts keyring, so we can stub in tests.
var secretStore SecretStore = osKeyring{}

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// MemStore is an in-process SecretStore for tests and headless hosts without a keychain.
type MemStore struct{ m map[string]string }

func (s *MemStore) Get(service, key string) (string, error) {
	v, ok := s.m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (s *MemStore) Set(service, key, value string) error {
	if s.m == nil {
		s.m = map[string]string{}
	}
	s.m[service+"/"+key] = value
	return nil
}

func (s *MemStore) Delete(service, key string) error {
	if _, ok := s.m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(s.m, service+"/"+key)
	return nil
}

// UseSecretStore swaps the keyring backend and returns the previous one.
func UseSecretStore(s SecretStore) SecretStore {
	old := secretStore
	secretStore = s
	return old
}

// ConfigPath returns the per-user config file path. PD_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("PD_CONFIG")); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PrairieDraw")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PrairieDraw")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "prairiedraw")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// The preview secret comes from the keyring and is returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	secret, _ := secretStore.Get(keyringService, keyringSecret)
	return cfg, secret, nil
}

// Save writes the user config YAML and persists the secret into OS keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if secret != "" {
		if err := secretStore.Set(keyringService, keyringSecret, secret); err != nil {
			return fmt.Errorf("store preview secret: %w", err)
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	// render
	r := src.Render
	if r.Width > 0 {
		dst.Render.Width = r.Width
	}
	if r.Height > 0 {
		dst.Render.Height = r.Height
	}
	if r.FPS > 0 {
		dst.Render.FPS = r.FPS
	}
	if r.Frames > 0 {
		dst.Render.Frames = r.Frames
	}
	if strings.TrimSpace(r.Format) != "" {
		dst.Render.Format = strings.ToLower(strings.TrimSpace(r.Format))
	}
	if strings.TrimSpace(r.OutDir) != "" {
		dst.Render.OutDir = strings.TrimSpace(r.OutDir)
	}
	if strings.TrimSpace(r.TextDir) != "" {
		dst.Render.TextDir = strings.TrimSpace(r.TextDir)
	}
	dst.Render.HiddenLines = r.HiddenLines
	// preview
	if strings.TrimSpace(src.Preview.Addr) != "" {
		dst.Preview.Addr = strings.TrimSpace(src.Preview.Addr)
	}
	dst.Preview.Auth = src.Preview.Auth
	// traces
	if strings.TrimSpace(src.Traces.Driver) != "" {
		dst.Traces.Driver = strings.ToLower(strings.TrimSpace(src.Traces.Driver))
	}
	if strings.TrimSpace(src.Traces.DSN) != "" {
		dst.Traces.DSN = strings.TrimSpace(src.Traces.DSN)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envInt(name string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvRenderWidth, &cfg.Render.Width)
	envInt(EnvRenderHeight, &cfg.Render.Height)
	envInt(EnvRenderFPS, &cfg.Render.FPS)
	if v := strings.TrimSpace(os.Getenv(EnvRenderFormat)); v != "" {
		cfg.Render.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderOutDir)); v != "" {
		cfg.Render.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTextDir)); v != "" {
		cfg.Render.TextDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHiddenLines)); v != "" {
		cfg.Render.HiddenLines = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewAddr)); v != "" {
		cfg.Preview.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewAuth)); v != "" {
		cfg.Preview.Auth = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTracesDriver)); v != "" {
		cfg.Traces.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTracesDSN)); v != "" {
		cfg.Traces.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvLogMaxSizeMB))); err == nil && n > 0 {
		cfg.Logging.MaxSizeMB = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvLogMaxBackups))); err == nil && n > 0 {
		cfg.Logging.MaxBackups = n
	}
}

var overrideKeys = map[string]string{
	"render.width":             EnvRenderWidth,
	"render.height":            EnvRenderHeight,
	"render.fps":               EnvRenderFPS,
	"render.format":            EnvRenderFormat,
	"render.out_dir":           EnvRenderOutDir,
	"render.text_dir":          EnvTextDir,
	"render.hidden_lines":      EnvHiddenLines,
	"preview.addr":             EnvPreviewAddr,
	"preview.auth":             EnvPreviewAuth,
	"traces.driver":            EnvTracesDriver,
	"traces.dsn":               EnvTracesDSN,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
	"logging.max_size_mb":      EnvLogMaxSizeMB,
	"logging.max_backups":      EnvLogMaxBackups,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := overrideKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

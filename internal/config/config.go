// Package config loads pipeline settings from a YAML file and the process
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the pipeline reads. Zero values mean "use the
// default" so partial files can be layered over Default().
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Translation TranslationConfig `yaml:"translation"`

	// Timeout bounds a whole run; zero waits forever.
	Timeout time.Duration `yaml:"timeout"`
}

type PathsConfig struct {
	InputDirectory  string `yaml:"input_directory"`
	VideoExtension  string `yaml:"video_extension"`
	OutputDirectory string `yaml:"output_directory"`
	TempDirectory   string `yaml:"temp_directory"`
}

type FFmpegConfig struct {
	Path string `yaml:"path"`
}

type TranslationConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

func Default() Config {
	return Config{
		Paths: PathsConfig{
			InputDirectory:  "./to_transcribe",
			VideoExtension:  ".mp4",
			OutputDirectory: "./translations",
			TempDirectory:   os.TempDir(),
		},
		FFmpeg:      FFmpegConfig{Path: "ffmpeg"},
		Translation: TranslationConfig{Model: "whisper-1"},
	}
}

// Load reads the YAML file at path and layers it over Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.merge(file)
	return cfg, nil
}

// LoadOptional behaves like Load but returns Default() when the file is absent.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads KEY=value pairs from the given dotenv files into the
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) merge(o Config) {
	mergeString(&c.Paths.InputDirectory, o.Paths.InputDirectory)
	mergeString(&c.Paths.VideoExtension, o.Paths.VideoExtension)
	mergeString(&c.Paths.OutputDirectory, o.Paths.OutputDirectory)
	mergeString(&c.Paths.TempDirectory, o.Paths.TempDirectory)
	mergeString(&c.FFmpeg.Path, o.FFmpeg.Path)
	mergeString(&c.Translation.Model, o.Translation.Model)
	mergeString(&c.Translation.BaseURL, o.Translation.BaseURL)
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
}

func mergeString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

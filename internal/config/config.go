package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mcmovie/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Video contains decoder settings for the ffmpeg/ffprobe frame source.
type Video struct {
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	// ScaleFlags is passed to ffmpeg's scale filter (e.g. "bicubic", "lanczos").
	ScaleFlags string `toml:"scale_flags"`
}

// Animation contains the sprite-sheet geometry and timing policy.
type Animation struct {
	FrameWidth        int     `toml:"frame_width"`
	FrameHeight       int     `toml:"frame_height"`
	FrameRate         float64 `toml:"frame_rate"`
	CaptureCapSeconds float64 `toml:"capture_cap_seconds"`
	HoldSeconds       float64 `toml:"hold_seconds"`
	PNGCompression    string  `toml:"png_compression"`
}

// Pack contains resource-pack manifest settings.
type Pack struct {
	Description       string `toml:"description"`
	MinEngineVersion  []int  `toml:"min_engine_version"`
	DependencyUUID    string `toml:"dependency_uuid"`
	DependencyVersion []int  `toml:"dependency_version"`
	// ReuseIdentity keeps manifest UUIDs stable across rebuilds of the same pack
	// name and bumps the patch version instead.
	ReuseIdentity bool `toml:"reuse_identity"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mcmovie.
//
// Configuration sections by subsystem:
//   - Paths: where archives, the pack registry, and logs live
//   - Video: ffmpeg/ffprobe binaries and probe limits
//   - Animation: frame geometry, sampling rate, and non-loop policy
//   - Pack: manifest fields and identity reuse
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Video     Video     `toml:"video"`
	Animation Animation `toml:"animation"`
	Pack      Pack      `toml:"pack"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mcmovie/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mcmovie.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a build writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RegistryPath returns the location of the pack registry database.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.StateDir, "registry.db")
}

// LockPath returns the location of the build lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mcmovie.lock")
}

// ProbeTimeout returns the bounded wait applied to source probing.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Video.ProbeTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mcmovie")
	}
	return "~/.local/state/mcmovie"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	_, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, writeErr := io.WriteString(w, sampleConfig)
		return writeErr
	})
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

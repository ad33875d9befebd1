package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeAnimation()
	c.normalizePack()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("MCMOVIE_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}

	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	if value, ok := os.LookupEnv("FFMPEG_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.Video.FFmpegBinary = value
	}
	if value, ok := os.LookupEnv("FFPROBE_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.Video.FFprobeBinary = value
	}
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	if c.Video.FFprobeBinary == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
	c.Video.ScaleFlags = strings.ToLower(strings.TrimSpace(c.Video.ScaleFlags))
	if c.Video.ScaleFlags == "" {
		c.Video.ScaleFlags = defaultScaleFlags
	}
}

func (c *Config) normalizeAnimation() {
	c.Animation.PNGCompression = strings.ToLower(strings.TrimSpace(c.Animation.PNGCompression))
	if c.Animation.PNGCompression == "" {
		c.Animation.PNGCompression = defaultPNGCompression
	}
}

func (c *Config) normalizePack() {
	c.Pack.Description = strings.TrimSpace(c.Pack.Description)
	c.Pack.DependencyUUID = strings.ToLower(strings.TrimSpace(c.Pack.DependencyUUID))
	if c.Pack.DependencyUUID == "" {
		c.Pack.DependencyUUID = defaultDependencyUUID
	}
	if len(c.Pack.MinEngineVersion) == 0 {
		c.Pack.MinEngineVersion = []int{1, 19, 60}
	}
	if len(c.Pack.DependencyVersion) == 0 {
		c.Pack.DependencyVersion = []int{0, 0, 1}
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
}

package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAnimation(); err != nil {
		return err
	}
	if err := c.validatePack(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.ProbeTimeoutSeconds <= 0 {
		return errors.New("video.probe_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAnimation() error {
	if err := ensurePositiveMap(map[string]int{
		"animation.frame_width":  c.Animation.FrameWidth,
		"animation.frame_height": c.Animation.FrameHeight,
	}); err != nil {
		return err
	}
	if !positiveFinite(c.Animation.FrameRate) {
		return errors.New("animation.frame_rate must be a positive number")
	}
	if !positiveFinite(c.Animation.CaptureCapSeconds) {
		return errors.New("animation.capture_cap_seconds must be a positive number")
	}
	if !positiveFinite(c.Animation.HoldSeconds) {
		return errors.New("animation.hold_seconds must be a positive number")
	}
	switch c.Animation.PNGCompression {
	case "default", "none", "speed", "best":
	default:
		return fmt.Errorf("animation.png_compression must be one of default, none, speed, best (got %q)", c.Animation.PNGCompression)
	}
	return nil
}

func (c *Config) validatePack() error {
	if err := validateVersionTriple("pack.min_engine_version", c.Pack.MinEngineVersion); err != nil {
		return err
	}
	if err := validateVersionTriple("pack.dependency_version", c.Pack.DependencyVersion); err != nil {
		return err
	}
	if _, err := uuid.Parse(c.Pack.DependencyUUID); err != nil {
		return fmt.Errorf("pack.dependency_uuid: %w", err)
	}
	return nil
}

func validateVersionTriple(key string, values []int) error {
	if len(values) != 3 {
		return fmt.Errorf("%s must have exactly three components", key)
	}
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("%s components must be >= 0", key)
		}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSeekFailure       = errors.New("seek failure")
	ErrInvalidFrameCount = errors.New("invalid frame count")
	ErrEncodingFailure   = errors.New("encoding failure")
	ErrConfiguration     = errors.New("configuration error")
	ErrPackaging         = errors.New("packaging failure")
	ErrRegistry          = errors.New("registry failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short machine-friendly label for the marker carried by err.
// Errors without a known marker report "unknown"; nil reports "".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrSeekFailure):
		return "seek_failure"
	case errors.Is(err, ErrInvalidFrameCount):
		return "invalid_frame_count"
	case errors.Is(err, ErrEncodingFailure):
		return "encoding_failure"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrPackaging):
		return "packaging"
	case errors.Is(err, ErrRegistry):
		return "registry"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mcmovie/internal/config"
	"mcmovie/internal/deps"
	"mcmovie/internal/services"
)

const versionTimeout = 5 * time.Second

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, binaryResult(ctx, status))
	}
	results = append(results,
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	)
	return results
}

// CheckSystemDeps evaluates the decoder binaries named by the config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Video.FFmpegBinary,
			Description: "Required for frame capture",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Video.FFprobeBinary,
			Description: "Required for duration probing",
		},
	})
}

// CheckDirectoryAccess verifies that the directory is readable and writable.
// A missing directory passes when its nearest existing parent is writable,
// since builds create it on demand.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent, ok := existingParent(path)
		if !ok {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// Err summarizes failed required checks as a configuration error, or nil
// when every required check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(failed, "; "), errors.New("run 'mcmovie doctor' for details"))
}

func binaryResult(ctx context.Context, status deps.Status) Result {
	result := Result{Name: status.Name, Optional: status.Optional}
	if !status.Available {
		result.Detail = status.Detail
		return result
	}
	result.Passed = true
	version, err := deps.Version(ctx, status.Path, versionTimeout)
	if err != nil {
		result.Detail = status.Path
		return result
	}
	result.Detail = fmt.Sprintf("%s (%s)", status.Path, version)
	return result
}

func existingParent(path string) (string, bool) {
	current := path
	for {
		parent := filepath.Dir(filepath.Clean(current))
		if parent == current {
			return "", false
		}
		if info, err := os.Stat(parent); err == nil {
			return parent, info.IsDir()
		}
		current = parent
	}
}

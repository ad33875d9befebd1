package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcmovie/internal/config"
	"mcmovie/internal/testsupport"
)

const ffprobeStub = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffprobe version 6.1-test"
  exit 0
fi
cat <<'JSON'
{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":64,"height":32,"r_frame_rate":"30/1","duration":"2.500000"}],"format":{"filename":"clip.mp4","nb_streams":1,"duration":"2.500000","size":"2048","format_name":"mov,mp4,m4a"}}
JSON
`

// ffmpegStub emits one 8x4 RGBA frame (128 bytes) per capture.
const ffmpegStub = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-test"
  exit 0
fi
head -c 128 /dev/zero
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	videoPath  string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	binDir := filepath.Join(base, "bin")
	cfg.Video.FFmpegBinary = writeScript(t, binDir, "ffmpeg", ffmpegStub)
	cfg.Video.FFprobeBinary = writeScript(t, binDir, "ffprobe", ffprobeStub)

	videoPath := filepath.Join(base, "clip.mp4")
	testsupport.WriteFile(t, videoPath, 2048)

	configPath := filepath.Join(base, "mcmovie.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		videoPath:  videoPath,
		baseDir:    base,
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
state_dir = %q
log_dir = %q

[video]
ffmpeg_binary = %q
ffprobe_binary = %q

[animation]
frame_width = %d
frame_height = %d
frame_rate = 10
capture_cap_seconds = 1

[logging]
level = "error"
`,
		cfg.Paths.OutputDir,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Video.FFmpegBinary,
		cfg.Video.FFprobeBinary,
		cfg.Animation.FrameWidth,
		cfg.Animation.FrameHeight,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

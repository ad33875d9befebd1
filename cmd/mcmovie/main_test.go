package main

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcmovie/internal/flipbook"
	"mcmovie/internal/pack"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigInitSkipsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[animation]\nframe_rate = \"fast\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, broken); err == nil {
		t.Fatal("expected validate to reject broken config")
	}
	target := filepath.Join(dir, "fresh.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, broken); err != nil {
		t.Fatalf("config init should not load config: %v", err)
	}
}

func TestDoctorReportsTools(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "ffmpeg version 6.1-test")
	requireContains(t, out, "FFprobe:")
	requireContains(t, out, "Output directory:")
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("unexpected failure in doctor output:\n%s", out)
	}
}

func TestDoctorFailsOnMissingBinary(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Video.FFmpegBinary = filepath.Join(env.baseDir, "missing", "ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	requireContains(t, out, "[ERROR]")
}

func TestProbeShowsPlans(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"probe", env.videoPath}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "h264 64x32 @ 30 fps")
	requireContains(t, out, "Duration:  2.500s")
	requireContains(t, out, "80x4")
	requireContains(t, out, "200x4")
}

func TestProbeJSONPrintsRawOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"probe", "--json", env.videoPath}, env.configPath)
	if err != nil {
		t.Fatalf("probe --json: %v", err)
	}
	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("expected JSON output, got %v\n%s", err, out)
	}
	if payload.Format.Duration != "2.500000" {
		t.Fatalf("unexpected duration %q", payload.Format.Duration)
	}
	if strings.Contains(out, "Mode") {
		t.Fatalf("expected no plan table in JSON mode:\n%s", out)
	}
}

func TestProbeMissingVideo(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"probe", filepath.Join(env.baseDir, "nope.mp4")}, env.configPath); err == nil {
		t.Fatal("expected probe of missing file to fail")
	}
}

func TestBuildWritesPackAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No packs built yet")

	out, _, err = runCLI(t, []string{"build", env.videoPath, "--name", "Intro: Reel", "--loop"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	requireContains(t, out, "Pack:      Intro Reel")
	requireContains(t, out, "Frames:    25 (sheet 200x4)")
	requireContains(t, out, "Version:   0.0.1 (new identity)")

	archive := filepath.Join(env.cfg.Paths.OutputDir, pack.ArchiveName("Intro Reel"))
	descriptor := readDescriptor(t, archive)
	if !descriptor.Loop || len(descriptor.Frames) != 25 {
		t.Fatalf("unexpected descriptor: loop=%v frames=%d", descriptor.Loop, len(descriptor.Frames))
	}

	out, _, err = runCLI(t, []string{"build", env.videoPath, "--name", "Intro: Reel"}, env.configPath)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	requireContains(t, out, "Frames:    10 (sheet 80x4)")
	requireContains(t, out, "Version:   0.0.2 (reused identity)")
	descriptor = readDescriptor(t, archive)
	if descriptor.Loop {
		t.Fatal("expected non-looping descriptor after rebuild")
	}
	if got := descriptor.Frames[len(descriptor.Frames)-1].Duration; got != flipbook.DefaultHoldSeconds {
		t.Fatalf("hold duration = %v, want %v", got, flipbook.DefaultHoldSeconds)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Intro Reel")
	requireContains(t, out, "0.0.2")

	out, _, err = runCLI(t, []string{"history", "show", "Intro Reel"}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Builds:      2")

	out, _, err = runCLI(t, []string{"history", "forget", "Intro Reel"}, env.configPath)
	if err != nil {
		t.Fatalf("history forget: %v", err)
	}
	requireContains(t, out, "Forgot Intro Reel")

	out, _, err = runCLI(t, []string{"history", "forget", "Intro Reel"}, env.configPath)
	if err != nil {
		t.Fatalf("history forget again: %v", err)
	}
	requireContains(t, out, "No pack named")
}

func TestBuildOutputOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "elsewhere")

	if _, _, err := runCLI(t, []string{"build", env.videoPath, "--output", target}, env.configPath); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, pack.ArchiveName("clip"))); err != nil {
		t.Fatalf("expected archive in override dir: %v", err)
	}
}

func TestBuildRequiresVideoArgument(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"build"}, env.configPath); err == nil {
		t.Fatal("expected build without a video to fail")
	}
}

func readDescriptor(t *testing.T, archive string) flipbook.Descriptor {
	t.Helper()
	reader, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		if file.Name != pack.DescriptorEntry {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open descriptor: %v", err)
		}
		defer rc.Close()
		var descriptor flipbook.Descriptor
		if err := json.NewDecoder(rc).Decode(&descriptor); err != nil {
			t.Fatalf("decode descriptor: %v", err)
		}
		return descriptor
	}
	t.Fatalf("archive %s has no %s", archive, pack.DescriptorEntry)
	return flipbook.Descriptor{}
}

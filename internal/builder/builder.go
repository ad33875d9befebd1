package builder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mcmovie/internal/config"
	"mcmovie/internal/framesample"
	"mcmovie/internal/logging"
	"mcmovie/internal/media/ffmpeg"
	"mcmovie/internal/pack"
	"mcmovie/internal/pipeline"
	"mcmovie/internal/preflight"
	"mcmovie/internal/registry"
	"mcmovie/internal/services"
	"mcmovie/internal/spritesheet"
)

// ErrBuildInProgress reports that another build holds the lock.
var ErrBuildInProgress = errors.New("another mcmovie build is already running")

// Opener opens a video for frame capture.
type Opener func(ctx context.Context, opts ffmpeg.Options) (framesample.Source, error)

// PreflightFunc reports readiness of external tools and directories.
type PreflightFunc func(ctx context.Context, cfg *config.Config) []preflight.Result

// Request describes one build.
type Request struct {
	VideoPath string
	// Name is the pack title; blank derives it from the video file name.
	Name string
	Loop bool
	// OutputDir overrides the configured output directory.
	OutputDir     string
	FreshIdentity bool
	Progress      framesample.ProgressFunc
}

// Report summarizes a finished build.
type Report struct {
	RunID            string
	Name             string
	ArchivePath      string
	ArchiveBytes     int64
	FrameCount       int
	SourceSeconds    float64
	EffectiveSeconds float64
	SheetWidth       int
	SheetHeight      int
	Loop             bool
	Identity         pack.Identity
	Reused           bool
	Elapsed          time.Duration
}

// Builder runs pack builds against a config and registry.
type Builder struct {
	cfg       *config.Config
	store     *registry.Store
	base      *slog.Logger
	logger    *slog.Logger
	open      Opener
	preflight PreflightFunc
	now       func() time.Time
}

// Option customizes a Builder.
type Option func(*Builder)

// WithOpener replaces the ffmpeg-backed source opener.
func WithOpener(open Opener) Option {
	return func(b *Builder) {
		if open != nil {
			b.open = open
		}
	}
}

// WithPreflight replaces the readiness checks run before each build.
func WithPreflight(fn PreflightFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.preflight = fn
		}
	}
}

// WithClock overrides the time source used for archive timestamps and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// New constructs a Builder. store may be nil, in which case every build gets
// fresh manifest UUIDs and nothing is recorded.
func New(cfg *config.Config, store *registry.Store, logger *slog.Logger, opts ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, errors.New("builder requires config")
	}
	b := &Builder{
		cfg:       cfg,
		store:     store,
		base:      logger,
		logger:    logging.NewComponentLogger(logger, "builder"),
		open:      openFFmpeg,
		preflight: preflight.RunAll,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func openFFmpeg(ctx context.Context, opts ffmpeg.Options) (framesample.Source, error) {
	src, err := ffmpeg.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// PackName derives the sanitized pack name for a request.
func PackName(req Request) string {
	raw := strings.TrimSpace(req.Name)
	if raw == "" {
		base := filepath.Base(req.VideoPath)
		raw = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return pack.SanitizeName(raw)
}

// Build runs the full pipeline for req and writes <name>.mcpack.
func (b *Builder) Build(ctx context.Context, req Request) (*Report, error) {
	started := b.now()
	if strings.TrimSpace(req.VideoPath) == "" {
		return nil, services.Wrap(services.ErrSourceUnavailable, "build", "request", "no video path", nil)
	}
	if err := b.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "directories", "", err)
	}

	lock := flock.New(b.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "lock", b.cfg.LockPath(), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "build", "lock", b.cfg.LockPath(), ErrBuildInProgress)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			b.logger.Warn("failed to release build lock", logging.Error(err))
		}
	}()

	name := PackName(req)
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithPack(ctx, name)
	logger := logging.WithContext(ctx, b.logger)
	logger.Info("build started",
		logging.String("source", req.VideoPath),
		logging.Bool("loop", req.Loop),
	)

	report, err := b.run(ctx, req, name, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "build failed", "build_failed",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, hintFor(err)),
			logging.Error(err),
		)
		return nil, err
	}
	report.RunID = runID
	report.Elapsed = b.now().Sub(started)
	logger.Info("build complete",
		logging.String("archive", report.ArchivePath),
		logging.Int64("archive_bytes", report.ArchiveBytes),
		logging.String("version", report.Identity.Version.String()),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (b *Builder) run(ctx context.Context, req Request, name string, logger *slog.Logger) (*Report, error) {
	if err := preflight.Err(b.preflight(ctx, b.cfg)); err != nil {
		return nil, err
	}

	anim := b.cfg.Animation
	src, err := b.open(services.WithStage(ctx, "decode"), ffmpeg.Options{
		FFmpegBinary:  b.cfg.Video.FFmpegBinary,
		FFprobeBinary: b.cfg.Video.FFprobeBinary,
		Path:          req.VideoPath,
		FrameWidth:    anim.FrameWidth,
		FrameHeight:   anim.FrameHeight,
		ProbeTimeout:  b.cfg.ProbeTimeout(),
		ScaleFlags:    b.cfg.Video.ScaleFlags,
	})
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Run(ctx, src, pipeline.Options{
		Loop:              req.Loop,
		FrameRate:         anim.FrameRate,
		FrameWidth:        anim.FrameWidth,
		FrameHeight:       anim.FrameHeight,
		CaptureCapSeconds: anim.CaptureCapSeconds,
		HoldSeconds:       anim.HoldSeconds,
		Progress:          req.Progress,
		Logger:            b.base,
	})
	if err != nil {
		return nil, err
	}

	ctx = services.WithStage(ctx, "packaging")
	identity, reused, err := b.reserve(ctx, name, req.FreshIdentity)
	if err != nil {
		return nil, err
	}
	bundle, err := b.bundle(name, identity, result)
	if err != nil {
		return nil, err
	}

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = b.cfg.Paths.OutputDir
	} else if expanded, expandErr := config.ExpandPath(outputDir); expandErr == nil {
		outputDir = expanded
	}

	if b.store != nil {
		if err := b.store.Record(ctx, registry.Entry{
			Name:          name,
			Identity:      identity,
			ArchivePath:   filepath.Join(outputDir, pack.ArchiveName(name)),
			SourcePath:    req.VideoPath,
			SourceSeconds: result.SourceDuration,
			FrameCount:    result.FrameCount,
			Loop:          req.Loop,
			RunID:         runIDOf(ctx),
			BuiltAt:       b.now(),
		}); err != nil {
			return nil, err
		}
	}

	archivePath, size, err := pack.WriteFile(outputDir, bundle)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, logger).Debug("archive written",
		logging.String("archive", archivePath),
		logging.Int64("archive_bytes", size),
	)
	if b.store != nil {
		if err := b.store.CommitArchive(ctx, name, size); err != nil {
			logging.WithContext(ctx, logger).Warn("archive size not recorded",
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
			)
		}
	}

	bounds := result.Sheet.Bounds()
	report := &Report{
		Name:             name,
		ArchivePath:      archivePath,
		ArchiveBytes:     size,
		FrameCount:       result.FrameCount,
		SourceSeconds:    result.SourceDuration,
		EffectiveSeconds: result.EffectiveDuration,
		SheetWidth:       bounds.Dx(),
		SheetHeight:      bounds.Dy(),
		Loop:             req.Loop,
		Identity:         identity,
		Reused:           reused && !req.FreshIdentity,
	}
	return report, nil
}

func (b *Builder) reserve(ctx context.Context, name string, fresh bool) (pack.Identity, bool, error) {
	if b.store == nil || !b.cfg.Pack.ReuseIdentity {
		return pack.NewIdentity(), false, nil
	}
	return b.store.Reserve(ctx, name, fresh)
}

func (b *Builder) bundle(name string, identity pack.Identity, result *pipeline.Result) (pack.Bundle, error) {
	descriptor, err := result.Descriptor.MarshalIndented()
	if err != nil {
		return pack.Bundle{}, err
	}
	width, height := result.Sheet.FrameSize()
	form, err := pack.ServerForm(width, height)
	if err != nil {
		return pack.Bundle{}, services.Wrap(services.ErrPackaging, "packaging", "server form", "", err)
	}
	manifest, err := pack.NewManifest(name, identity, pack.ManifestOptions{
		Description:       b.cfg.Pack.Description,
		MinEngineVersion:  pack.VersionFromSlice(b.cfg.Pack.MinEngineVersion),
		DependencyUUID:    b.cfg.Pack.DependencyUUID,
		DependencyVersion: pack.VersionFromSlice(b.cfg.Pack.DependencyVersion),
	}).MarshalIndented()
	if err != nil {
		return pack.Bundle{}, services.Wrap(services.ErrPackaging, "packaging", "manifest", "", err)
	}

	level := spritesheet.CompressionLevel(b.cfg.Animation.PNGCompression)
	sheet := result.Sheet
	return pack.Bundle{
		Name: name,
		Texture: func(w io.Writer) error {
			return sheet.EncodePNG(w, level)
		},
		Descriptor: descriptor,
		ServerForm: form,
		Manifest:   manifest,
		Modified:   b.now(),
	}, nil
}

func runIDOf(ctx context.Context) string {
	id, _ := services.RunIDFromContext(ctx)
	return id
}

func hintFor(err error) string {
	switch services.Kind(err) {
	case "source_unavailable":
		return "check the video path and that ffprobe can read it"
	case "seek_failure":
		return "the video may be truncated; try re-encoding it with ffmpeg"
	case "invalid_frame_count":
		return "the captured span is shorter than one frame; use a longer video or --loop"
	case "encoding_failure":
		return "the sprite sheet could not be encoded; lower the frame size or rate"
	case "configuration":
		return "run 'mcmovie doctor' and 'mcmovie config validate'"
	case "packaging":
		return "check free space and permissions in the output directory"
	case "registry":
		return "the pack registry is unreadable; see 'mcmovie history'"
	default:
		return "check logs for details"
	}
}
